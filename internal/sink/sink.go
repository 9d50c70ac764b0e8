// Package sink adapts github.com/hajimehoshi/ebiten/v2/audio to an abstract
// audio sink interface: open device, allocate/submit a buffer, query
// submitted/completed counts, unqueue completed buffers, pause/resume,
// drop all.
//
// ebiten's audio.Player is pull-based: it calls Read(buffer) on its own
// schedule and tracks Position() as however many bytes it has consumed. A
// decode-on-demand controller would bridge that pull model directly; Sink
// instead serves already-decoded, already-queued buffers, and additionally
// turns bytes-consumed into "which submitted buffer, identified by its PTS,
// just finished playing" so the audio presenter can update its clock.
package sink

import (
	"io"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

type pending struct {
	endOffset int64 // cumulative byte offset (within the reader stream) at which this buffer ends
	ptsUS     int64
}

// Sink is a submission-queue audio sink backed by an ebiten audio.Player.
type Sink struct {
	mu     sync.Mutex
	player *audio.Player

	buf       []byte // not-yet-served PCM, oldest first
	readAt    int64  // cumulative bytes served to the player (or dropped by DropAll) so far
	writeAt   int64  // cumulative bytes ever appended to buf
	pending   []pending
	completed []int64
}

// Open creates a sink playing stereo S16 PCM through ctx, at whatever
// sample rate ctx itself was created with.
func Open(ctx *audio.Context) (*Sink, error) {
	s := &Sink{}
	player, err := ctx.NewPlayer(&reader{s: s})
	if err != nil {
		return nil, err
	}
	s.player = player
	return s, nil
}

// reader is the io.Reader ebiten's audio.Player pulls from; it exists only
// to give Sink a receiver-free method set (Read belongs to the protocol
// ebiten expects, not to the Sink's own public API).
type reader struct{ s *Sink }

func (r *reader) Read(p []byte) (int, error) {
	return r.s.read(p)
}

func (s *Sink) read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	s.readAt += int64(n)

	for len(s.pending) > 0 && s.readAt >= s.pending[0].endOffset {
		s.completed = append(s.completed, s.pending[0].ptsUS)
		s.pending = s.pending[1:]
	}

	if n == 0 {
		// Nothing buffered right now; report silence rather than EOF so
		// the player keeps polling instead of stopping. The sink should
		// stay open across normal starvation between frames.
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	return n, nil
}

// Submit appends pcm (interleaved stereo S16) to the sink's pending
// playback queue, tagged with its presentation time in microseconds.
func (s *Sink) Submit(pcm []byte, ptsUS int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf, pcm...)
	s.writeAt += int64(len(pcm))
	s.pending = append(s.pending, pending{endOffset: s.writeAt, ptsUS: ptsUS})
}

// SubmittedCount returns how many buffers have been submitted but not yet
// fully played, used for the audio presenter's backpressure check.
func (s *Sink) SubmittedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// PopCompleted drains and returns the PTS, in order, of every buffer that
// has finished playing since the last call.
func (s *Sink) PopCompleted() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.completed) == 0 {
		return nil
	}
	out := s.completed
	s.completed = nil
	return out
}

// EnsurePlaying starts playback if it isn't already running.
func (s *Sink) EnsurePlaying() {
	if !s.player.IsPlaying() {
		s.player.Play()
	}
}

// Pause pauses the underlying device without dropping buffered data.
func (s *Sink) Pause() {
	s.player.Pause()
}

// Resume is an alias for EnsurePlaying, matching the presenter's pause/resume
// vocabulary.
func (s *Sink) Resume() {
	s.EnsurePlaying()
}

// Volume returns the device volume, 0 (silent) to 1 (full).
func (s *Sink) Volume() float64 {
	return s.player.Volume()
}

// SetVolume sets the device volume, 0 (silent) to 1 (full).
func (s *Sink) SetVolume(v float64) {
	s.player.SetVolume(v)
}

// DropAll discards every submitted-but-unplayed buffer, used when flushing
// for a seek.
func (s *Sink) DropAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = nil
	s.readAt = s.writeAt
	s.pending = nil
	s.completed = nil
}

// Close stops playback and releases the underlying player.
func (s *Sink) Close() error {
	s.player.Pause()
	return s.player.Close()
}

var _ io.Reader = (*reader)(nil)
