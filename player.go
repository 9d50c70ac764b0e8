// Package avplay is a video/audio player built around a small
// producer/consumer pipeline: a single demux+decode goroutine reads
// packets from the container and turns them into frames (the underlying
// decoder couples the two, so they can't run on separate goroutines), and
// an audio presenter (acting as the master clock) and a video presenter
// (synced to it) push the results to the platform's audio and graphics
// devices.
//
// Usage is similar to Ebitengine audio players:
//   - Create an audio.Context for the file with [CreateAudioContextForMedia],
//     if it has audio.
//   - Call [NewPlayer] to open it and start the pipeline.
//   - Call [Player.CurrentFrame]() each tick to get the frame to draw.
//   - Use [Player.Pause]()/[Player.Play]()/[Player.Seek]() to control it.
package avplay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"golang.org/x/sync/errgroup"

	"github.com/erparts/avplay/internal/decoder"
	"github.com/erparts/avplay/internal/pipeline"
	"github.com/erparts/avplay/internal/playback"
	"github.com/erparts/avplay/internal/present"
	"github.com/erparts/avplay/internal/sink"
	"github.com/erparts/avplay/internal/stream"
	"github.com/erparts/avplay/internal/surface"
)

// A collection of initialization errors defined by this package for [NewPlayer]().
// Other format-specific errors are also possible.
var (
	ErrNoStreams       = errors.New("file has neither a decodable video nor audio stream")
	ErrNilAudioContext = errors.New("file has an audio stream but no audio.Context exists; call CreateAudioContextForMedia first")
)

// A [Player] drives one open media file's pipeline: the demux+decode
// goroutine and the present goroutines run for as long as the player is
// open.
type Player struct {
	pc      *playback.Context
	surf    *surface.Surface
	snk     *sink.Sink
	group   *errgroup.Group
	cancel  context.CancelFunc
	format  *decoder.Format
	videoFD time.Duration
	dur     time.Duration
	closed  bool
}

// NewPlayerWithoutAudio is like [NewPlayer], but ignoring any audio stream.
func NewPlayerWithoutAudio(videoFilename string) (*Player, error) {
	return newPlayer(videoFilename, true)
}

// NewPlayer opens videoFilename and starts its pipeline. If the file has
// audio, an audio.Context must already have been created for it (see
// [CreateAudioContextForMedia]) or [ErrNilAudioContext] is returned.
func NewPlayer(videoFilename string) (*Player, error) {
	return newPlayer(videoFilename, false)
}

func newPlayer(videoFilename string, ignoreAudio bool) (*Player, error) {
	format, err := decoder.OpenInput(videoFilename)
	if err != nil {
		return nil, err
	}

	videoDesc, audioDesc, err := format.FindStreams()
	if err != nil {
		format.Close()
		return nil, err
	}
	if ignoreAudio {
		audioDesc = nil
	}
	if videoDesc == nil && audioDesc == nil {
		format.Close()
		return nil, ErrNoStreams
	}

	var videoSC, audioSC *stream.Context
	if videoDesc != nil {
		videoSC = stream.NewVideo(videoDesc)
	}

	var snk *sink.Sink
	if audioDesc != nil {
		audioSC = stream.NewAudio(audioDesc)
		ctx := audio.CurrentContext()
		if ctx == nil {
			format.Close()
			return nil, ErrNilAudioContext
		}
		snk, err = sink.Open(ctx)
		if err != nil {
			format.Close()
			return nil, fmt.Errorf("avplay: open audio sink: %w", err)
		}
	}

	pc, err := playback.New(format, videoSC, audioSC)
	if err != nil {
		format.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Player{pc: pc, snk: snk, format: format, group: &errgroup.Group{}, cancel: cancel}

	if videoSC != nil {
		p.surf = surface.New(videoSC.Stream.Width, videoSC.Stream.Height)
		frNum, frDenom := videoDesc.FrameRate()
		p.videoFD = (time.Second * time.Duration(frDenom)) / time.Duration(frNum)
	}
	durDesc := videoDesc
	if durDesc == nil {
		durDesc = audioDesc
	}
	if d, err := durDesc.Duration(); err == nil {
		p.dur = d
	}

	p.group.Go(func() error { return pipeline.Run(ctx, pc) })
	if videoSC != nil {
		p.group.Go(func() error {
			present.RunVideo(ctx, pc, videoSC, p.surf.CommitFrame, p.videoFD)
			return nil
		})
	}
	if audioSC != nil {
		p.group.Go(func() error {
			present.RunAudio(ctx, audioSC, snk, present.FrameDuration(audioSC))
			return nil
		})
	}

	return p, nil
}

// --- frames and resolution ---

// CurrentFrame returns the image corresponding to whatever frame the video
// presenter committed most recently. As long as the video is playing,
// calling this at different times returns different frames.
//
// The returned image is reused, so calling this method again will overwrite
// its contents; don't store it for later use. If the file has no video
// stream, CurrentFrame always returns nil.
func (p *Player) CurrentFrame() *ebiten.Image {
	if p.surf == nil {
		return nil
	}
	return p.surf.Latest()
}

// Resolution returns the width and height of the video, or 0, 0 if the file
// has no video stream.
func (p *Player) Resolution() (int, int) {
	if p.surf == nil {
		return 0, 0
	}
	return p.surf.Resolution()
}

// ---- video playback states ----

// State returns the current playback state: [Playing] or [Paused] while the
// pipeline is running, [Stopped] once [Player.Close]() has been called.
func (p *Player) State() PlaybackState {
	if p.closed {
		return Stopped
	}
	switch p.pc.State() {
	case playback.Playing, playback.PlaySeeking:
		return Playing
	default:
		return Paused
	}
}

// Play activates the player's playback clock. If already playing, this is
// a no-op.
func (p *Player) Play() {
	p.pc.RequestResume()
}

// Pause pauses the player's playback clock, including audio. If already
// paused, this is a no-op.
func (p *Player) Pause() {
	p.pc.RequestPause()
}

// Stop pauses the player and moves it back to the start of the stream.
func (p *Player) Stop() {
	p.pc.RequestPause()
	p.pc.RequestSeek(0)
}

// --- timing ---

// Position returns the player's current playback position, taken from the
// master clock (the audio stream if present, otherwise the video stream).
func (p *Player) Position() time.Duration {
	if p.pc.AudioSC != nil {
		return time.Duration(p.pc.AudioSC.PlayTimeUS()) * time.Microsecond
	}
	return time.Duration(p.pc.VideoSC.PlayTimeUS()) * time.Microsecond
}

// Duration returns the stream's total duration.
func (p *Player) Duration() time.Duration {
	return p.dur
}

// Seek moves the player's playback position to the given one, relative to
// the start of the video. The seek completes asynchronously; while it is in
// flight, [Player.State] keeps reporting the state the player had before
// the seek ([Playing] or [Paused]).
func (p *Player) Seek(position time.Duration) {
	p.pc.RequestSeek(position.Microseconds())
}

// --- audio ---

// HasAudio returns whether the file has an audio stream being played.
func (p *Player) HasAudio() bool {
	return p.pc.AudioSC != nil
}

// HasVideo returns whether the file has a video stream being played.
func (p *Player) HasVideo() bool {
	return p.pc.VideoSC != nil
}

// GetVolume gets the player's volume. If the file has no audio, 0 is
// returned.
func (p *Player) GetVolume() float64 {
	if p.snk == nil {
		return 0
	}
	return p.snk.Volume()
}

// SetVolume sets the player's volume. If the file has no audio, this has no
// effect.
func (p *Player) SetVolume(volume float64) {
	if p.snk != nil {
		p.snk.SetVolume(volume)
	}
}

// --- advanced operations ---

// QueueOccupancy reports the decoded-frame queue length of each active
// stream, for diagnostics (the "I" key in the bundled example).
func (p *Player) QueueOccupancy() playback.QueueOccupancy {
	return p.pc.QueueOccupancy()
}

// Close stops the pipeline and releases the underlying decoder and audio
// sink. The player is unusable afterwards.
//
// Close cancels the pipeline's goroutines and waits for them to actually
// exit before releasing the container and audio device out from under
// them: the demux/decode stage only checks for cancellation between
// packets, and the presenters only between event-loop polls, so this
// blocks for at most one of their wait timeouts, never forever.
func (p *Player) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.pc.RequestStop()
	p.cancel()
	if werr := p.group.Wait(); werr != nil {
		pkgLogger.Printf("avplay: pipeline stage error: %v", werr)
	}

	var err error
	if p.snk != nil {
		err = p.snk.Close()
	}
	if cerr := p.format.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
