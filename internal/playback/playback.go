// Package playback implements the whole-pipeline state: the format handle,
// optional audio/video stream contexts, the
// PLAYING/PAUSE/PLAY_SEEKING/PAUSE_SEEKING state machine, and the demux
// event queue that seek requests are funneled through.
package playback

import (
	"fmt"
	"sync"

	"github.com/erparts/avplay/internal/decoder"
	"github.com/erparts/avplay/internal/event"
	"github.com/erparts/avplay/internal/queue"
	"github.com/erparts/avplay/internal/stream"
)

// State is one of the four playback states the pipeline can be in.
type State uint8

const (
	Playing State = iota
	Pause
	PlaySeeking
	PauseSeeking
)

func (s State) String() string {
	switch s {
	case Playing:
		return "PLAYING"
	case Pause:
		return "PAUSE"
	case PlaySeeking:
		return "PLAY_SEEKING"
	case PauseSeeking:
		return "PAUSE_SEEKING"
	default:
		return "UNKNOWN"
	}
}

// Context is the whole-pipeline play context.
type Context struct {
	Format *decoder.Format

	VideoSC *stream.Context
	AudioSC *stream.Context

	DemuxEvents *queue.Queue[*event.Event]

	mu    sync.Mutex
	state State
}

// New builds a play context over the given format and whichever of
// video/audio stream contexts are present. At least one must be non-nil.
func New(format *decoder.Format, video, audio *stream.Context) (*Context, error) {
	if video == nil && audio == nil {
		return nil, fmt.Errorf("playback: no audio or video stream")
	}
	return &Context{
		Format:      format,
		VideoSC:     video,
		AudioSC:     audio,
		DemuxEvents: queue.New[*event.Event](0),
		state:       Playing,
	}, nil
}

// State returns the current playback state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StreamContexts returns whichever of the video/audio stream contexts are
// present, video first.
func (c *Context) StreamContexts() []*stream.Context {
	var scs []*stream.Context
	if c.VideoSC != nil {
		scs = append(scs, c.VideoSC)
	}
	if c.AudioSC != nil {
		scs = append(scs, c.AudioSC)
	}
	return scs
}

// StreamFor returns whichever stream context owns the given packet kind and
// container stream index, or nil if neither active stream matches (a
// packet for an unselected stream).
func (c *Context) StreamFor(kind decoder.Kind, streamIndex int) *stream.Context {
	for _, sc := range c.StreamContexts() {
		if sc.Kind == kind && sc.Stream.Index == streamIndex {
			return sc
		}
	}
	return nil
}

// presentQueues collects the non-nil streams' present-event queues, for the
// playback-control broadcast fan-outs below. The demux/decode stage is a
// single goroutine serialized on the container itself (see internal/
// pipeline), so it observes PAUSE/RESUME/STOP indirectly, through the
// frame-queue backpressure the present stage's own pause naturally applies,
// rather than through a broadcast queue of its own.
func (c *Context) presentQueues() []*queue.Queue[*event.Event] {
	var qs []*queue.Queue[*event.Event]
	if c.VideoSC != nil {
		qs = append(qs, c.VideoSC.PresentEvents)
	}
	if c.AudioSC != nil {
		qs = append(qs, c.AudioSC.PresentEvents)
	}
	return qs
}

func broadcast(e *event.Event, queues []*queue.Queue[*event.Event]) {
	for _, q := range queues {
		q.Enqueue(e.Ref())
	}
	e.Unref()
}

// RequestPause transitions PLAYING -> PAUSE, broadcasting PAUSE to every
// present-stage event queue. Any other state is a no-op.
func (c *Context) RequestPause() {
	c.mu.Lock()
	if c.state != Playing {
		c.mu.Unlock()
		return
	}
	c.state = Pause
	c.mu.Unlock()

	broadcast(event.Alloc(event.Pause, 0), c.presentQueues())
}

// RequestResume transitions PAUSE -> PLAYING, broadcasting RESUME. Any
// other state is a no-op.
func (c *Context) RequestResume() {
	c.mu.Lock()
	if c.state != Pause {
		c.mu.Unlock()
		return
	}
	c.state = Playing
	c.mu.Unlock()

	broadcast(event.Alloc(event.Resume, 0), c.presentQueues())
}

// RequestSeek transitions PLAYING -> PLAY_SEEKING or PAUSE -> PAUSE_SEEKING
// and sends SEEK_START only to the demuxer, which is the sole
// serialization point for container-level seeks. Any other state (a seek
// already in flight) is a no-op.
func (c *Context) RequestSeek(toUS int64) {
	c.mu.Lock()
	switch c.state {
	case Playing:
		c.state = PlaySeeking
	case Pause:
		c.state = PauseSeeking
	default:
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.DemuxEvents.Enqueue(event.Alloc(event.SeekStart, toUS))
}

// RequestStop broadcasts STOP to every present stage, used for
// controller-driven shutdown.
func (c *Context) RequestStop() {
	broadcast(event.Alloc(event.Stop, 0), c.presentQueues())
}

// CompleteSeek is called by the demuxer once it has flushed and reseeked
// every active stream: PLAY_SEEKING -> PLAYING, PAUSE_SEEKING -> PAUSE. Any
// other state is a programming error.
func (c *Context) CompleteSeek() {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case PlaySeeking:
		c.state = Playing
	case PauseSeeking:
		c.state = Pause
	default:
		panic(fmt.Sprintf("playback: CompleteSeek in illegal state %s", c.state))
	}
}

// IsSeeking reports whether a seek is currently in flight, i.e. whether
// video/audio presenters should skip A/V-sync decisions while the clock is
// being repositioned.
func (c *Context) IsSeeking() bool {
	s := c.State()
	return s == PlaySeeking || s == PauseSeeking
}

// QueueOccupancy reports decoded-frame queue lengths for diagnostics (bound
// to the "I" key in the bundled example).
type QueueOccupancy struct {
	VideoFrames, AudioFrames int
	HasVideo, HasAudio       bool
}

func (c *Context) QueueOccupancy() QueueOccupancy {
	var o QueueOccupancy
	if c.VideoSC != nil {
		o.HasVideo = true
		o.VideoFrames = c.VideoSC.FrameQueue.Len()
	}
	if c.AudioSC != nil {
		o.HasAudio = true
		o.AudioFrames = c.AudioSC.FrameQueue.Len()
	}
	return o
}
