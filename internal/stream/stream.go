// Package stream implements the per-elementary-stream state: the decoded
// frame queue, the present-stage event queue, and the atomically-published
// playback clock.
package stream

import (
	"context"
	"sync/atomic"

	"github.com/erparts/avplay/internal/avtime"
	"github.com/erparts/avplay/internal/config"
	"github.com/erparts/avplay/internal/decoder"
	"github.com/erparts/avplay/internal/event"
	"github.com/erparts/avplay/internal/queue"
)

// Context is one active elementary stream's full pipeline state. Exactly
// one exists per audio/video stream that's part of the current playback
// session.
type Context struct {
	Kind   decoder.Kind
	Stream *decoder.StreamDescriptor
	Base   avtime.Base

	FrameQueue *queue.Queue[*FrameSlot]

	PresentEvents *queue.Queue[*event.Event]

	playTimeUS atomic.Int64
}

// FrameSlot carries whichever of VideoFrame/AudioFrame is relevant, plus
// the end-of-stream sentinel (both nil).
type FrameSlot struct {
	Video *decoder.VideoFrame
	Audio *decoder.AudioFrame
	EOS   bool
}

// NewVideo builds the context for the selected video stream.
func NewVideo(desc *decoder.StreamDescriptor) *Context {
	num, den := desc.FrameRate()
	return newContext(decoder.KindVideo, desc, avtime.FromFrameRate(int64(num), int64(den)))
}

// NewAudio builds the context for the selected audio stream.
func NewAudio(desc *decoder.StreamDescriptor) *Context {
	return newContext(decoder.KindAudio, desc, avtime.FromSampleRate(int64(desc.SampleRate())))
}

func newContext(kind decoder.Kind, desc *decoder.StreamDescriptor, base avtime.Base) *Context {
	return &Context{
		Kind:          kind,
		Stream:        desc,
		Base:          base,
		FrameQueue:    queue.New[*FrameSlot](config.FrameQueueSize),
		PresentEvents: queue.New[*event.Event](0),
	}
}

// PlayTimeUS returns the stream's current presentation time, in
// microseconds. Safe for concurrent readers.
func (c *Context) PlayTimeUS() int64 {
	return c.playTimeUS.Load()
}

// SetPlayTimeUS publishes a new presentation time. Only the stream's own
// presenter goroutine should call this: writes are single-threaded per
// stream.
func (c *Context) SetPlayTimeUS(us int64) {
	c.playTimeUS.Store(us)
}

// CanEnqueueFrame is the frame-queue backpressure predicate.
func CanEnqueueFrame(q *queue.Queue[*FrameSlot]) bool {
	return q.Len() < config.FrameQueueSize
}

// DequeueFrame blocks until a decoded frame is available or ctx is done,
// polling in short bursts so a presenter's shutdown is never more than one
// config.QueueWaitTimeout late.
func (c *Context) DequeueFrame(ctx context.Context) (*FrameSlot, bool) {
	for {
		if slot, ok := c.FrameQueue.DequeueTimedWait(queue.HasData[*FrameSlot], config.QueueWaitTimeout); ok {
			return slot, true
		}
		select {
		case <-ctx.Done():
			return nil, false
		default:
		}
	}
}

// NewVideoFrame, NewAudioFrame and EOSFrame construct the payloads pushed
// onto FrameQueue.
func NewVideoFrame(f *decoder.VideoFrame) *FrameSlot { return &FrameSlot{Video: f} }
func NewAudioFrame(f *decoder.AudioFrame) *FrameSlot { return &FrameSlot{Audio: f} }
func EOSFrame() *FrameSlot                           { return &FrameSlot{EOS: true} }

// IsEOS, VideoFrame and AudioFrame expose a FrameSlot's payload to presenters.
func (f *FrameSlot) IsEOS() bool                     { return f.EOS }
func (f *FrameSlot) VideoFrame() *decoder.VideoFrame { return f.Video }
func (f *FrameSlot) AudioFrame() *decoder.AudioFrame { return f.Audio }
