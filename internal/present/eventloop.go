// Package present implements the audio and video presentation stages: the
// audio presenter doubles as the master clock, the video presenter syncs
// against it, and both share a common event-handling protocol.
package present

import (
	"context"

	"github.com/erparts/avplay/internal/config"
	"github.com/erparts/avplay/internal/event"
	"github.com/erparts/avplay/internal/queue"
	"github.com/erparts/avplay/internal/stream"
)

// Hooks are the optional callbacks a presenter can hook into its own event
// handling (used by the audio presenter to pause/resume its sink, and by
// the video presenter for symmetry).
type Hooks struct {
	OnPause  func()
	OnResume func()
	OnSeek   func(toUS int64)
}

// runEventLoop drains up to config.MaxEventsPerLoop events from sc's
// present-event queue, applying the shared pause/seek/stop protocol every
// presenter follows. It reports whether the presenter should stop, either
// because a STOP was observed or because ctx was cancelled while blocked
// inside a PAUSE or SEEK_START wait.
func runEventLoop(ctx context.Context, sc *stream.Context, h Hooks) (stopped bool) {
	for i := 0; i < config.MaxEventsPerLoop; i++ {
		e, ok := sc.PresentEvents.Dequeue()
		if !ok {
			return false
		}

		switch e.Kind {
		case event.Pause:
			if h.OnPause != nil {
				h.OnPause()
			}
			if !waitForResume(ctx, sc) {
				e.Unref()
				return true
			}
			if h.OnResume != nil {
				h.OnResume()
			}

		case event.SeekStart:
			if h.OnSeek != nil {
				h.OnSeek(e.SeekToUS)
			}
			sc.SetPlayTimeUS(e.SeekToUS)
			if !waitForSeekEnd(ctx, sc) {
				e.Unref()
				return true
			}

		case event.Stop:
			e.Unref()
			return true

		case event.Resume:
			// Only reached outside the PAUSE branch; a stray RESUME
			// with no matching PAUSE in flight is otherwise ignored.
		}
		e.Unref()
	}
	return false
}

// waitForResume blocks until RESUME arrives or ctx is done, discarding any
// other event in between. A STOP or SEEK_START arriving mid-pause is
// dropped this way, preserved deliberately rather than redesigned (see
// DESIGN.md).
func waitForResume(ctx context.Context, sc *stream.Context) bool {
	for {
		e, ok := dequeueEvent(ctx, sc.PresentEvents)
		if !ok {
			return false
		}
		kind := e.Kind
		e.Unref()
		if kind == event.Resume {
			return true
		}
	}
}

// waitForSeekEnd blocks until the next event arrives or ctx is done, and
// takes that event as the SEEK_END. Only one seek is ever in flight and
// pause/resume requests are no-ops while seeking, so the next event is the
// match unless a STOP from RequestStop arrives first.
func waitForSeekEnd(ctx context.Context, sc *stream.Context) bool {
	e, ok := dequeueEvent(ctx, sc.PresentEvents)
	if !ok {
		return false
	}
	e.Unref()
	return true
}

// dequeueEvent blocks until q has an item or ctx is done, polling in short
// bursts so cancellation is never more than one config.QueueWaitTimeout
// late.
func dequeueEvent(ctx context.Context, q *queue.Queue[*event.Event]) (*event.Event, bool) {
	for {
		if e, ok := q.DequeueTimedWait(queue.HasData[*event.Event], config.QueueWaitTimeout); ok {
			return e, true
		}
		select {
		case <-ctx.Done():
			return nil, false
		default:
		}
	}
}
