// Package event implements the reference-counted, tagged control events
// (pause, resume, stop, seek-start, seek-end) that flow from the controller
// through the demuxer and fan out to every decode and present stage.
//
// The original C implementation (src/event.c/event.h) built this out of an
// EVENT_OBJ_HEAD macro, atomic_int refcounts and manual event_ref/event_unref
// calls at every enqueue site. This package keeps the atomic-refcount-plus-
// before-free-hook semantics but exposes them as a small Go type with
// Ref/Unref methods instead of a macro-generated struct.
package event

import "sync/atomic"

// Kind is the tag of an Event's variant.
type Kind uint8

const (
	Pause Kind = iota
	Resume
	Stop
	SeekStart
	SeekEnd
)

func (k Kind) String() string {
	switch k {
	case Pause:
		return "PAUSE"
	case Resume:
		return "RESUME"
	case Stop:
		return "STOP"
	case SeekStart:
		return "SEEK_START"
	case SeekEnd:
		return "SEEK_END"
	default:
		return "UNKNOWN"
	}
}

// Event is a tagged, reference-counted control message. SeekToUS is only
// meaningful for SeekStart/SeekEnd.
type Event struct {
	Kind     Kind
	SeekToUS int64

	refs       atomic.Int32
	beforeFree func(*Event)
}

// Alloc creates a new event with refcount 1.
func Alloc(kind Kind, seekToUS int64) *Event {
	e := &Event{Kind: kind, SeekToUS: seekToUS}
	e.refs.Store(1)
	return e
}

// SetBeforeFree installs a hook invoked exactly once, right before the
// event's last reference is released. Must be called before the event is
// shared with any other goroutine.
func (e *Event) SetBeforeFree(fn func(*Event)) {
	e.beforeFree = fn
}

// Ref takes one additional reference, e.g. before handing the event to
// another destination queue.
func (e *Event) Ref() *Event {
	e.refs.Add(1)
	return e
}

// Unref drops a reference. When the last reference is dropped, the
// before-free hook (if any) fires and the event becomes unusable.
func (e *Event) Unref() {
	if e.refs.Add(-1) == 0 {
		if e.beforeFree != nil {
			e.beforeFree(e)
		}
	}
}

// RefCount returns the current reference count. Intended for tests and
// diagnostics only.
func (e *Event) RefCount() int32 {
	return e.refs.Load()
}

// FanOut takes one reference per destination queue and enqueues the event
// into each, in order. The caller's own reference is untouched; callers
// that only held the event to fan it out should Unref it afterwards so the
// event is released exactly when every recipient has consumed it.
func FanOut(e *Event, enqueue ...func(*Event)) {
	for _, push := range enqueue {
		push(e.Ref())
	}
}
