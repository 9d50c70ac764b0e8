package playback

import (
	"testing"

	"github.com/erparts/avplay/internal/avtime"
	"github.com/erparts/avplay/internal/config"
	"github.com/erparts/avplay/internal/decoder"
	"github.com/erparts/avplay/internal/event"
	"github.com/erparts/avplay/internal/queue"
	"github.com/erparts/avplay/internal/stream"
)

// fakeStreamContext builds a *stream.Context without touching reisen, so
// the state machine can be exercised in isolation.
func fakeStreamContext(kind decoder.Kind, index int) *stream.Context {
	return &stream.Context{
		Kind:          kind,
		Stream:        &decoder.StreamDescriptor{Kind: kind, Index: index},
		Base:          avtime.FromFrameRate(25, 1),
		FrameQueue:    queue.New[*stream.FrameSlot](config.FrameQueueSize),
		PresentEvents: queue.New[*event.Event](0),
	}
}

func newTestContext(t *testing.T) (*Context, *stream.Context, *stream.Context) {
	t.Helper()
	video := fakeStreamContext(decoder.KindVideo, 0)
	audio := fakeStreamContext(decoder.KindAudio, 1)
	pc, err := New(nil, video, audio)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return pc, video, audio
}

func TestNewRejectsNoStreams(t *testing.T) {
	if _, err := New(nil, nil, nil); err == nil {
		t.Fatal("expected an error when neither stream is present")
	}
}

func TestInitialStateIsPlaying(t *testing.T) {
	pc, _, _ := newTestContext(t)
	if pc.State() != Playing {
		t.Fatalf("initial state = %s, want PLAYING", pc.State())
	}
}

func TestPauseBroadcastsToEveryStage(t *testing.T) {
	pc, video, audio := newTestContext(t)

	pc.RequestPause()
	if pc.State() != Pause {
		t.Fatalf("state after pause = %s, want PAUSE", pc.State())
	}

	for _, q := range []*queue.Queue[*event.Event]{video.PresentEvents, audio.PresentEvents} {
		e, ok := q.Dequeue()
		if !ok {
			t.Fatal("expected a PAUSE event on every stage queue")
		}
		if e.Kind != event.Pause {
			t.Errorf("got %s, want PAUSE", e.Kind)
		}
	}
}

func TestPauseIsNoopUnlessPlaying(t *testing.T) {
	pc, video, _ := newTestContext(t)
	pc.RequestPause()
	video.PresentEvents.Clear(nil) // drain the real PAUSE from the transition above

	pc.RequestPause() // already PAUSE: must be a no-op
	if _, ok := video.PresentEvents.Dequeue(); ok {
		t.Fatal("RequestPause while already paused enqueued a second event")
	}
}

func TestResumeBroadcastsAndReturnsToPlaying(t *testing.T) {
	pc, video, _ := newTestContext(t)
	pc.RequestPause()
	video.PresentEvents.Clear(nil)

	pc.RequestResume()
	if pc.State() != Playing {
		t.Fatalf("state after resume = %s, want PLAYING", pc.State())
	}
	e, ok := video.PresentEvents.Dequeue()
	if !ok || e.Kind != event.Resume {
		t.Fatal("expected a RESUME event on the present queue")
	}
}

func TestSeekRoutesOnlyToDemuxQueue(t *testing.T) {
	pc, video, audio := newTestContext(t)

	pc.RequestSeek(3_000_000)
	if pc.State() != PlaySeeking {
		t.Fatalf("state after seek = %s, want PLAY_SEEKING", pc.State())
	}

	e, ok := pc.DemuxEvents.Dequeue()
	if !ok || e.Kind != event.SeekStart || e.SeekToUS != 3_000_000 {
		t.Fatal("expected a SEEK_START{3000000} on the demux queue")
	}

	// SEEK_START is sent to the demux/decode stage only; present queues are
	// untouched until that stage itself fans it out.
	if _, ok := video.PresentEvents.Dequeue(); ok {
		t.Fatal("RequestSeek enqueued directly onto a present queue")
	}
	if _, ok := audio.PresentEvents.Dequeue(); ok {
		t.Fatal("RequestSeek enqueued directly onto a present queue")
	}
}

func TestSeekIsNoopWhileAlreadySeeking(t *testing.T) {
	pc, _, _ := newTestContext(t)
	pc.RequestSeek(1_000_000)
	pc.DemuxEvents.Clear(nil)

	pc.RequestSeek(2_000_000)
	if _, ok := pc.DemuxEvents.Dequeue(); ok {
		t.Fatal("RequestSeek while already seeking enqueued a second SEEK_START")
	}
}

func TestCompleteSeekResolvesToPriorPlayState(t *testing.T) {
	pc, _, _ := newTestContext(t)

	pc.RequestPause()
	pc.RequestSeek(5_000_000)
	if pc.State() != PauseSeeking {
		t.Fatalf("state = %s, want PAUSE_SEEKING", pc.State())
	}

	pc.CompleteSeek()
	if pc.State() != Pause {
		t.Fatalf("state after CompleteSeek = %s, want PAUSE", pc.State())
	}
}

func TestCompleteSeekPanicsOutsideSeekingState(t *testing.T) {
	pc, _, _ := newTestContext(t)
	defer func() {
		if recover() == nil {
			t.Fatal("expected CompleteSeek to panic when no seek is in flight")
		}
	}()
	pc.CompleteSeek()
}

func TestIsSeeking(t *testing.T) {
	pc, _, _ := newTestContext(t)
	if pc.IsSeeking() {
		t.Fatal("fresh context should not report IsSeeking")
	}
	pc.RequestSeek(0)
	if !pc.IsSeeking() {
		t.Fatal("expected IsSeeking after RequestSeek")
	}
}

func TestQueueOccupancyReportsBothStreams(t *testing.T) {
	pc, video, audio := newTestContext(t)
	video.FrameQueue.Enqueue(&stream.FrameSlot{})
	audio.FrameQueue.Enqueue(&stream.FrameSlot{})

	o := pc.QueueOccupancy()
	if !o.HasVideo || !o.HasAudio {
		t.Fatal("expected both streams reported present")
	}
	if o.VideoFrames != 1 {
		t.Errorf("VideoFrames = %d, want 1", o.VideoFrames)
	}
	if o.AudioFrames != 1 {
		t.Errorf("AudioFrames = %d, want 1", o.AudioFrames)
	}
}
