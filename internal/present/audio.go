package present

import (
	"context"
	"time"

	"github.com/erparts/avplay/internal/config"
	"github.com/erparts/avplay/internal/logging"
	"github.com/erparts/avplay/internal/sink"
	"github.com/erparts/avplay/internal/stream"
)

// RunAudio is the audio presenter, which doubles as the pipeline's master
// clock. It dequeues decoded audio frames, submits them to snk, polls for
// completed buffers to advance sc's play time, and services pause/seek/stop
// via the shared event loop. It returns once the stream's end-of-stream
// frame arrives, a STOP event is observed, or ctx is done.
func RunAudio(ctx context.Context, sc *stream.Context, snk *sink.Sink, frameDuration time.Duration) {
	hooks := Hooks{
		OnPause: snk.Pause,
		OnResume: func() { snk.EnsurePlaying() },
		OnSeek: func(toUS int64) {
			snk.DropAll()
		},
	}

	// lastFrame is the play duration of the most recently submitted frame,
	// used to size the backpressure sleep.
	lastFrame := frameDuration
	for {
		if snk.SubmittedCount() >= config.MaxQueuedAudioBuffers {
			pollCompleted(sc, snk)
			snk.EnsurePlaying()
			time.Sleep(lastFrame * config.IdleWaitFrames)
			if runEventLoop(ctx, sc, hooks) {
				drainToStop(snk)
				return
			}
			continue
		}

		slot, ok := sc.DequeueFrame(ctx)
		if !ok {
			drainToStop(snk)
			return
		}
		if slot.IsEOS() {
			drainToCompletion(sc, snk)
			return
		}

		af := slot.AudioFrame()
		if debugAudio {
			logging.Default().Printf("present: audio submit pts_us=%d bytes=%d", af.PresentationUS, len(af.PCM))
		}
		snk.Submit(af.PCM, af.PresentationUS)
		// 4 bytes per interleaved stereo S16 sample.
		lastFrame = time.Duration(sc.Base.PTSToUS(int64(len(af.PCM)/4))) * time.Microsecond
		snk.EnsurePlaying()

		pollCompleted(sc, snk)

		if runEventLoop(ctx, sc, hooks) {
			drainToStop(snk)
			return
		}
	}
}

// pollCompleted advances sc's master clock for every audio buffer the sink
// reports finished since the last poll.
func pollCompleted(sc *stream.Context, snk *sink.Sink) {
	for _, ptsUS := range snk.PopCompleted() {
		sc.SetPlayTimeUS(ptsUS)
	}
}

// drainToCompletion is the end-of-stream handling: keep polling and
// advancing the clock with short sleeps until every submitted buffer has
// finished playing.
func drainToCompletion(sc *stream.Context, snk *sink.Sink) {
	for snk.SubmittedCount() > 0 {
		pollCompleted(sc, snk)
		time.Sleep(10 * time.Millisecond)
	}
}

// drainToStop is the STOP-triggered shutdown: the sink is torn down
// without waiting for remaining buffers to finish (the caller is exiting
// the whole pipeline, not draining to a clean end-of-stream).
func drainToStop(snk *sink.Sink) {
	snk.DropAll()
}
