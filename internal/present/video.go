package present

import (
	"context"
	"time"

	"github.com/erparts/avplay/internal/config"
	"github.com/erparts/avplay/internal/logging"
	"github.com/erparts/avplay/internal/playback"
	"github.com/erparts/avplay/internal/stream"
)

// RunVideo is the video presenter, slaved to the audio presenter's master
// clock when audio is present. commitFrame is
// expected to hand off to the graphics surface (surface.Surface.CommitFrame
// in production); it is passed in rather than a *surface.Surface directly
// so tests can substitute a recording stub. It returns once the stream's
// end-of-stream frame arrives, a STOP event is observed, or ctx is done.
func RunVideo(ctx context.Context, pc *playback.Context, sc *stream.Context, commitFrame func(rgba []byte), frameDuration time.Duration) {
	hooks := Hooks{}

	for {
		slot, ok := sc.DequeueFrame(ctx)
		if !ok {
			return
		}
		if slot.IsEOS() {
			return
		}

		vf := slot.VideoFrame()
		sc.SetPlayTimeUS(vf.PresentationUS)

		if pc.AudioSC != nil && !pc.IsSeeking() {
			diff := sc.PlayTimeUS() - pc.AudioSC.PlayTimeUS()
			switch {
			case diff <= -config.SyncDiffThresholdUS:
				// Behind: drop the frame, skip render and pacing sleep.
				if debugRender {
					logging.Default().Printf("present: video dropped, diff_us=%d", diff)
				}
				if runEventLoop(ctx, sc, hooks) {
					return
				}
				continue

			case diff >= config.SyncDiffThresholdUS:
				wait := time.Duration(diff) * time.Microsecond
				maxWait := frameDuration * config.SyncMaxWaitFrames
				if wait > maxWait {
					wait = maxWait
				}
				if debugRender {
					logging.Default().Printf("present: video waiting %s, diff_us=%d", wait, diff)
				}
				time.Sleep(wait)
			}
		}

		commitFrame(vf.RGBA)
		time.Sleep(frameDuration)

		if runEventLoop(ctx, sc, hooks) {
			return
		}
	}
}

// FrameDuration returns one PTS tick of the stream's time base as wall time:
// one frame for a frame-rate time base, one sample for an audio stream's
// sample-rate time base.
func FrameDuration(sc *stream.Context) time.Duration {
	return time.Duration(sc.Base.PTSToUS(1)) * time.Microsecond
}
