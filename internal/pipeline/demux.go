// Package pipeline implements the demux+decode stage: the single goroutine
// that owns the container and turns its packets into decoded frames on the
// per-stream frame queues the present stage consumes.
package pipeline

import (
	"context"
	"fmt"

	"github.com/erparts/avplay/internal/config"
	"github.com/erparts/avplay/internal/event"
	"github.com/erparts/avplay/internal/logging"
	"github.com/erparts/avplay/internal/playback"
	"github.com/erparts/avplay/internal/stream"
)

// Run reads packets from the container and decodes them, one goroutine for
// the whole pipeline. reisen couples packet consumption and frame
// production on state shared across the container and its stream decoders
// (a ReadPacket call followed immediately by the matching stream's
// ReadVideoFrame/ReadAudioFrame), so there is no way to split demuxing and
// decoding across separate goroutines the way a codec-agnostic pipeline
// normally would: this is the only place that touches pc.Format or a
// *decoder.StreamDescriptor.
//
// It also owns the demux event queue (seek), since it's the sole
// serialization point for container-level operations. It returns once the
// container is exhausted, a fatal error occurs, or ctx is done; STOP has no
// handling here (it's a present-stage concern, see internal/present).
// Cancellation is only checked between packets, not mid-call: a blocked
// ReadPacket still has to return on its own before shutdown completes.
func Run(ctx context.Context, pc *playback.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		pkt, ok, err := pc.Format.ReadPacket()
		if err != nil {
			return fmt.Errorf("pipeline: read packet: %w", err)
		}
		if !ok {
			return eof(ctx, pc)
		}

		var sc *stream.Context
		if pkt != nil {
			sc = pc.StreamFor(pkt.Kind, pkt.StreamIndex)
		}
		if sc != nil {
			if err := decodeAndEnqueue(ctx, pc, sc); err != nil {
				return err
			}
		}
		// packets of other elementary stream types (pkt == nil) or for a
		// stream that wasn't selected for playback fall through without
		// being decoded.

		if err := runEvents(ctx, pc); err != nil {
			return err
		}
	}
}

// decodeAndEnqueue decodes the frame (if any) produced by the packet just
// read for sc, and enqueues it, applying backpressure.
func decodeAndEnqueue(ctx context.Context, pc *playback.Context, sc *stream.Context) error {
	video, audio, err := sc.Stream.Receive()
	if err != nil {
		return fmt.Errorf("pipeline: decode: %w", err)
	}
	if video == nil && audio == nil {
		return nil // this packet carried no complete frame
	}

	var slot *stream.FrameSlot
	if video != nil {
		if debugCodec {
			logging.Default().Printf("pipeline: decoded video frame pts_us=%d", video.PresentationUS)
		}
		slot = stream.NewVideoFrame(video)
	} else {
		if debugCodec {
			logging.Default().Printf("pipeline: decoded audio frame pts_us=%d bytes=%d", audio.PresentationUS, len(audio.PCM))
		}
		slot = stream.NewAudioFrame(audio)
	}

	for {
		if sc.FrameQueue.EnqueueTimedWait(slot, stream.CanEnqueueFrame, config.QueueWaitTimeout) {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := runEvents(ctx, pc); err != nil {
			return err
		}
	}
}

// eof enqueues the end-of-stream frame sentinel into every active stream's
// frame queue, blocking until each fits or ctx is done.
func eof(ctx context.Context, pc *playback.Context) error {
	for _, sc := range pc.StreamContexts() {
		for !sc.FrameQueue.EnqueueTimedWait(stream.EOSFrame(), stream.CanEnqueueFrame, config.QueueWaitTimeout) {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
		}
	}
	return nil
}

// runEvents drains up to config.MaxEventsPerLoop events from the play
// context's demux queue.
func runEvents(ctx context.Context, pc *playback.Context) error {
	for i := 0; i < config.MaxEventsPerLoop; i++ {
		e, ok := pc.DemuxEvents.Dequeue()
		if !ok {
			return nil
		}
		if e.Kind == event.SeekStart {
			if err := handleSeek(pc, e); err != nil {
				e.Unref()
				return err
			}
		}
		e.Unref()
	}
	return nil
}

// handleSeek executes the SEEK_START protocol: signal the present stage so
// it stops sampling the clock, reseek and flush each stream, signal
// SEEK_END to unblock the present stage, then resolve the playback state
// machine.
func handleSeek(pc *playback.Context, start *event.Event) error {
	scs := pc.StreamContexts()

	for _, sc := range scs {
		sc.PresentEvents.Enqueue(start.Ref())
	}

	for _, sc := range scs {
		if err := pc.Format.Seek(sc.Stream, start.SeekToUS); err != nil {
			return fmt.Errorf("pipeline: seek: %w", err)
		}
		sc.SetPlayTimeUS(start.SeekToUS)
		if err := sc.Stream.Flush(); err != nil {
			return fmt.Errorf("pipeline: seek flush: %w", err)
		}
		sc.FrameQueue.Clear(nil)
	}

	end := event.Alloc(event.SeekEnd, start.SeekToUS)
	for _, sc := range scs {
		sc.PresentEvents.Enqueue(end.Ref())
	}
	end.Unref()

	pc.CompleteSeek()
	return nil
}
