// Package config holds the process-wide, compile-time pipeline tunables,
// kept together the way the original C implementation's config.h did.
package config

import "time"

const (
	// FrameQueueSize bounds the per-stream decoded-frame queue occupancy.
	FrameQueueSize = 40

	// MaxQueuedAudioBuffers bounds submitted-but-not-completed audio sink
	// buffers before the audio presenter backs off.
	MaxQueuedAudioBuffers = 50
	// IdleWaitFrames is how many frame-durations the audio presenter
	// sleeps when backpressured.
	IdleWaitFrames = 2

	// MaxEventsPerLoop bounds how many control events a single stage
	// drains per invocation of its event loop.
	MaxEventsPerLoop = 10
	// QueueWaitUS is the timeout used by every timed-wait queue
	// operation, so stages can still process events under backpressure.
	QueueWaitUS = 16_000

	// SyncDiffThresholdUS is the A/V sync tolerance: beyond this, the
	// video presenter drops (behind) or waits (ahead) instead of
	// rendering immediately.
	SyncDiffThresholdUS = 50_000
	// SyncMaxWaitFrames bounds how many frame-durations the video
	// presenter will sleep to wait for audio to catch up.
	SyncMaxWaitFrames = 1

	// SeekStepUS is the step used by the forward/backward seek keys.
	SeekStepUS = 5_000_000
)

// QueueWaitTimeout is QueueWaitUS as a time.Duration, for use with the
// queue package's timed-wait operations.
const QueueWaitTimeout = QueueWaitUS * time.Microsecond
