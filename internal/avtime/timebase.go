// Package avtime implements the rational time base conversion between a
// stream's native PTS units and microseconds. reisen hides this conversion
// inside its own C library and only ever exposes already-converted
// time.Duration values, so this package is a self-contained piece giving the
// PTS<->us round trip its own independently testable home.
package avtime

// Base is the rational conversion pts -> us = pts * Num * 1e6 / Den,
// mirroring an FFmpeg AVRational time_base (seconds per PTS unit = Num/Den).
type Base struct {
	Num int64
	Den int64
}

// FromFrameRate builds the time base implied by a frame rate expressed as
// num/den frames per second: one PTS tick is 1/framerate seconds, so
// time_base = den/num.
func FromFrameRate(frameRateNum, frameRateDen int64) Base {
	return Base{Num: frameRateDen, Den: frameRateNum}
}

// FromSampleRate builds the time base for a PCM stream sampled at
// sampleRate Hz: one PTS tick is one sample, i.e. 1/sampleRate seconds.
func FromSampleRate(sampleRate int64) Base {
	return Base{Num: 1, Den: sampleRate}
}

// PTSToUS converts a PTS value into microseconds.
func (b Base) PTSToUS(pts int64) int64 {
	return pts * b.Num * 1_000_000 / b.Den
}

// USToPTS converts a microsecond value back into the stream's PTS units.
func (b Base) USToPTS(us int64) int64 {
	return us * b.Den / (b.Num * 1_000_000)
}
