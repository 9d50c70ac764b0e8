package avtime

import "testing"

func TestFromFrameRatePTSToUS(t *testing.T) {
	// 25 fps: one PTS tick = 1/25 s = 40,000 us.
	b := FromFrameRate(25, 1)
	if got := b.PTSToUS(1); got != 40_000 {
		t.Errorf("PTSToUS(1) = %d, want 40000", got)
	}
	if got := b.PTSToUS(10); got != 400_000 {
		t.Errorf("PTSToUS(10) = %d, want 400000", got)
	}
}

func TestFromSampleRatePTSToUS(t *testing.T) {
	// 48kHz: one PTS tick (one sample) = 1/48000 s ≈ 20.83 us.
	b := FromSampleRate(48_000)
	if got := b.PTSToUS(48_000); got != 1_000_000 {
		t.Errorf("PTSToUS(48000) = %d, want 1000000 (one second)", got)
	}
}

func TestRoundTripWithinOneTimeBaseUnit(t *testing.T) {
	// Round-tripping through PTS units may lose at most one time-base tick:
	// pts_to_us(us_to_pts(x)) should land in [x − tb, x + tb], tb = 10^6·num/den.
	b := FromFrameRate(30_000, 1_001) // NTSC-ish 29.97 fps
	tb := 1_000_000 * b.Num / b.Den

	for _, x := range []int64{0, 1, 1_000, 500_000, 7_890_123} {
		roundTrip := b.PTSToUS(b.USToPTS(x))
		diff := roundTrip - x
		if diff < -tb || diff > tb {
			t.Errorf("round trip for us=%d: got %d, diff %d outside ±%d", x, roundTrip, diff, tb)
		}
	}
}
