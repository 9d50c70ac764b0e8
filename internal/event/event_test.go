package event

import "testing"

func TestRefUnrefFiresBeforeFreeExactlyOnce(t *testing.T) {
	e := Alloc(Pause, 0)
	freed := 0
	e.SetBeforeFree(func(*Event) { freed++ })

	const extraRefs = 3
	for i := 0; i < extraRefs; i++ {
		e.Ref()
	}
	if got := e.RefCount(); got != 1+extraRefs {
		t.Fatalf("refcount after %d refs = %d, want %d", extraRefs, got, 1+extraRefs)
	}

	// producer drops its own reference, then each of the extraRefs holders
	// drops theirs.
	e.Unref()
	for i := 0; i < extraRefs; i++ {
		if freed != 0 {
			t.Fatalf("before-free fired early, after %d of %d unrefs", i, extraRefs)
		}
		e.Unref()
	}

	if freed != 1 {
		t.Fatalf("before-free fired %d times, want exactly 1", freed)
	}
}

func TestFanOutTakesOneRefPerDestination(t *testing.T) {
	e := Alloc(SeekStart, 1_000_000)

	var destA, destB []*Event
	FanOut(e,
		func(ev *Event) { destA = append(destA, ev) },
		func(ev *Event) { destB = append(destB, ev) },
	)

	if got := e.RefCount(); got != 3 {
		t.Fatalf("refcount after FanOut to 2 destinations = %d, want 3 (1 producer + 2 recipients)", got)
	}

	freed := 0
	e.SetBeforeFree(func(*Event) { freed++ })

	e.Unref() // producer's own reference
	destA[0].Unref()
	if freed != 0 {
		t.Fatal("before-free fired before every recipient released its reference")
	}
	destB[0].Unref()
	if freed != 1 {
		t.Fatalf("before-free fired %d times, want exactly 1", freed)
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		Pause:     "PAUSE",
		Resume:    "RESUME",
		Stop:      "STOP",
		SeekStart: "SEEK_START",
		SeekEnd:   "SEEK_END",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", kind, got, want)
		}
	}
}
