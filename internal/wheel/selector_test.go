package wheel

import (
	"math"
	"testing"
	"time"

	"github.com/nantokaworks/wheel-overlay/internal/types"
)

func mod360(v float64) float64 {
	m := math.Mod(v, 360)
	if m < 0 {
		m += 360
	}
	return m
}

func TestSelectOutcome_TargetIndexInRange(t *testing.T) {
	selector := NewSeededSelector(1)

	for _, prizeCount := range []int{1, 2, 3, 12, 24} {
		for i := 0; i < 200; i++ {
			outcome := selector.SelectOutcome(types.ModeReguler, prizeCount, 0)
			if outcome.TargetIndex < 0 || outcome.TargetIndex >= prizeCount {
				t.Fatalf("target index out of range: got=%d prizeCount=%d", outcome.TargetIndex, prizeCount)
			}
		}
	}
}

func TestSelectOutcome_RotationAlignsSegmentUnderPointer(t *testing.T) {
	selector := NewSeededSelector(42)

	const prizeCount = 12
	const segmentAngle = 30.0

	seenZero := false
	seenSix := false

	for i := 0; i < 500; i++ {
		outcome := selector.SelectOutcome(types.ModeReguler, prizeCount, 0)

		center := float64(outcome.TargetIndex)*segmentAngle + segmentAngle/2
		want := mod360(270 - center)
		got := mod360(outcome.TargetRotation)
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("rotation not aligned: index=%d got=%v want=%v", outcome.TargetIndex, got, want)
		}

		switch outcome.TargetIndex {
		case 0:
			seenZero = true
			if math.Abs(got-255) > 1e-9 {
				t.Fatalf("unexpected rotation for index 0: got=%v want=255", got)
			}
		case 6:
			seenSix = true
			if math.Abs(got-75) > 1e-9 {
				t.Fatalf("unexpected rotation for index 6: got=%v want=75", got)
			}
		}
	}

	if !seenZero || !seenSix {
		t.Fatalf("sample did not cover indices 0 and 6: zero=%v six=%v", seenZero, seenSix)
	}
}

func TestSelectOutcome_DurationAndSpinsPerMode(t *testing.T) {
	selector := NewSeededSelector(7)

	for i := 0; i < 300; i++ {
		outcome := selector.SelectOutcome(types.ModeReguler, 12, 0)
		if outcome.Duration < 10*time.Second || outcome.Duration >= 12*time.Second {
			t.Fatalf("reguler duration out of range: got=%v", outcome.Duration)
		}
		if outcome.FullSpins < 15 || outcome.FullSpins >= 23 {
			t.Fatalf("reguler full spins out of range: got=%d", outcome.FullSpins)
		}
	}

	for i := 0; i < 300; i++ {
		outcome := selector.SelectOutcome(types.ModeExclusive, 12, 0)
		if outcome.Duration < 12*time.Second || outcome.Duration >= 15*time.Second {
			t.Fatalf("exclusive duration out of range: got=%v", outcome.Duration)
		}
		if outcome.FullSpins < 18 || outcome.FullSpins >= 28 {
			t.Fatalf("exclusive full spins out of range: got=%d", outcome.FullSpins)
		}
	}
}

func TestSelectOutcome_SeededReproducibility(t *testing.T) {
	a := NewSeededSelector(99)
	b := NewSeededSelector(99)

	for i := 0; i < 50; i++ {
		outcomeA := a.SelectOutcome(types.ModeExclusive, 12, 0)
		outcomeB := b.SelectOutcome(types.ModeExclusive, 12, 0)
		if outcomeA != outcomeB {
			t.Fatalf("seeded outcomes diverged at %d: a=%+v b=%+v", i, outcomeA, outcomeB)
		}
	}
}

func TestSelectOutcome_AlwaysRotatesForward(t *testing.T) {
	selector := NewSeededSelector(3)

	rotation := 0.0
	for i := 0; i < 100; i++ {
		outcome := selector.SelectOutcome(types.ModeReguler, 12, rotation)
		if outcome.TargetRotation <= rotation {
			t.Fatalf("target rotation not forward: current=%v target=%v", rotation, outcome.TargetRotation)
		}

		// fullSpinsを足す前の360°境界合わせでmod 360が変わらないこと
		center := float64(outcome.TargetIndex)*30 + 15
		want := mod360(270 - center)
		if got := mod360(outcome.TargetRotation); math.Abs(got-want) > 1e-9 {
			t.Fatalf("forward adjustment broke alignment: got=%v want=%v", got, want)
		}

		rotation = outcome.TargetRotation
	}
}
