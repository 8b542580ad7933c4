package breakout

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"chartline-trader/internal/models"
)

func lowAt(x, bottom int) models.ParentExtremum {
	return models.NewExtremum(models.ExtremumLow, models.IndexedCandle{
		Candle:         models.Candle{X: x, TopY: bottom - 20, BottomY: bottom},
		PositionNumber: 100 - x,
		ArrowNumber:    100 - x,
	})
}

func TestStateTransitions(t *testing.T) {
	s := Start(nil)
	if s.Phase != Unresolved || s.Current != nil {
		t.Fatalf("Start(nil) = %+v, want unresolved", s)
	}

	s = s.Consider(lowAt(10, 150))
	if s.Phase != Candidate || s.Current.X() != 10 || s.Actual != nil {
		t.Fatalf("first candidate = %+v", s)
	}

	s = s.Consider(lowAt(20, 140))
	if s.Current.X() != 10 {
		t.Errorf("less extreme candidate replaced current: %+v", s.Current)
	}

	s = s.Consider(lowAt(30, 150))
	if s.Current.X() != 10 {
		t.Errorf("equally extreme candidate replaced current: %+v", s.Current)
	}

	s = s.Resolve()
	if s.Phase != Resolved {
		t.Fatalf("phase = %s, want resolved", s.Phase)
	}
	if !s.Reassigned {
		t.Error("a parent found without an initial one counts as reassigned")
	}
}

func TestResolveWithoutCandidates(t *testing.T) {
	s := Start(nil).Resolve()
	if s.Phase != Resolved || s.Current != nil || s.Reassigned {
		t.Errorf("empty machine = %+v", s)
	}
}

func TestStartKeepsActual(t *testing.T) {
	initial := lowAt(40, 170)
	s := Reassign(Start(&initial), []models.ParentExtremum{lowAt(30, 160), initial})
	if s.Reassigned || !s.Current.Same(initial) {
		t.Errorf("no deeper low, expected the initial parent, got %+v", s)
	}

	s = Reassign(Start(&initial), []models.ParentExtremum{lowAt(30, 190), initial, lowAt(35, 180)})
	if !s.Reassigned || s.Current.X() != 30 || s.Actual.X() != 40 {
		t.Errorf("expected reassignment to x=30 with actual x=40, got %+v", s)
	}
}

func TestReassignTieBreaksByX(t *testing.T) {
	s := Reassign(Start(nil), []models.ParentExtremum{lowAt(50, 200), lowAt(20, 200)})
	if s.Current.X() != 20 {
		t.Errorf("equal lows should resolve to the leftmost, got x=%d", s.Current.X())
	}
}

func TestPhaseString(t *testing.T) {
	for phase, want := range map[Phase]string{Unresolved: "unresolved", Candidate: "candidate", Resolved: "resolved", Phase(9): "unknown"} {
		if phase.String() != want {
			t.Errorf("%d.String() = %s, want %s", phase, phase.String(), want)
		}
	}
}

// Property: reassignment is a fixed point and its result is at least as
// extreme as every candidate.
func TestProperty_ReassignmentIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	properties := gopter.NewProperties(parameters)

	properties.Property("reassign twice equals reassign once", prop.ForAll(
		func(bottoms []int, initialIdx int) bool {
			candidates := make([]models.ParentExtremum, len(bottoms))
			for i, b := range bottoms {
				candidates[i] = lowAt(i*5, b)
			}
			var start State
			if initialIdx < len(candidates) {
				initial := candidates[initialIdx]
				start = Start(&initial)
			} else {
				start = Start(nil)
			}

			once := Reassign(start, candidates)
			twice := Reassign(once, candidates)

			if (once.Current == nil) != (twice.Current == nil) {
				return false
			}
			if once.Current == nil {
				return len(candidates) == 0
			}
			if !once.Current.Same(*twice.Current) || once.Reassigned != twice.Reassigned {
				return false
			}
			for _, c := range candidates {
				if c.MoreExtremeThan(*once.Current) {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(8, gen.IntRange(100, 300)),
		gen.IntRange(0, 10),
	))

	properties.TestingRun(t)
}
