package breakout

import (
	"sort"

	"chartline-trader/internal/models"
)

// Phase is the order-parent resolution phase.
type Phase int

const (
	Unresolved Phase = iota
	Candidate
	Resolved
)

func (p Phase) String() string {
	switch p {
	case Unresolved:
		return "unresolved"
	case Candidate:
		return "candidate"
	case Resolved:
		return "resolved"
	}
	return "unknown"
}

// State is the order-parent state machine. Actual is the initial order
// parent and never changes once set; Current is the most extreme candidate
// seen so far.
type State struct {
	Phase      Phase
	Current    *models.ParentExtremum
	Actual     *models.ParentExtremum
	Reassigned bool
}

// Start seeds the machine with the initial order parent, if any.
func Start(actual *models.ParentExtremum) State {
	if actual == nil {
		return State{Phase: Unresolved}
	}
	a := *actual
	return State{Phase: Candidate, Current: &a, Actual: &a}
}

// Consider advances the machine by one candidate. A candidate replaces the
// current order parent only when strictly more extreme.
func (s State) Consider(c models.ParentExtremum) State {
	switch s.Phase {
	case Unresolved:
		return State{Phase: Candidate, Current: &c, Actual: s.Actual}
	case Candidate:
		if c.MoreExtremeThan(*s.Current) {
			return State{Phase: Candidate, Current: &c, Actual: s.Actual}
		}
		return s
	case Resolved:
		if c.MoreExtremeThan(*s.Current) {
			return State{Phase: Candidate, Current: &c, Actual: s.Actual}.Resolve()
		}
		return s
	}
	return s
}

// Resolve closes the machine. A machine that never saw a candidate resolves
// with no order parent.
func (s State) Resolve() State {
	if s.Phase == Resolved {
		return s
	}
	out := State{Phase: Resolved, Current: s.Current, Actual: s.Actual}
	if s.Current != nil {
		out.Reassigned = s.Actual == nil || !s.Current.Same(*s.Actual)
	}
	return out
}

// Reassign feeds candidates to the machine most extreme first (ties by x)
// and resolves it. Applying it again to its own result is a fixed point.
func Reassign(s State, candidates []models.ParentExtremum) State {
	ordered := make([]models.ParentExtremum, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Y() != b.Y() {
			return a.Kind.MoreExtreme(a.Y(), b.Y())
		}
		return a.X() < b.X()
	})
	for _, c := range ordered {
		s = s.Consider(c)
	}
	return s.Resolve()
}
