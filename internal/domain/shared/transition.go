package shared

import "fmt"

// TransitionTable is an explicit allowed-from -> allowed-to map for a status
// enum. Aggregates declare their legal state transitions as data instead of
// scattering guard clauses through their mutators, so every illegal
// transition is rejected through the same path.
type TransitionTable[S comparable] map[S][]S

// CanTransition reports whether moving from one state to another is legal
func (t TransitionTable[S]) CanTransition(from, to S) bool {
	for _, allowed := range t[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Guard returns nil if the transition is legal, or an INVALID_STATE domain
// error naming both states
func (t TransitionTable[S]) Guard(from, to S) error {
	if t.CanTransition(from, to) {
		return nil
	}
	return NewDomainError("INVALID_STATE",
		fmt.Sprintf("cannot transition from %v to %v", from, to))
}

// IsTerminal reports whether a state has no outgoing transitions
func (t TransitionTable[S]) IsTerminal(state S) bool {
	return len(t[state]) == 0
}
