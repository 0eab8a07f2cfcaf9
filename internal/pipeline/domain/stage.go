package domain

// Stage is the opportunity pipeline stage. The set is closed; unknown
// values are rejected before they reach the stage machine.
type Stage string

const (
	StageNew       Stage = "new"
	StageContacted Stage = "contacted"
	StageProposal  Stage = "proposal"
	StageWon       Stage = "won"
	StageLost      Stage = "lost"
)

var knownStages = map[Stage]struct{}{
	StageNew:       {},
	StageContacted: {},
	StageProposal:  {},
	StageWon:       {},
	StageLost:      {},
}

// IsKnownStage reports whether the value is a member of the closed stage set.
func IsKnownStage(stage Stage) bool {
	_, ok := knownStages[stage]
	return ok
}

// Terminal reports whether the stage ends the pipeline lifecycle.
// A terminal opportunity accepts no further stage mutation.
func (s Stage) Terminal() bool {
	return s == StageWon || s == StageLost
}

// ReachedProposal reports whether the opportunity ever got a proposal
// out the door: proposal itself, or either terminal outcome.
func (s Stage) ReachedProposal() bool {
	return s == StageProposal || s == StageWon || s == StageLost
}

// CanTransition reports whether the stage machine accepts a move from
// one stage to another. Leaving a terminal stage is rejected; a
// re-entrant transition to the same terminal stage is allowed and
// treated as a no-op by the caller.
func CanTransition(from, to Stage) bool {
	if !IsKnownStage(from) || !IsKnownStage(to) {
		return false
	}
	if from.Terminal() {
		return from == to
	}
	return true
}

// Board movement policy. The interactive surface is stricter than the
// stage machine: terminal cards cannot be picked up, and terminal
// columns do not accept drops. Terminal stages therefore stay reachable
// only through the explicit close operation.

// CanPickUp reports whether a card in this stage may start a drag.
func CanPickUp(s Stage) bool {
	return IsKnownStage(s) && !s.Terminal()
}

// CanDropInto reports whether a column accepts a dropped card.
func CanDropInto(s Stage) bool {
	return IsKnownStage(s) && !s.Terminal()
}
