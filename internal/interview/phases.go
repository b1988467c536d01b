// Angel Guided Interview Engine
// Phase transition controller: edge-triggered phase changes and the
// answer-count increment policy

package interview

import "strings"

// TransitionEdge describes a fired phase transition: the phase just
// completed, the pseudo-phase (or next phase) the session enters, and the
// position the session is reset to.
type TransitionEdge struct {
	Completed Phase
	Enter     Phase // pseudo-phase, or the next phase when none exists
	NextAsked Tag   // <NEXT_PHASE>.01
}

// DetectTransition reports whether answering lastAsked with a non-empty
// answer completes a phase. Transitions are edge-triggered on the phase's
// final question number; IMPLEMENTATION is terminal and never fires.
func DetectTransition(lastAsked Tag, answer string) (TransitionEdge, bool) {
	if strings.TrimSpace(answer) == "" {
		return TransitionEdge{}, false
	}
	if lastAsked.Number != TotalQuestions(lastAsked.Phase) {
		return TransitionEdge{}, false
	}
	next := NextPhase(lastAsked.Phase)
	if next == "" {
		return TransitionEdge{}, false
	}

	enter := next
	if pseudo, ok := TransitionFor(lastAsked.Phase); ok {
		enter = pseudo
	}
	return TransitionEdge{
		Completed: lastAsked.Phase,
		Enter:     enter,
		NextAsked: Tag{Phase: next, Number: 1},
	}, true
}

// ResolveTransitionExit returns the real phase a transitional pseudo-phase
// resolves into once the user responds to the transition message.
func ResolveTransitionExit(p Phase) (Phase, bool) {
	if !IsTransition(p) {
		return "", false
	}
	return NextPhase(p), true
}

// ShouldIncrement applies the answer-count increment policy: increment only
// when the new tag differs from the previous one and represents forward
// sequential progression (same-phase +1, or the first question of a new
// phase). Follow-up turns that re-derive the same tag never increment.
func ShouldIncrement(newTag Tag, last *Tag) bool {
	if last == nil {
		return true // first tagged question
	}
	if newTag == *last {
		return false
	}
	if newTag.Phase == last.Phase {
		return newTag.Number == last.Number+1
	}
	return newTag.Number == 1
}

// TaglessFallbackCount applies the conservative bootstrap for turns where
// the generator produced no tag: at most one increment per turn, and only
// while the counter is still 0 or 1. Returns the new count and whether it
// changed.
func TaglessFallbackCount(current, historyLen int) (int, bool) {
	switch {
	case current == 0 && historyLen >= 2:
		return 1, true
	case current == 1 && historyLen >= 4:
		return 2, true
	}
	return current, false
}
