// Angel Guided Interview Engine
// Phase vocabulary and per-phase question totals

package interview

// Phase identifies one stage of the guided interview.
type Phase string

const (
	PhaseKYC            Phase = "KYC"
	PhaseBusinessPlan   Phase = "BUSINESS_PLAN"
	PhaseRoadmap        Phase = "ROADMAP"
	PhaseImplementation Phase = "IMPLEMENTATION"

	// Transitional pseudo-phases entered when the final question of a
	// phase is answered. They carry a single confirmation turn.
	PhasePlanToRoadmap            Phase = "PLAN_TO_ROADMAP_TRANSITION"
	PhaseRoadmapToImplementation  Phase = "ROADMAP_TO_IMPLEMENTATION_TRANSITION"
)

// totalsByPhase is the fixed question count per phase. Progress math and
// transition edges both key off this table.
var totalsByPhase = map[Phase]int{
	PhaseKYC:                     20,
	PhaseBusinessPlan:            46,
	PhaseRoadmap:                 6,
	PhaseImplementation:          10,
	PhasePlanToRoadmap:           1,
	PhaseRoadmapToImplementation: 1,
}

// phaseOrder lists the interview stages a user progresses through.
var phaseOrder = []Phase{PhaseKYC, PhaseBusinessPlan, PhaseRoadmap, PhaseImplementation}

// phaseDisplayNames maps phases to user-facing names for the progress payload.
var phaseDisplayNames = map[Phase]string{
	PhaseKYC:                     "Getting to Know You",
	PhaseBusinessPlan:            "Business Planning",
	PhaseRoadmap:                 "Creating Your Roadmap",
	PhaseImplementation:          "Implementation & Launch",
	PhasePlanToRoadmap:           "Preparing Your Roadmap",
	PhaseRoadmapToImplementation: "Preparing Implementation",
}

// ValidPhase reports whether p is part of the known phase vocabulary,
// including the transitional pseudo-phases.
func ValidPhase(p Phase) bool {
	_, ok := totalsByPhase[p]
	return ok
}

// IsTransition reports whether p is a transitional pseudo-phase.
func IsTransition(p Phase) bool {
	return p == PhasePlanToRoadmap || p == PhaseRoadmapToImplementation
}

// TotalQuestions returns the fixed question count for a phase, or 0 for an
// unknown phase.
func TotalQuestions(p Phase) int {
	return totalsByPhase[p]
}

// DisplayName returns the user-facing name of a phase.
func DisplayName(p Phase) string {
	if name, ok := phaseDisplayNames[p]; ok {
		return name
	}
	return string(p)
}

// NextPhase returns the stage that follows p in the interview, or empty
// string when p is terminal. Transitional pseudo-phases resolve to the
// phase they lead into.
func NextPhase(p Phase) Phase {
	switch p {
	case PhasePlanToRoadmap:
		return PhaseRoadmap
	case PhaseRoadmapToImplementation:
		return PhaseImplementation
	}
	for i, phase := range phaseOrder {
		if phase == p && i+1 < len(phaseOrder) {
			return phaseOrder[i+1]
		}
	}
	return ""
}

// TransitionFor returns the pseudo-phase entered when the final question of
// p is answered. KYC flows straight into BUSINESS_PLAN with no pseudo-phase;
// IMPLEMENTATION is terminal.
func TransitionFor(p Phase) (Phase, bool) {
	switch p {
	case PhaseBusinessPlan:
		return PhasePlanToRoadmap, true
	case PhaseRoadmap:
		return PhaseRoadmapToImplementation, true
	}
	return "", false
}
