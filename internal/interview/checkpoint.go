// Angel Guided Interview Engine
// Checkpoint triggers: mid-phase summary-and-confirm gates

package interview

// CheckpointSpec identifies the section whose last question was just
// answered. It is derived from a static boundary table, never persisted
// beyond the pending flag on the session.
type CheckpointSpec struct {
	Phase    Phase
	Boundary int
	Section  string
	Ordinal  int
}

// businessPlanSections maps each boundary question number (the last
// question of a section) to the section name. Ordinals follow table order.
var businessPlanSections = []struct {
	boundary int
	name     string
}{
	{4, "Business Foundation"},
	{8, "Product & Service Details"},
	{12, "Market Research"},
	{17, "Location & Operations"},
	{25, "Financial Planning"},
	{31, "Marketing & Sales"},
	{37, "Legal & Compliance"},
	{41, "Growth & Scaling"},
	{45, "Risk Management"},
}

// CheckpointFor reports whether answering prev lands on a section boundary.
// The caller is responsible for the "genuine answer" condition: commands and
// checkpoint confirmations must not re-trigger the gate.
func CheckpointFor(prev Tag) (CheckpointSpec, bool) {
	if prev.Phase != PhaseBusinessPlan {
		return CheckpointSpec{}, false
	}
	for i, s := range businessPlanSections {
		if s.boundary == prev.Number {
			return CheckpointSpec{
				Phase:    prev.Phase,
				Boundary: s.boundary,
				Section:  s.name,
				Ordinal:  i + 1,
			}, true
		}
	}
	return CheckpointSpec{}, false
}
