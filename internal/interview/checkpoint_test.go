package interview

import "testing"

func TestCheckpointFor(t *testing.T) {
	t.Parallel()

	boundaries := map[int]string{
		4:  "Business Foundation",
		8:  "Product & Service Details",
		12: "Market Research",
		17: "Location & Operations",
		25: "Financial Planning",
		31: "Marketing & Sales",
		37: "Legal & Compliance",
		41: "Growth & Scaling",
		45: "Risk Management",
	}

	for n := 1; n <= 46; n++ {
		spec, fired := CheckpointFor(Tag{Phase: PhaseBusinessPlan, Number: n})
		wantSection, wantFired := boundaries[n]
		if fired != wantFired {
			t.Errorf("BUSINESS_PLAN.%02d: fired = %v, want %v", n, fired, wantFired)
			continue
		}
		if fired && spec.Section != wantSection {
			t.Errorf("BUSINESS_PLAN.%02d: section = %q, want %q", n, spec.Section, wantSection)
		}
	}
}

func TestCheckpointOnlyInBusinessPlan(t *testing.T) {
	t.Parallel()

	for _, phase := range []Phase{PhaseKYC, PhaseRoadmap, PhaseImplementation} {
		if _, fired := CheckpointFor(Tag{Phase: phase, Number: 4}); fired {
			t.Errorf("checkpoint fired for %s.04", phase)
		}
	}
}

func TestCheckpointOrdinals(t *testing.T) {
	t.Parallel()

	spec, _ := CheckpointFor(Tag{Phase: PhaseBusinessPlan, Number: 4})
	if spec.Ordinal != 1 {
		t.Errorf("first boundary ordinal = %d, want 1", spec.Ordinal)
	}
	spec, _ = CheckpointFor(Tag{Phase: PhaseBusinessPlan, Number: 45})
	if spec.Ordinal != 9 {
		t.Errorf("last boundary ordinal = %d, want 9", spec.Ordinal)
	}
}
