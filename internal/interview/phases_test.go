package interview

import "testing"

func TestDetectTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		asked  Tag
		answer string
		enter  Phase
		next   Tag
		fired  bool
	}{
		{
			name:   "kyc completion flows straight into business plan",
			asked:  Tag{PhaseKYC, 20},
			answer: "yes, ready to go",
			enter:  PhaseBusinessPlan,
			next:   Tag{PhaseBusinessPlan, 1},
			fired:  true,
		},
		{
			name:   "business plan completion enters transition window",
			asked:  Tag{PhaseBusinessPlan, 46},
			answer: "that's everything",
			enter:  PhasePlanToRoadmap,
			next:   Tag{PhaseRoadmap, 1},
			fired:  true,
		},
		{
			name:   "roadmap completion enters transition window",
			asked:  Tag{PhaseRoadmap, 6},
			answer: "looks good",
			enter:  PhaseRoadmapToImplementation,
			next:   Tag{PhaseImplementation, 1},
			fired:  true,
		},
		{
			name:   "implementation is terminal",
			asked:  Tag{PhaseImplementation, 10},
			answer: "done",
			fired:  false,
		},
		{
			name:   "mid-phase question does not fire",
			asked:  Tag{PhaseBusinessPlan, 45},
			answer: "an answer",
			fired:  false,
		},
		{
			name:   "empty answer does not fire",
			asked:  Tag{PhaseKYC, 20},
			answer: "   ",
			fired:  false,
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			edge, fired := DetectTransition(tc.asked, tc.answer)
			if fired != tc.fired {
				t.Fatalf("fired = %v, want %v", fired, tc.fired)
			}
			if fired && (edge.Enter != tc.enter || edge.NextAsked != tc.next) {
				t.Fatalf("edge = %+v, want enter %s next %v", edge, tc.enter, tc.next)
			}
		})
	}
}

func TestResolveTransitionExit(t *testing.T) {
	t.Parallel()

	if exit, ok := ResolveTransitionExit(PhasePlanToRoadmap); !ok || exit != PhaseRoadmap {
		t.Errorf("plan transition resolves to %s, %v", exit, ok)
	}
	if exit, ok := ResolveTransitionExit(PhaseRoadmapToImplementation); !ok || exit != PhaseImplementation {
		t.Errorf("roadmap transition resolves to %s, %v", exit, ok)
	}
	if _, ok := ResolveTransitionExit(PhaseKYC); ok {
		t.Error("KYC is not a transition window")
	}
}

func TestShouldIncrement(t *testing.T) {
	t.Parallel()

	kyc3 := Tag{PhaseKYC, 3}

	tests := []struct {
		name string
		tag  Tag
		last *Tag
		want bool
	}{
		{"first tagged question", Tag{PhaseKYC, 1}, nil, true},
		{"sequential progression", Tag{PhaseKYC, 4}, &kyc3, true},
		{"same tag is a follow-up", Tag{PhaseKYC, 3}, &kyc3, false},
		{"skip does not count", Tag{PhaseKYC, 7}, &kyc3, false},
		{"regression does not count", Tag{PhaseKYC, 2}, &kyc3, false},
		{"new phase first question counts", Tag{PhaseBusinessPlan, 1}, &kyc3, true},
		{"new phase mid-sequence does not", Tag{PhaseBusinessPlan, 5}, &kyc3, false},
	}

	for _, tt := range tests {
		if got := ShouldIncrement(tt.tag, tt.last); got != tt.want {
			t.Errorf("%s: ShouldIncrement = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTaglessFallbackCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		current    int
		historyLen int
		want       int
		changed    bool
	}{
		{0, 0, 0, false},
		{0, 2, 1, true},
		{0, 10, 1, true}, // never more than +1 per turn
		{1, 3, 1, false},
		{1, 4, 2, true},
		{2, 20, 2, false}, // bootstrap only while count is 0 or 1
		{5, 20, 5, false},
	}

	for _, tt := range tests {
		got, changed := TaglessFallbackCount(tt.current, tt.historyLen)
		if got != tt.want || changed != tt.changed {
			t.Errorf("TaglessFallbackCount(%d, %d) = %d, %v; want %d, %v",
				tt.current, tt.historyLen, got, changed, tt.want, tt.changed)
		}
	}
}
