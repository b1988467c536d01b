package interview

import "testing"

func TestValidateAndCorrect(t *testing.T) {
	t.Parallel()

	bp := func(n int) Tag { return Tag{Phase: PhaseBusinessPlan, Number: n} }
	last10 := bp(10)

	tests := []struct {
		name      string
		candidate Tag
		last      *Tag
		want      Tag
		anomaly   AnomalyKind
	}{
		{
			name:      "normal progression",
			candidate: bp(11),
			last:      &last10,
			want:      bp(11),
			anomaly:   AnomalyNone,
		},
		{
			name:      "same number is valid re-derivation",
			candidate: bp(10),
			last:      &last10,
			want:      bp(10),
			anomaly:   AnomalyNone,
		},
		{
			name:      "forward skip forced back",
			candidate: bp(19),
			last:      &last10,
			want:      bp(11),
			anomaly:   AnomalyForwardSkip,
		},
		{
			name:      "backward jump forced forward",
			candidate: bp(3),
			last:      &last10,
			want:      bp(11),
			anomaly:   AnomalyBackwardJump,
		},
		{
			name:      "new phase starts at one",
			candidate: Tag{Phase: PhaseRoadmap, Number: 1},
			last:      &last10,
			want:      Tag{Phase: PhaseRoadmap, Number: 1},
			anomaly:   AnomalyNone,
		},
		{
			name:      "new phase mid-sequence forced to one",
			candidate: Tag{Phase: PhaseRoadmap, Number: 5},
			last:      &last10,
			want:      Tag{Phase: PhaseRoadmap, Number: 1},
			anomaly:   AnomalyCrossPhase,
		},
		{
			name:      "no prior tag accepts first question",
			candidate: Tag{Phase: PhaseKYC, Number: 1},
			last:      nil,
			want:      Tag{Phase: PhaseKYC, Number: 1},
			anomaly:   AnomalyNone,
		},
		{
			name:      "no prior tag corrects a skip",
			candidate: Tag{Phase: PhaseKYC, Number: 7},
			last:      nil,
			want:      Tag{Phase: PhaseKYC, Number: 1},
			anomaly:   AnomalyForwardSkip,
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, anomaly := ValidateAndCorrect(tc.candidate, tc.last)
			if got != tc.want || anomaly != tc.anomaly {
				t.Fatalf("ValidateAndCorrect(%v, %v) = %v, %q; want %v, %q",
					tc.candidate, tc.last, got, anomaly, tc.want, tc.anomaly)
			}
		})
	}
}

// The persisted position must be non-decreasing and never advance more than
// one step per turn, for any sequence of generated tags within a phase.
func TestSequenceMonotonicGapFree(t *testing.T) {
	t.Parallel()

	generated := []int{1, 5, 2, 2, 40, 3, 1, 6, 4}
	last := Tag{Phase: PhaseBusinessPlan, Number: 1}

	for _, n := range generated {
		got, _ := ValidateAndCorrect(Tag{Phase: PhaseBusinessPlan, Number: n}, &last)
		if got.Number < last.Number {
			t.Fatalf("position regressed: %d -> %d", last.Number, got.Number)
		}
		if got.Number > last.Number+1 {
			t.Fatalf("position skipped: %d -> %d", last.Number, got.Number)
		}
		last = got
	}
}

func TestRewriteTag(t *testing.T) {
	t.Parallel()

	in := "Great!\n\n[[Q:BUSINESS_PLAN.19]] Who are your competitors?"
	got := RewriteTag(in, Tag{Phase: PhaseBusinessPlan, Number: 11})
	want := "Great!\n\n[[Q:BUSINESS_PLAN.11]] Who are your competitors?"
	if got != want {
		t.Errorf("RewriteTag = %q, want %q", got, want)
	}
}
