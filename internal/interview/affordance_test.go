package interview

import (
	"strings"
	"testing"
)

func TestShouldShowAcceptModify(t *testing.T) {
	t.Parallel()

	longAnswer := strings.Repeat("my business will sell hand-poured soy candles ", 3)

	tests := []struct {
		name      string
		generated string
		userInput string
		phase     Phase
		want      bool
	}{
		{
			name:      "explicit marker wins",
			generated: "Anything at all " + AcceptModifyMarker,
			userInput: "whatever",
			phase:     PhaseKYC,
			want:      true,
		},
		{
			name:      "draft response with literal draft input",
			generated: "Here's a draft based on what you've shared:\n\nA candle business.",
			userInput: "draft",
			phase:     PhaseBusinessPlan,
			want:      true,
		},
		{
			name:      "draft-shaped response without draft input",
			generated: "Here's a draft based on what you've shared:\n\nA candle business.",
			userInput: "tell me more",
			phase:     PhaseBusinessPlan,
			want:      false,
		},
		{
			name:      "scrapping response always shows",
			generated: "Here's a refined version of your thoughts:\n\nA candle business.",
			userInput: "scrapping: candles",
			phase:     PhaseBusinessPlan,
			want:      true,
		},
		{
			name:      "transition message",
			generated: "Congratulations — your business plan phase is complete! Next we build your roadmap.",
			userInput: "done",
			phase:     PhaseBusinessPlan,
			want:      true,
		},
		{
			name:      "substantive answer acknowledged without new tag",
			generated: "Thanks for sharing — here's what I've captured so far. Does this look accurate to you?",
			userInput: longAnswer,
			phase:     PhaseBusinessPlan,
			want:      true,
		},
		{
			name:      "acknowledgment with a new tag keeps advancing",
			generated: "Got it!\n\n[[Q:BUSINESS_PLAN.09]] What will you charge?",
			userInput: longAnswer,
			phase:     PhaseBusinessPlan,
			want:      false,
		},
		{
			name:      "short answer never triggers confirmation rule",
			generated: "Got it! Does this look accurate to you?",
			userInput: "yes",
			phase:     PhaseBusinessPlan,
			want:      false,
		},
		{
			name:      "substantive kyc answer stays direct",
			generated: "Thanks for sharing, got it.",
			userInput: longAnswer,
			phase:     PhaseKYC,
			want:      false,
		},
		{
			name:      "plain question",
			generated: "[[Q:KYC.02]] What industry are you in?",
			userInput: "Alex",
			phase:     PhaseKYC,
			want:      false,
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ShouldShowAcceptModify(tc.generated, tc.userInput, tc.phase)
			if got != tc.want {
				t.Fatalf("ShouldShowAcceptModify = %v, want %v", got, tc.want)
			}
		})
	}
}

// The classifier is a decision table: identical inputs always yield the
// same answer.
func TestAffordanceDeterminism(t *testing.T) {
	t.Parallel()

	generated := "Thanks for sharing — does this look accurate to you?"
	input := strings.Repeat("a detailed answer about the business ", 4)
	first := ShouldShowAcceptModify(generated, input, PhaseBusinessPlan)
	for i := 0; i < 10; i++ {
		if got := ShouldShowAcceptModify(generated, input, PhaseBusinessPlan); got != first {
			t.Fatal("classifier is not deterministic")
		}
	}
}
