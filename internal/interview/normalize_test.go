package interview

import (
	"strings"
	"testing"
)

func TestNormalizeIdempotence(t *testing.T) {
	t.Parallel()

	nc := NormalizeContext{Phase: PhaseKYC, LastNumber: 1}

	samples := []string{
		"What's your name?",
		"[[Q:KYC.02]] What's your name?",
		"That's great!\n\n\n\n\nHave you started a business before? Yes / No",
		"What's your current work situation? Full-time employed Part-time Student Unemployed Self-employed/freelancer Other",
		"Here's a draft based on what you've shared:\n\nMy business will sell candles.",
		AcceptModifyMarker + "\nDoes this look accurate to you?",
		"No question here, just commentary.",
		"",
		"• • Full-time employed\n• Part-time",
	}

	for _, s := range samples {
		first := Normalize(s, nc)
		second := Normalize(first, nc)
		if first != second {
			t.Errorf("normalize not idempotent for %q:\nfirst:  %q\nsecond: %q", s, first, second)
		}
	}
}

func TestInjectMissingTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		nc   NormalizeContext
		want string // substring the output must contain
		none bool   // no tag must be injected
	}{
		{
			name: "question without tag gets next number",
			in:   "What's your name?",
			nc:   NormalizeContext{Phase: PhaseKYC, LastNumber: 1},
			want: "[[Q:KYC.02]]",
		},
		{
			name: "existing tag untouched",
			in:   "[[Q:KYC.05]] What city are you in?",
			nc:   NormalizeContext{Phase: PhaseKYC, LastNumber: 4},
			want: "[[Q:KYC.05]]",
		},
		{
			name: "command response never tagged",
			in:   "Here's a draft based on what you've shared: does this work for you?",
			nc:   NormalizeContext{Phase: PhaseBusinessPlan, LastNumber: 3},
			none: true,
		},
		{
			name: "side-channel flag suppresses injection",
			in:   "Would you like to explore this further?",
			nc:   NormalizeContext{Phase: PhaseBusinessPlan, LastNumber: 3, CommandResponse: true},
			none: true,
		},
		{
			name: "statement without question mark untouched",
			in:   "Thanks for sharing that, it sounds like a promising idea.",
			nc:   NormalizeContext{Phase: PhaseKYC, LastNumber: 2},
			none: true,
		},
		{
			name: "too-short reply untouched",
			in:   "Why?",
			nc:   NormalizeContext{Phase: PhaseKYC, LastNumber: 2},
			none: true,
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Normalize(tc.in, tc.nc)
			if tc.none {
				if strings.Contains(got, "[[Q:") && !strings.Contains(tc.in, "[[Q:") {
					t.Fatalf("tag injected unexpectedly: %q", got)
				}
				return
			}
			if !strings.Contains(got, tc.want) {
				t.Fatalf("Normalize(%q) = %q, want substring %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestStripControlTokens(t *testing.T) {
	t.Parallel()

	in := "Here's your summary.\n" + AcceptModifyMarker + "\nDoes this look accurate?"
	got := Normalize(in, NormalizeContext{Phase: PhaseBusinessPlan, CommandResponse: true})
	if strings.Contains(got, "[[BUTTONS:") {
		t.Errorf("marker not stripped: %q", got)
	}
}

func TestReformatChoices(t *testing.T) {
	t.Parallel()

	in := "That's perfect!\n\nWhat's your current work situation? Full-time employed Part-time Student Unemployed Self-employed/freelancer Other"
	got := Normalize(in, NormalizeContext{Phase: PhaseKYC, LastNumber: 3, CommandResponse: true})
	for _, option := range []string{"• Full-time employed", "• Part-time", "• Student", "• Unemployed", "• Self-employed/freelancer", "• Other"} {
		if !strings.Contains(got, option) {
			t.Fatalf("missing bullet %q in %q", option, got)
		}
	}

	in = "Have you started a business before? Yes / No"
	got = Normalize(in, NormalizeContext{Phase: PhaseKYC, LastNumber: 5, CommandResponse: true})
	if !strings.Contains(got, "before?\n\nYes / No") {
		t.Fatalf("yes/no not separated: %q", got)
	}
}

func TestCollapseBlankLines(t *testing.T) {
	t.Parallel()

	got := Normalize("a\n\n\n\n\nb", NormalizeContext{CommandResponse: true})
	if got != "a\n\nb" {
		t.Errorf("collapse = %q, want %q", got, "a\n\nb")
	}
}

func TestCleanForDisplay(t *testing.T) {
	t.Parallel()

	in := "Question 3 of 20 (15%): [[Q:KYC.03]] Where are you located?\n" + AcceptModifyMarker
	got := CleanForDisplay(in)
	if strings.Contains(got, "[[Q:") || strings.Contains(got, "[[BUTTONS:") || strings.Contains(got, "Question 3 of 20") {
		t.Errorf("display text still carries machine artifacts: %q", got)
	}
	if !strings.Contains(got, "Where are you located?") {
		t.Errorf("display text lost content: %q", got)
	}
}
