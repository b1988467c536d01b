package interview

import "testing"

func TestParseTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want Tag
		ok   bool
	}{
		{
			name: "tag at start",
			in:   "[[Q:KYC.01]] What's your name?",
			want: Tag{Phase: PhaseKYC, Number: 1},
			ok:   true,
		},
		{
			name: "tag after acknowledgment",
			in:   "That's great!\n\n[[Q:BUSINESS_PLAN.07]] What products will you offer?",
			want: Tag{Phase: PhaseBusinessPlan, Number: 7},
			ok:   true,
		},
		{
			name: "first of several tags wins",
			in:   "[[Q:ROADMAP.02]] something [[Q:ROADMAP.03]]",
			want: Tag{Phase: PhaseRoadmap, Number: 2},
			ok:   true,
		},
		{
			name: "no tag",
			in:   "Tell me more about that.",
			ok:   false,
		},
		{
			name: "one-digit number is malformed",
			in:   "[[Q:KYC.1]] What's your name?",
			ok:   false,
		},
		{
			name: "three-digit number is malformed",
			in:   "[[Q:KYC.001]] What's your name?",
			ok:   false,
		},
		{
			name: "unknown phase is malformed",
			in:   "[[Q:ONBOARDING.01]] Welcome!",
			ok:   false,
		},
		{
			name: "transitional pseudo-phase is not a wire phase",
			in:   "[[Q:PLAN_TO_ROADMAP_TRANSITION.01]] Ready?",
			ok:   false,
		},
		{
			name: "zero number is malformed",
			in:   "[[Q:KYC.00]] What's your name?",
			ok:   false,
		},
		{
			name: "draft response excluded even with embedded tag",
			in:   "Here's a draft based on what you've shared:\n[[Q:BUSINESS_PLAN.05]] example",
			ok:   false,
		},
		{
			name: "captured-summary response excluded",
			in:   "Here's what I've captured so far: [[Q:KYC.03]] quoted example",
			ok:   false,
		},
		{
			name: "accuracy-check response excluded",
			in:   "Does this look accurate to you? [[Q:KYC.03]]",
			ok:   false,
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseTag(tc.in)
			if ok != tc.ok {
				t.Fatalf("ParseTag(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("ParseTag(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseTagLiteral(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Tag
		ok   bool
	}{
		{"KYC.01", Tag{PhaseKYC, 1}, true},
		{"BUSINESS_PLAN.46", Tag{PhaseBusinessPlan, 46}, true},
		{" ROADMAP.03 ", Tag{PhaseRoadmap, 3}, true},
		{"IMPLEMENTATION.10", Tag{PhaseImplementation, 10}, true},
		{"PLAN_TO_ROADMAP_TRANSITION.01", Tag{}, false},
		{"KYC", Tag{}, false},
		{"KYC.xx", Tag{}, false},
		{"KYC.0", Tag{}, false},
		{"", Tag{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseTagLiteral(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseTagLiteral(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTagRendering(t *testing.T) {
	t.Parallel()

	tag := Tag{Phase: PhaseBusinessPlan, Number: 4}
	if got := tag.String(); got != "BUSINESS_PLAN.04" {
		t.Errorf("String() = %q", got)
	}
	if got := tag.Marker(); got != "[[Q:BUSINESS_PLAN.04]]" {
		t.Errorf("Marker() = %q", got)
	}
}

func TestStripTags(t *testing.T) {
	t.Parallel()

	in := "Thanks!\n\n[[Q:KYC.02]] What industry are you in?"
	want := "Thanks!\n\n What industry are you in?"
	if got := StripTags(in); got != want {
		t.Errorf("StripTags = %q, want %q", got, want)
	}
}
