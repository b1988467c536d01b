package interview

import "testing"

func TestExtractProfile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tag    Tag
		answer string
		field  string
		value  string
	}{
		{"name question", Tag{PhaseKYC, 1}, "  Maria Lopez ", "user_name", "Maria Lopez"},
		{"business idea", Tag{PhaseKYC, 5}, "a mobile dog grooming service", "business_idea", "a mobile dog grooming service"},
		{"industry", Tag{PhaseKYC, 11}, "pet care", "industry", "pet care"},
		{"unmapped question", Tag{PhaseKYC, 2}, "some answer", "", ""},
		{"wrong phase", Tag{PhaseBusinessPlan, 1}, "some answer", "", ""},
		{"blank answer", Tag{PhaseKYC, 1}, "   ", "", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ExtractProfile(tt.tag, tt.answer)
			if tt.field == "" {
				if got != nil {
					t.Fatalf("ExtractProfile() = %v, want nil", got)
				}
				return
			}
			if len(got) != 1 || got[tt.field] != tt.value {
				t.Fatalf("ExtractProfile() = %v, want {%s: %s}", got, tt.field, tt.value)
			}
		})
	}
}
