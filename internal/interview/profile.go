// Angel Guided Interview Engine
// Profile extraction from KYC answers

package interview

import "strings"

// profileFieldByTag maps the KYC question being answered to the session
// profile column its answer fills.
var profileFieldByTag = map[string]string{
	"KYC.01": "user_name",
	"KYC.04": "employment_status",
	"KYC.05": "business_idea",
	"KYC.07": "skills_assessment",
	"KYC.08": "business_type",
	"KYC.09": "motivation",
	"KYC.10": "location",
	"KYC.11": "industry",
}

// ExtractProfile returns the profile field updates implied by answering the
// question identified by answeredTag. Nil when the answer carries nothing.
func ExtractProfile(answeredTag Tag, answer string) map[string]string {
	field, ok := profileFieldByTag[answeredTag.String()]
	if !ok {
		return nil
	}
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return nil
	}
	return map[string]string{field: trimmed}
}
