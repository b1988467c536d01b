// Angel Guided Interview Engine
// Affordance classification: when to surface Accept/Modify controls

package interview

import "strings"

// substantiveAnswerLength is the minimum user-input length for the
// awaiting-confirmation rule to apply.
const substantiveAnswerLength = 40

var acknowledgmentPhrases = []string{
	"here's what i've captured",
	"does this look accurate",
	"does this look correct",
	"is this accurate",
	"thanks for sharing",
	"thank you for sharing",
	"got it",
	"that's helpful",
	"great answer",
}

var celebratoryWords = []string{
	"congratulations",
	"fantastic",
	"excellent work",
	"well done",
	"completed",
	"milestone",
}

var phaseKeywords = []string{
	"business plan",
	"roadmap",
	"implementation",
	"next phase",
	"phase complete",
}

// ShouldShowAcceptModify decides whether the client should render
// Accept/Modify controls for a generated reply. The decision is a fixed
// precedence table, deterministic for identical inputs.
func ShouldShowAcceptModify(generated, userInput string, phase Phase) bool {
	lowerReply := strings.ToLower(generated)
	trimmedInput := strings.TrimSpace(strings.ToLower(userInput))

	// 1. Explicit internal marker wins.
	if strings.Contains(generated, AcceptModifyMarker) {
		return true
	}

	// 2. Draft/scrapping command responses. A scrapping response always
	// shows controls; a draft-shaped response only when the user literally
	// asked for a draft.
	if strings.HasPrefix(strings.TrimSpace(lowerReply), "here's a refined version") {
		return true
	}
	if strings.HasPrefix(strings.TrimSpace(lowerReply), "here's a draft") {
		return trimmedInput == "draft"
	}

	// 3. Phase-completion / transition messages.
	if containsAny(lowerReply, celebratoryWords) && containsAny(lowerReply, phaseKeywords) {
		return true
	}

	// 4. Substantive business-plan answer acknowledged without a new
	// question tag: the system is awaiting confirmation before advancing.
	if phase == PhaseBusinessPlan &&
		len(strings.TrimSpace(userInput)) > substantiveAnswerLength &&
		containsAny(lowerReply, acknowledgmentPhrases) &&
		!strings.Contains(generated, "[[Q:") {
		return true
	}

	return false
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
