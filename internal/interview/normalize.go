// Angel Guided Interview Engine
// Response normalization: idempotent cleanup passes over generated text

package interview

import (
	"regexp"
	"strings"
)

// AcceptModifyMarker is the internal button-request marker the generator is
// instructed to emit when a reply should surface Accept/Modify controls. It
// is read by the affordance classifier and stripped before display.
const AcceptModifyMarker = "[[BUTTONS:ACCEPT_MODIFY]]"

// minQuestionLength is the minimum trimmed length for tag injection to
// consider a reply a real question.
const minQuestionLength = 10

// NormalizeContext carries the session facts normalization needs.
type NormalizeContext struct {
	Phase           Phase
	LastNumber      int  // number component of asked_q, 0 if absent
	CommandResponse bool // side-channel replies never get tags injected
}

var (
	markerPattern      = regexp.MustCompile(`\[\[BUTTONS:[A-Z_]+\]\][ \t]*`)
	progressLineRe     = regexp.MustCompile(`(?i)Question \d+ of \d+ \(\d+%\):?[ \t]*`)
	blankLinePattern   = regexp.MustCompile(`\n{3,}`)
	doubleBulletRe     = regexp.MustCompile(`•\s*•\s*`)
	yesNoInlineRe      = regexp.MustCompile(`(?m)^(.*\?)[ \t]+(Yes[ \t]*/[ \t]*No)[ \t]*$`)
	workSituationRe    = regexp.MustCompile(`(?m)^(.*work situation[^?\n]*\?)[ \t]+Full-time employed[ \t]+Part-time[ \t]+Student[ \t]+Unemployed[ \t]+Self-employed/freelancer[ \t]+Other[ \t]*$`)
	questionLineRe     = regexp.MustCompile(`\?`)
)

// Normalize applies the cleanup pipeline to raw generated text. Every pass
// is idempotent: normalization can run twice around checkpoint regeneration
// without altering already-normalized text.
func Normalize(raw string, nc NormalizeContext) string {
	text := raw
	text = stripControlTokens(text)
	text = reformatChoices(text)
	text = collapseBlankLines(text)
	text = injectMissingTag(text, nc)
	return text
}

// CleanForDisplay strips machine artifacts from a normalized reply before
// it reaches the client: question tags, internal markers, and any stray
// progress annotations the generator produced despite instructions.
func CleanForDisplay(text string) string {
	text = progressLineRe.ReplaceAllString(text, "")
	text = stripControlTokens(text)
	text = StripTags(text)
	text = collapseBlankLines(text)
	return strings.TrimSpace(text)
}

// stripControlTokens removes internal markers not meant for the user.
func stripControlTokens(text string) string {
	return markerPattern.ReplaceAllString(text, "")
}

// reformatChoices rewrites multiple-choice and yes/no questions that arrived
// as inline prose into a consistent structural form. Options end up on their
// own lines, so a second application finds nothing to rewrite.
func reformatChoices(text string) string {
	text = workSituationRe.ReplaceAllString(text,
		"$1\n\n• Full-time employed\n• Part-time\n• Student\n• Unemployed\n• Self-employed/freelancer\n• Other")
	text = yesNoInlineRe.ReplaceAllString(text, "$1\n\n$2")
	text = doubleBulletRe.ReplaceAllString(text, "• ")
	return text
}

// collapseBlankLines reduces runs of 3+ newlines to a single blank line.
func collapseBlankLines(text string) string {
	return blankLinePattern.ReplaceAllString(text, "\n\n")
}

// injectMissingTag synthesizes a question tag when the generator forgot one.
// Only replies that look like questions qualify, and command responses are
// never tagged. The tag goes onto the first line containing a question mark.
func injectMissingTag(text string, nc NormalizeContext) string {
	if nc.CommandResponse || IsCommandResponse(text) {
		return text
	}
	if strings.Contains(text, "[[Q:") {
		return text
	}
	if len(strings.TrimSpace(text)) <= minQuestionLength || !strings.Contains(text, "?") {
		return text
	}

	phase := nc.Phase
	if !ValidPhase(phase) || IsTransition(phase) {
		phase = PhaseKYC
	}
	tag := Tag{Phase: phase, Number: nc.LastNumber + 1}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if questionLineRe.MatchString(line) && len(strings.TrimSpace(line)) > minQuestionLength {
			lines[i] = tag.Marker() + " " + strings.TrimSpace(line)
			return strings.Join(lines, "\n")
		}
	}
	return text
}
