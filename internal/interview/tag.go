// Angel Guided Interview Engine
// Tag parsing: extracting [[Q:PHASE.NN]] markers from generated text

package interview

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Tag is the structural token identifying which question a generated reply
// corresponds to. It is always derived from text or from the persisted
// asked_q column, never stored on its own.
type Tag struct {
	Phase  Phase
	Number int
}

// String renders the persisted form, e.g. "BUSINESS_PLAN.07".
func (t Tag) String() string {
	return fmt.Sprintf("%s.%02d", t.Phase, t.Number)
}

// Marker renders the wire form embedded in generated text, e.g.
// "[[Q:BUSINESS_PLAN.07]]".
func (t Tag) Marker() string {
	return fmt.Sprintf("[[Q:%s.%02d]]", t.Phase, t.Number)
}

// tagPattern matches the wire format. NN must be exactly two digits and the
// phase must come from the known vocabulary; anything else is malformed and
// treated the same as no tag at all.
var tagPattern = regexp.MustCompile(`\[\[Q:(KYC|BUSINESS_PLAN|ROADMAP|IMPLEMENTATION)\.(\d{2})\]\]`)

// commandResponsePrefixes marks generated text that belongs to a
// side-channel command response rather than a sequence advance. Tags inside
// such text (including quoted examples) must never move the session.
var commandResponsePrefixes = []string{
	"here's a draft",
	"here's a refined version",
	"here's what i've captured",
	"does this look accurate",
	"let's work through this together",
	"here are some kickstart resources",
	"based on your business needs",
}

// IsCommandResponse reports whether text begins with known command-response
// boilerplate and is therefore excluded from tag consideration entirely.
func IsCommandResponse(text string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	for _, prefix := range commandResponsePrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// ParseTag scans text for the first well-formed question tag. It returns
// false when no tag is present, when the tag is malformed, or when the text
// is recognized as a command response.
func ParseTag(text string) (Tag, bool) {
	if IsCommandResponse(text) {
		return Tag{}, false
	}
	m := tagPattern.FindStringSubmatch(text)
	if m == nil {
		return Tag{}, false
	}
	num, err := strconv.Atoi(m[2])
	if err != nil || num < 1 {
		return Tag{}, false
	}
	return Tag{Phase: Phase(m[1]), Number: num}, true
}

// ParseTagLiteral parses the persisted asked_q form ("KYC.03"). Transitional
// pseudo-phases never appear in asked_q, so only the four main phases are
// accepted.
func ParseTagLiteral(s string) (Tag, bool) {
	parts := strings.SplitN(strings.TrimSpace(s), ".", 2)
	if len(parts) != 2 {
		return Tag{}, false
	}
	phase := Phase(parts[0])
	switch phase {
	case PhaseKYC, PhaseBusinessPlan, PhaseRoadmap, PhaseImplementation:
	default:
		return Tag{}, false
	}
	num, err := strconv.Atoi(parts[1])
	if err != nil || num < 1 {
		return Tag{}, false
	}
	return Tag{Phase: phase, Number: num}, true
}

// StripTags removes every question tag marker from text. Used when
// preparing the final display reply; the session keeps the tag via asked_q.
func StripTags(text string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(text, ""))
}
