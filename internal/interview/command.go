// Angel Guided Interview Engine
// Command dispatcher: reserved user commands and phase gating

package interview

import "strings"

// CommandKind identifies a reserved user command.
type CommandKind string

const (
	CommandDraft     CommandKind = "draft"
	CommandScrapping CommandKind = "scrapping"
	CommandSupport   CommandKind = "support"
	CommandKickstart CommandKind = "kickstart"
	CommandContact   CommandKind = "contact"
	CommandAccept    CommandKind = "accept"
)

// Command is a recognized reserved command. Notes carries the free-text
// payload of a scrapping command.
type Command struct {
	Kind  CommandKind
	Notes string
}

// ParseCommand recognizes reserved commands case-insensitively. Draft,
// support, kickstart, contact and accept are exact matches; scrapping is a
// prefix match carrying notes.
func ParseCommand(text string) (Command, bool) {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	switch lower {
	case "draft":
		return Command{Kind: CommandDraft}, true
	case "support":
		return Command{Kind: CommandSupport}, true
	case "kickstart":
		return Command{Kind: CommandKickstart}, true
	case "who do i contact?":
		return Command{Kind: CommandContact}, true
	case "accept":
		return Command{Kind: CommandAccept}, true
	}

	if strings.HasPrefix(lower, "scrapping:") {
		notes := strings.TrimSpace(trimmed[len("scrapping:"):])
		return Command{Kind: CommandScrapping, Notes: notes}, true
	}

	return Command{}, false
}

// AllowedIn reports whether a command is enabled for the given phase.
// During KYC only accept is valid; content-generation commands are
// rejected so the user answers directly. BUSINESS_PLAN enables the drafting
// commands; kickstart and contact unlock once the roadmap work begins.
func (c Command) AllowedIn(phase Phase) bool {
	if c.Kind == CommandAccept {
		return true
	}
	switch phase {
	case PhaseKYC, PhasePlanToRoadmap, PhaseRoadmapToImplementation:
		return false
	case PhaseBusinessPlan:
		return c.Kind == CommandDraft || c.Kind == CommandScrapping || c.Kind == CommandSupport
	case PhaseRoadmap, PhaseImplementation:
		return true
	}
	return false
}

// RedirectMessage is returned when a command is invoked in a phase that
// forbids it. No state advances.
func RedirectMessage(c Command, phase Phase) string {
	if phase == PhaseKYC {
		return "During this getting-to-know-you stage I'd like to hear your answers directly — the " +
			"drafting tools unlock once we start your business plan. Could you answer the question in your own words?"
	}
	return "That option isn't available at this stage of the interview. Please answer the current question directly and we'll keep moving."
}

// ShowsAcceptModify reports whether a command's response always surfaces
// Accept/Modify controls. Draft and scrapping produce answer drafts the
// user must confirm; support, kickstart and contact are guidance only.
func (c Command) ShowsAcceptModify() bool {
	return c.Kind == CommandDraft || c.Kind == CommandScrapping
}
