// Angel Guided Interview Engine
// Shared types and collaborator interfaces

package interview

import "context"

// Conversation roles as stored in the chat history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one entry of the append-only conversation log, ordered oldest to
// newest. The history store owns these rows; the core only reads them.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator is the external generative text model. It may fail or time out;
// the core surfaces a generic retryable fallback and mutates no state.
type Generator interface {
	Generate(ctx context.Context, systemInstructions []string, history []Turn, userMessage string) (string, error)
}

// Researcher is the external research collaborator. Failures degrade
// gracefully: the research section is omitted and the turn proceeds.
type Researcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// TurnStatus is broadcast to connected clients while a turn is in flight.
type TurnStatus struct {
	State string `json:"state"` // researching, generating, done
	Query string `json:"query,omitempty"`
}

// StatusNotifier pushes turn status events to the realtime layer. May be
// nil when no realtime transport is configured.
type StatusNotifier interface {
	NotifyStatus(sessionID string, status TurnStatus)
}

// SessionState is the engine's read-only view of the durable session row.
type SessionState struct {
	ID                 string
	CurrentPhase       Phase
	AskedQ             string // last tag shown to the user, e.g. "KYC.03"
	AnsweredCount      int
	CheckpointPending  bool
	CheckpointBoundary int // last boundary that fired, 0 if none

	UserName     string
	Industry     string
	Location     string
	BusinessType string
}

// SessionPatch carries the partial session update produced by a successful
// turn. Nil pointer fields are left untouched; Profile holds extracted
// profile-column updates.
type SessionPatch struct {
	CurrentPhase       *Phase
	AskedQ             *string
	AnsweredCount      *int
	CheckpointPending  *bool
	CheckpointBoundary *int
	Profile            map[string]string
}

// Empty reports whether the patch carries no updates at all.
func (p *SessionPatch) Empty() bool {
	return p == nil || (p.CurrentPhase == nil && p.AskedQ == nil && p.AnsweredCount == nil &&
		p.CheckpointPending == nil && p.CheckpointBoundary == nil && len(p.Profile) == 0)
}

// TurnKind classifies a processed turn.
type TurnKind string

const (
	TurnAnswer     TurnKind = "answer"
	TurnCommand    TurnKind = "command"
	TurnCheckpoint TurnKind = "checkpoint"
	TurnTransition TurnKind = "transition"
)

// TurnResult is the engine's output for one user turn. Patch is nil when no
// session mutation should be persisted.
type TurnResult struct {
	Kind             TurnKind
	Reply            string
	Progress         Progress
	ShowAcceptModify bool
	Patch            *SessionPatch
	GenerationFailed bool
}
