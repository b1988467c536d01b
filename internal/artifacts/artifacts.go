// Package artifacts generates and persists interview deliverables: the
// business plan document at the end of BUSINESS_PLAN and the launch roadmap
// at the end of ROADMAP.
package artifacts

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/founderport/angel/internal/db"
	"github.com/founderport/angel/internal/interview"
	"github.com/founderport/angel/internal/logging"
	"github.com/founderport/angel/pkg/models"
)

// Artifact kinds
const (
	KindBusinessPlan = "business_plan"
	KindRoadmap      = "roadmap"
)

const generationTimeout = 60 * time.Second

// Service turns a completed interview phase into a persisted document.
type Service struct {
	gen     interview.Generator
	store   *db.ArtifactStore
	storage Storage // optional; nil disables object storage upload
	log     *zap.Logger
}

// NewService creates an artifact service. storage may be nil.
func NewService(gen interview.Generator, store *db.ArtifactStore, storage Storage) *Service {
	return &Service{
		gen:     gen,
		store:   store,
		storage: storage,
		log:     logging.L().Named("artifacts"),
	}
}

// KindForPhase maps a completed phase to the artifact it yields.
func KindForPhase(completed interview.Phase) (string, bool) {
	switch completed {
	case interview.PhaseBusinessPlan:
		return KindBusinessPlan, true
	case interview.PhaseRoadmap:
		return KindRoadmap, true
	}
	return "", false
}

// Generate produces the document for a session from its conversation
// history, stores it, and uploads it to object storage when configured.
func (s *Service) Generate(ctx context.Context, session *models.Session, kind string, history []interview.Turn) (*models.Artifact, error) {
	prompt, title, err := documentPrompt(kind, session)
	if err != nil {
		return nil, err
	}

	genCtx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	content, err := s.gen.Generate(genCtx, []string{prompt}, history,
		"Please generate the complete document now.")
	if err != nil {
		return nil, fmt.Errorf("artifact generation failed: %w", err)
	}
	content = interview.StripTags(content)

	artifact := &models.Artifact{
		SessionID: session.ID,
		Kind:      kind,
		Title:     title,
		Content:   content,
	}
	if err := s.store.Save(artifact); err != nil {
		return nil, fmt.Errorf("failed to store artifact: %w", err)
	}

	if s.storage != nil {
		key := fmt.Sprintf("sessions/%s/%s-v%d.md", session.ID, kind, artifact.Version)
		if err := s.storage.Upload(ctx, key, readSeeker(content)); err != nil {
			// The database copy is authoritative; a failed upload is logged
			// and the artifact is still returned.
			s.log.Warn("artifact upload failed",
				zap.String("session_id", session.ID),
				zap.String("key", key),
				zap.Error(err))
		} else if err := s.store.SetObjectKey(artifact.ID, key); err != nil {
			s.log.Warn("failed to record object key", zap.Error(err))
		} else {
			artifact.ObjectKey = key
		}
	}

	return artifact, nil
}

// documentPrompt builds the generation instruction for an artifact kind.
func documentPrompt(kind string, session *models.Session) (prompt, title string, err error) {
	founder := session.UserName
	if founder == "" {
		founder = "the founder"
	}

	switch kind {
	case KindBusinessPlan:
		title = "Business Plan"
		prompt = fmt.Sprintf(`Using the full interview conversation, write a complete, professional business plan `+
			`document in Markdown for %s. Cover: executive summary, business foundation, market analysis, products and `+
			`services, operations, marketing and sales strategy, financial projections, legal structure, and risk `+
			`management. Ground every section in what the user actually said; do not invent figures they never gave. `+
			`Business type: %s. Industry: %s. Location: %s.`,
			founder, orUnknown(session.BusinessType), orUnknown(session.Industry), orUnknown(session.Location))
	case KindRoadmap:
		title = "Launch Roadmap"
		prompt = fmt.Sprintf(`Using the full interview conversation, write a practical launch roadmap document in `+
			`Markdown for %s. Lay out phased milestones from today to launch: what to do, in what order, with realistic `+
			`timeframes and dependencies between steps. Ground every milestone in the user's answers. `+
			`Business type: %s. Industry: %s.`,
			founder, orUnknown(session.BusinessType), orUnknown(session.Industry))
	default:
		return "", "", fmt.Errorf("unknown artifact kind %q", kind)
	}
	return prompt, title, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "not specified"
	}
	return s
}
