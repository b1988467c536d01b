package db

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/founderport/angel/internal/interview"
	"github.com/founderport/angel/pkg/models"
)

// ErrSessionNotFound is returned when a session id resolves to no row.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists interview sessions and their chat logs.
type SessionStore struct {
	db *gorm.DB
}

// NewSessionStore creates a session store over the shared database handle.
func NewSessionStore(database *Database) *SessionStore {
	return &SessionStore{db: database.DB}
}

// Create starts a new interview session for a user.
func (s *SessionStore) Create(userID uint, title string) (*models.Session, error) {
	session := &models.Session{
		ID:           uuid.New().String(),
		UserID:       userID,
		Title:        title,
		CurrentPhase: string(interview.PhaseKYC),
	}
	if err := s.db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// Get fetches a session by id, scoped to its owner.
func (s *SessionStore) Get(id string, userID uint) (*models.Session, error) {
	var session models.Session
	err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// List returns a user's sessions, newest first.
func (s *SessionStore) List(userID uint, limit, offset int) ([]models.Session, error) {
	var sessions []models.Session
	err := s.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limit).Offset(offset).
		Find(&sessions).Error
	return sessions, err
}

// Delete soft-deletes a session and its chat log.
func (s *SessionStore) Delete(id string, userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Session{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSessionNotFound
		}
		return tx.Where("session_id = ?", id).Delete(&models.ChatMessage{}).Error
	})
}

// State converts the session row into the engine's view of it.
func State(session *models.Session) *interview.SessionState {
	return &interview.SessionState{
		ID:                 session.ID,
		CurrentPhase:       interview.Phase(session.CurrentPhase),
		AskedQ:             session.AskedQ,
		AnsweredCount:      session.AnsweredCount,
		CheckpointPending:  session.CheckpointPending,
		CheckpointBoundary: session.CheckpointBoundary,
		UserName:           session.UserName,
		Industry:           session.Industry,
		Location:           session.Location,
		BusinessType:       session.BusinessType,
	}
}

// CommitTurn applies a turn's session patch and appends both sides of the
// exchange to the chat log in one transaction. Nothing is written when any
// part fails.
func (s *SessionStore) CommitTurn(session *models.Session, result *interview.TurnResult, userMessage string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if result.Patch != nil && !result.Patch.Empty() {
			updates := patchColumns(result.Patch)
			if err := tx.Model(session).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to apply session patch: %w", err)
			}
		}

		phase := session.CurrentPhase
		if result.Patch != nil && result.Patch.CurrentPhase != nil {
			phase = string(*result.Patch.CurrentPhase)
		}

		if userMessage != "" {
			userRow := &models.ChatMessage{
				SessionID: session.ID,
				Role:      interview.RoleUser,
				Content:   userMessage,
				Phase:     session.CurrentPhase,
			}
			if err := tx.Create(userRow).Error; err != nil {
				return fmt.Errorf("failed to store user message: %w", err)
			}
		}

		assistantRow := &models.ChatMessage{
			SessionID:        session.ID,
			Role:             interview.RoleAssistant,
			Content:          result.Reply,
			Phase:            phase,
			Kind:             string(result.Kind),
			ShowAcceptModify: result.ShowAcceptModify,
		}
		if err := tx.Create(assistantRow).Error; err != nil {
			return fmt.Errorf("failed to store assistant message: %w", err)
		}
		return nil
	})
}

// patchColumns maps a session patch onto gorm column updates.
func patchColumns(p *interview.SessionPatch) map[string]interface{} {
	updates := map[string]interface{}{}
	if p.CurrentPhase != nil {
		updates["current_phase"] = string(*p.CurrentPhase)
	}
	if p.AskedQ != nil {
		updates["asked_q"] = *p.AskedQ
	}
	if p.AnsweredCount != nil {
		updates["answered_count"] = *p.AnsweredCount
	}
	if p.CheckpointPending != nil {
		updates["checkpoint_pending"] = *p.CheckpointPending
	}
	if p.CheckpointBoundary != nil {
		updates["checkpoint_boundary"] = *p.CheckpointBoundary
	}
	for field, value := range p.Profile {
		updates[field] = value
	}
	return updates
}

// SetPosition moves a session to an explicit sequence position, clearing any
// pending checkpoint. Used by the navigation endpoint; the regression is
// intentional so no correction applies.
func (s *SessionStore) SetPosition(session *models.Session, phase string, askedQ string, answeredCount int) error {
	return s.db.Model(session).Updates(map[string]interface{}{
		"current_phase":      phase,
		"asked_q":            askedQ,
		"answered_count":     answeredCount,
		"checkpoint_pending": false,
	}).Error
}

// History returns a session's chat log, oldest first. When phase is
// non-empty only that phase's messages are returned.
func (s *SessionStore) History(sessionID, phase string, limit, offset int) ([]models.ChatMessage, error) {
	q := s.db.Where("session_id = ?", sessionID)
	if phase != "" {
		q = q.Where("phase = ?", phase)
	}
	var messages []models.ChatMessage
	err := q.Order("created_at ASC, id ASC").Limit(limit).Offset(offset).Find(&messages).Error
	return messages, err
}

// RecentTurns returns the trailing window of the conversation in the
// engine's Turn form, oldest first.
func (s *SessionStore) RecentTurns(sessionID string, window int) ([]interview.Turn, error) {
	var messages []models.ChatMessage
	err := s.db.Where("session_id = ?", sessionID).
		Order("created_at DESC, id DESC").
		Limit(window).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	turns := make([]interview.Turn, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		turns = append(turns, interview.Turn{Role: messages[i].Role, Content: messages[i].Content})
	}
	return turns, nil
}
