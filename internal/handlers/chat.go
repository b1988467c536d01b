package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/founderport/angel/internal/artifacts"
	"github.com/founderport/angel/internal/cache"
	"github.com/founderport/angel/internal/db"
	"github.com/founderport/angel/internal/interview"
	"github.com/founderport/angel/internal/logging"
	"github.com/founderport/angel/pkg/models"

	"go.uber.org/zap"
)

// chatHistoryWindow is the trailing conversation window handed to the engine.
const chatHistoryWindow = 20

// Chat processes one user turn. Turns are serialized per session; a second
// concurrent turn gets 409 and should be retried after the first completes.
func (h *Handler) Chat(c *gin.Context) {
	session, ok := h.ownedSession(c)
	if !ok {
		return
	}

	var req struct {
		Message string `json:"message" binding:"required,max=8000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Message is required", "INVALID_REQUEST")
		return
	}

	if err := h.TurnLock.Acquire(c.Request.Context(), session.ID); err != nil {
		if errors.Is(err, cache.ErrTurnInProgress) {
			respondError(c, http.StatusConflict, "A turn is already being processed for this session", "TURN_IN_PROGRESS")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to acquire turn lock", "LOCK_ERROR")
		return
	}
	defer h.TurnLock.Release(c.Request.Context(), session.ID)

	history, err := h.Sessions.RecentTurns(session.ID, chatHistoryWindow)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load conversation history", "DATABASE_ERROR")
		return
	}

	startPhase := interview.Phase(session.CurrentPhase)
	result, err := h.Engine.ProcessTurn(c.Request.Context(), *db.State(session), req.Message, history)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to process turn", "TURN_FAILED")
		return
	}

	// A failed generation persists nothing; the client retries the turn.
	if !result.GenerationFailed {
		if err := h.Sessions.CommitTurn(session, result, req.Message); err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to persist turn", "DATABASE_ERROR")
			return
		}
	}

	if result.Kind == interview.TurnTransition {
		h.onPhaseCompleted(session, startPhase)
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    turnPayload(result),
	})
}

// ResolveDraft handles the accept/modify decision on a drafted answer.
// Accept persists the draft as the user's answer and advances the sequence;
// modify regenerates the draft from the user's feedback.
func (h *Handler) ResolveDraft(c *gin.Context) {
	session, ok := h.ownedSession(c)
	if !ok {
		return
	}

	var req struct {
		Action   string `json:"action" binding:"required,oneof=accept modify"`
		Draft    string `json:"draft"`
		Feedback string `json:"feedback"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Action must be accept or modify", "INVALID_REQUEST")
		return
	}
	if req.Action == "accept" && req.Draft == "" {
		respondError(c, http.StatusBadRequest, "Draft content is required to accept", "INVALID_REQUEST")
		return
	}
	if req.Action == "modify" && req.Feedback == "" {
		respondError(c, http.StatusBadRequest, "Feedback is required to modify", "INVALID_REQUEST")
		return
	}

	if err := h.TurnLock.Acquire(c.Request.Context(), session.ID); err != nil {
		if errors.Is(err, cache.ErrTurnInProgress) {
			respondError(c, http.StatusConflict, "A turn is already being processed for this session", "TURN_IN_PROGRESS")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to acquire turn lock", "LOCK_ERROR")
		return
	}
	defer h.TurnLock.Release(c.Request.Context(), session.ID)

	history, err := h.Sessions.RecentTurns(session.ID, chatHistoryWindow)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load conversation history", "DATABASE_ERROR")
		return
	}

	var (
		result      *interview.TurnResult
		userMessage string
	)
	if req.Action == "accept" {
		userMessage = req.Draft
		result, err = h.Engine.AcceptDraft(c.Request.Context(), *db.State(session), req.Draft, history)
	} else {
		userMessage = req.Feedback
		result, err = h.Engine.ModifyDraft(c.Request.Context(), *db.State(session), req.Draft, req.Feedback, history)
	}
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), "DRAFT_RESOLUTION_FAILED")
		return
	}

	if !result.GenerationFailed {
		if err := h.Sessions.CommitTurn(session, result, userMessage); err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to persist turn", "DATABASE_ERROR")
			return
		}
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    turnPayload(result),
	})
}

// onPhaseCompleted generates the completed phase's deliverable in the
// background so the transition reply is not delayed by document generation.
func (h *Handler) onPhaseCompleted(session *models.Session, completed interview.Phase) {
	if h.Documents == nil {
		return
	}
	kind, ok := artifacts.KindForPhase(completed)
	if !ok {
		return
	}

	snapshot := *session
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()

		history, err := h.Sessions.RecentTurns(snapshot.ID, 50)
		if err != nil {
			logging.L().Warn("artifact history load failed",
				zap.String("session_id", snapshot.ID), zap.Error(err))
			return
		}
		if _, err := h.Documents.Generate(ctx, &snapshot, kind, history); err != nil {
			logging.L().Error("artifact generation failed",
				zap.String("session_id", snapshot.ID),
				zap.String("kind", kind),
				zap.Error(err))
		}
	}()
}

func turnPayload(result *interview.TurnResult) gin.H {
	return gin.H{
		"reply":              result.Reply,
		"kind":               result.Kind,
		"progress":           result.Progress,
		"show_accept_modify": result.ShowAcceptModify,
		"generation_failed":  result.GenerationFailed,
	}
}
