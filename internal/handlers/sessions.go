package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/founderport/angel/internal/db"
	"github.com/founderport/angel/internal/interview"
	"github.com/founderport/angel/internal/middleware"
	"github.com/founderport/angel/pkg/models"
)

// CreateSession starts a new interview session.
func (h *Handler) CreateSession(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required", "UNAUTHORIZED")
		return
	}

	var req struct {
		Title string `json:"title" binding:"max=200"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request format", "INVALID_REQUEST")
		return
	}
	if req.Title == "" {
		req.Title = "New Business Interview"
	}

	session, err := h.Sessions.Create(userID, req.Title)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create session", "DATABASE_ERROR")
		return
	}

	c.JSON(http.StatusCreated, StandardResponse{
		Success: true,
		Data:    sessionPayload(session),
		Message: "Session created",
	})
}

// ListSessions returns the authenticated user's sessions, newest first.
func (h *Handler) ListSessions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required", "UNAUTHORIZED")
		return
	}

	limit := parseIntQuery(c, "limit", 20, 100)
	offset := parseIntQuery(c, "offset", 0, 1<<30)

	sessions, err := h.Sessions.List(userID, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to list sessions", "DATABASE_ERROR")
		return
	}

	payload := make([]gin.H, 0, len(sessions))
	for i := range sessions {
		payload = append(payload, sessionPayload(&sessions[i]))
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: payload})
}

// GetSession returns one session with its derived progress.
func (h *Handler) GetSession(c *gin.Context) {
	session, ok := h.ownedSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: sessionPayload(session)})
}

// DeleteSession removes a session and its chat log.
func (h *Handler) DeleteSession(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required", "UNAUTHORIZED")
		return
	}

	err := h.Sessions.Delete(c.Param("id"), userID)
	if errors.Is(err, db.ErrSessionNotFound) {
		respondError(c, http.StatusNotFound, "Session not found", "SESSION_NOT_FOUND")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete session", "DATABASE_ERROR")
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Message: "Session deleted"})
}

// History returns a session's chat log, optionally scoped to one phase.
func (h *Handler) History(c *gin.Context) {
	session, ok := h.ownedSession(c)
	if !ok {
		return
	}

	phase := c.Query("phase")
	if phase != "" && !interview.ValidPhase(interview.Phase(phase)) {
		respondError(c, http.StatusBadRequest, "Unknown phase", "INVALID_PHASE")
		return
	}
	limit := parseIntQuery(c, "limit", 50, 200)
	offset := parseIntQuery(c, "offset", 0, 1<<30)

	messages, err := h.Sessions.History(session.ID, phase, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load history", "DATABASE_ERROR")
		return
	}

	payload := make([]gin.H, 0, len(messages))
	for _, m := range messages {
		payload = append(payload, gin.H{
			"id":                 m.ID,
			"role":               m.Role,
			"content":            m.Content,
			"phase":              m.Phase,
			"kind":               m.Kind,
			"show_accept_modify": m.ShowAcceptModify,
			"created_at":         m.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: payload})
}

// Navigate moves a session to an explicit question. Jumping backwards is a
// legitimate revisit, so the position is applied as given.
func (h *Handler) Navigate(c *gin.Context) {
	session, ok := h.ownedSession(c)
	if !ok {
		return
	}

	var req struct {
		Question string `json:"question" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Target question is required", "INVALID_REQUEST")
		return
	}

	tag, ok := interview.ParseTagLiteral(req.Question)
	if !ok || interview.IsTransition(tag.Phase) {
		respondError(c, http.StatusBadRequest, "Invalid question reference", "INVALID_QUESTION")
		return
	}
	if tag.Number < 1 || tag.Number > interview.TotalQuestions(tag.Phase) {
		respondError(c, http.StatusBadRequest, "Question number out of range", "INVALID_QUESTION")
		return
	}

	if err := h.Sessions.SetPosition(session, string(tag.Phase), tag.String(), tag.Number-1); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update session", "DATABASE_ERROR")
		return
	}

	progress := interview.CalculateProgress(tag.Phase, tag.Number-1, &tag)
	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data: gin.H{
			"asked_q":  tag.String(),
			"phase":    tag.Phase,
			"progress": progress,
		},
		Message: "Session position updated",
	})
}

// ownedSession resolves the :id path parameter to a session owned by the
// authenticated user, writing the error response itself on failure.
func (h *Handler) ownedSession(c *gin.Context) (*models.Session, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication required", "UNAUTHORIZED")
		return nil, false
	}

	session, err := h.Sessions.Get(c.Param("id"), userID)
	if errors.Is(err, db.ErrSessionNotFound) {
		respondError(c, http.StatusNotFound, "Session not found", "SESSION_NOT_FOUND")
		return nil, false
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Database error", "DATABASE_ERROR")
		return nil, false
	}
	return session, true
}

func sessionPayload(session *models.Session) gin.H {
	st := db.State(session)
	var tagPtr *interview.Tag
	if t, ok := interview.ParseTagLiteral(st.AskedQ); ok {
		tagPtr = &t
	}
	progress := interview.CalculateProgress(st.CurrentPhase, st.AnsweredCount, tagPtr)

	return gin.H{
		"id":                 session.ID,
		"title":              session.Title,
		"current_phase":      session.CurrentPhase,
		"asked_q":            session.AskedQ,
		"checkpoint_pending": session.CheckpointPending,
		"is_complete":        session.IsComplete,
		"progress":           progress,
		"created_at":         session.CreatedAt,
		"updated_at":         session.UpdatedAt,
	}
}

func parseIntQuery(c *gin.Context, name string, def, max int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}
