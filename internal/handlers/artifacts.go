package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/founderport/angel/internal/db"
)

// ListArtifacts returns all generated deliverables for a session.
func (h *Handler) ListArtifacts(c *gin.Context) {
	session, ok := h.ownedSession(c)
	if !ok {
		return
	}

	artifacts, err := h.Artifacts.List(session.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to list artifacts", "DATABASE_ERROR")
		return
	}

	payload := make([]gin.H, 0, len(artifacts))
	for _, a := range artifacts {
		payload = append(payload, gin.H{
			"id":         a.ID,
			"kind":       a.Kind,
			"title":      a.Title,
			"version":    a.Version,
			"created_at": a.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: payload})
}

// LatestArtifact returns the newest version of one deliverable kind,
// content included.
func (h *Handler) LatestArtifact(c *gin.Context) {
	session, ok := h.ownedSession(c)
	if !ok {
		return
	}

	kind := c.Query("kind")
	if kind == "" {
		respondError(c, http.StatusBadRequest, "Artifact kind is required", "INVALID_REQUEST")
		return
	}

	artifact, err := h.Artifacts.Latest(session.ID, kind)
	if errors.Is(err, db.ErrArtifactNotFound) {
		respondError(c, http.StatusNotFound, "No artifact of that kind yet", "ARTIFACT_NOT_FOUND")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load artifact", "DATABASE_ERROR")
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data: gin.H{
			"id":         artifact.ID,
			"kind":       artifact.Kind,
			"title":      artifact.Title,
			"content":    artifact.Content,
			"version":    artifact.Version,
			"object_key": artifact.ObjectKey,
			"created_at": artifact.CreatedAt,
		},
	})
}
