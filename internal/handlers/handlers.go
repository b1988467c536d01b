// Angel API Handlers
// REST surface over the interview engine

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/founderport/angel/internal/artifacts"
	"github.com/founderport/angel/internal/auth"
	"github.com/founderport/angel/internal/cache"
	"github.com/founderport/angel/internal/db"
	"github.com/founderport/angel/internal/interview"
	"github.com/founderport/angel/internal/websocket"
)

// Handler contains all the dependencies for API handlers
type Handler struct {
	DB          *gorm.DB
	Database    *db.Database
	Sessions    *db.SessionStore
	Artifacts   *db.ArtifactStore
	Engine      *interview.Engine
	Documents   *artifacts.Service
	AuthService *auth.AuthService
	WSHub       *websocket.Hub
	TurnLock    *cache.TurnLock
}

// NewHandler creates a new handler instance
func NewHandler(database *db.Database, engine *interview.Engine, documents *artifacts.Service, authService *auth.AuthService, wsHub *websocket.Hub, turnLock *cache.TurnLock) *Handler {
	return &Handler{
		DB:          database.DB,
		Database:    database,
		Sessions:    db.NewSessionStore(database),
		Artifacts:   db.NewArtifactStore(database),
		Engine:      engine,
		Documents:   documents,
		AuthService: authService,
		WSHub:       wsHub,
		TurnLock:    turnLock,
	}
}

// StandardResponse represents a standard API response
type StandardResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respondError(c *gin.Context, status int, message, code string) {
	c.JSON(status, StandardResponse{
		Success: false,
		Error:   message,
		Code:    code,
	})
}

// Health reports liveness of the server and its backing stores.
func (h *Handler) Health(c *gin.Context) {
	status := "healthy"
	checks := gin.H{"database": "ok"}

	if err := h.Database.Health(); err != nil {
		status = "degraded"
		checks["database"] = err.Error()
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":  status,
		"service": "angel-api",
		"checks":  checks,
	})
}
