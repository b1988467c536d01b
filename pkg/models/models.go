package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account in the Angel interview platform
type User struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Basic user information
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	FullName     string `json:"full_name"`

	// Account status
	IsActive   bool `json:"is_active" gorm:"default:true"`
	IsVerified bool `json:"is_verified" gorm:"default:false"`
	IsAdmin    bool `json:"is_admin" gorm:"default:false"`

	// Relationships
	Sessions []Session `json:"sessions" gorm:"foreignKey:UserID"`
}

// Session represents one guided interview. The progression columns
// (CurrentPhase, AskedQ, AnsweredCount, checkpoint state) are the durable
// source of truth for where the interview stands; the chat log never is.
type Session struct {
	ID        string         `json:"id" gorm:"type:uuid;primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	UserID uint `json:"user_id" gorm:"not null;index"`
	User   User `json:"-" gorm:"foreignKey:UserID"`

	Title string `json:"title"`

	// Progression state
	CurrentPhase       string `json:"current_phase" gorm:"default:'KYC';not null"`
	AskedQ             string `json:"asked_q"` // last tag shown, e.g. "KYC.03"; empty before first question
	AnsweredCount      int    `json:"answered_count" gorm:"default:0"`
	CheckpointPending  bool   `json:"checkpoint_pending" gorm:"default:false"`
	CheckpointBoundary int    `json:"checkpoint_boundary" gorm:"default:0"` // last boundary fired, 0 if none

	// Profile extracted from KYC answers
	UserName         string `json:"user_name"`
	EmploymentStatus string `json:"employment_status"`
	BusinessIdea     string `json:"business_idea" gorm:"type:text"`
	SkillsAssessment string `json:"skills_assessment" gorm:"type:text"`
	BusinessType     string `json:"business_type"`
	Motivation       string `json:"motivation" gorm:"type:text"`
	Location         string `json:"location"`
	Industry         string `json:"industry"`

	IsComplete bool `json:"is_complete" gorm:"default:false"`

	// Relationships
	Messages  []ChatMessage `json:"-" gorm:"foreignKey:SessionID"`
	Artifacts []Artifact    `json:"-" gorm:"foreignKey:SessionID"`
}

// ChatMessage is one entry of a session's append-only conversation log.
type ChatMessage struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`

	SessionID string `json:"session_id" gorm:"type:uuid;not null;index"`

	Role    string `json:"role" gorm:"not null"` // user, assistant
	Content string `json:"content" gorm:"type:text;not null"`
	Phase   string `json:"phase" gorm:"index"` // phase the session was in when stored

	// Turn metadata mirrored from the processing result
	Kind             string `json:"kind"` // answer, command, checkpoint, transition
	ShowAcceptModify bool   `json:"show_accept_modify" gorm:"default:false"`
}

// Artifact is a generated deliverable (business plan, roadmap) persisted at
// phase completion. ObjectKey is set when the document is also uploaded to
// object storage.
type Artifact struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	SessionID string `json:"session_id" gorm:"type:uuid;not null;index"`

	Kind      string `json:"kind" gorm:"not null"` // business_plan, roadmap
	Title     string `json:"title"`
	Content   string `json:"content" gorm:"type:text"`
	Version   int    `json:"version" gorm:"default:1"`
	ObjectKey string `json:"object_key"`
}
