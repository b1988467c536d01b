package db

import (
	"errors"

	"gorm.io/gorm"

	"github.com/founderport/angel/pkg/models"
)

// ErrArtifactNotFound is returned when no artifact matches the query.
var ErrArtifactNotFound = errors.New("artifact not found")

// ArtifactStore persists generated deliverables.
type ArtifactStore struct {
	db *gorm.DB
}

// NewArtifactStore creates an artifact store over the shared database handle.
func NewArtifactStore(database *Database) *ArtifactStore {
	return &ArtifactStore{db: database.DB}
}

// Save stores a new artifact version. An existing artifact of the same kind
// for the session bumps the version instead of being overwritten.
func (a *ArtifactStore) Save(artifact *models.Artifact) error {
	var latest models.Artifact
	err := a.db.Where("session_id = ? AND kind = ?", artifact.SessionID, artifact.Kind).
		Order("version DESC").First(&latest).Error
	switch {
	case err == nil:
		artifact.Version = latest.Version + 1
	case errors.Is(err, gorm.ErrRecordNotFound):
		artifact.Version = 1
	default:
		return err
	}
	return a.db.Create(artifact).Error
}

// SetObjectKey records where an artifact's document was uploaded.
func (a *ArtifactStore) SetObjectKey(id uint, key string) error {
	return a.db.Model(&models.Artifact{}).Where("id = ?", id).
		Update("object_key", key).Error
}

// Latest returns the newest version of a session's artifact of the given kind.
func (a *ArtifactStore) Latest(sessionID, kind string) (*models.Artifact, error) {
	var artifact models.Artifact
	err := a.db.Where("session_id = ? AND kind = ?", sessionID, kind).
		Order("version DESC").First(&artifact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrArtifactNotFound
	}
	if err != nil {
		return nil, err
	}
	return &artifact, nil
}

// List returns every artifact of a session, newest first.
func (a *ArtifactStore) List(sessionID string) ([]models.Artifact, error) {
	var artifacts []models.Artifact
	err := a.db.Where("session_id = ?", sessionID).
		Order("created_at DESC").Find(&artifacts).Error
	return artifacts, err
}
