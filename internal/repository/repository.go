package repository

import (
	"context"
	"time"

	"timelapse/internal/models"

	"github.com/spf13/afero"
)

// ImageRepo persists committed pictures.
type ImageRepo interface {
	// Save writes the frame under a path derived from at and returns that path.
	// The repository consumes the frame and keeps no reference to it.
	Save(ctx context.Context, frame models.Frame, at time.Time) (string, error)
}

type Repository struct {
	Images ImageRepo
}

func NewRepository(fs afero.Fs, dir string) *Repository {
	return &Repository{
		Images: NewImageFS(fs, dir),
	}
}
