package repositories

import (
	"context"

	"tokoadmin/internal/models"
)

// TagRepository defines the interface for tag data access.
type TagRepository interface {
	List(ctx context.Context) ([]models.Tag, error)
	// GetByIDs returns the tags that exist among ids.
	GetByIDs(ctx context.Context, ids []string) ([]models.Tag, error)
	Create(ctx context.Context, tag *models.Tag) error
}
