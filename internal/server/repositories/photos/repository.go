package photos

import (
	"context"

	"github.com/hynorvixx/backend/internal/server/models"
)

// Repository stores photo metadata. Every lookup is scoped to an owner, so a
// row owned by someone else reads as common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, photo *models.Photo) (*models.Photo, error)
	GetByID(ctx context.Context, ownerID, id string) (*models.Photo, error)
	List(ctx context.Context, ownerID string, limit, offset int) ([]*models.Photo, error)
	Count(ctx context.Context, ownerID string) (int, error)
	Update(ctx context.Context, ownerID, id string, patch models.PhotoPatch) (*models.Photo, error)
	Delete(ctx context.Context, ownerID, id string) error
}
