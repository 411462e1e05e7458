package posts

import (
	"context"

	"github.com/dmitrijs2005/featureimage/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	LockForUpdate(ctx context.Context, id int64) error
	SetThumbnail(ctx context.Context, postID, attachmentID int64) error
}
