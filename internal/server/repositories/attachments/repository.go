package attachments

import (
	"context"

	"github.com/dmitrijs2005/featureimage/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error)
	GetByID(ctx context.Context, id int64) (*models.Attachment, error)
	Query(ctx context.Context, q models.AttachmentQuery) ([]*models.Attachment, error)
	GetSize(ctx context.Context, attachmentID int64, name string) (*models.AttachmentSize, error)
	SaveSize(ctx context.Context, size *models.AttachmentSize) error
}
