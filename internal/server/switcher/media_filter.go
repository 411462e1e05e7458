package switcher

import (
	"context"

	"github.com/dmitrijs2005/featureimage/internal/server/models"
)

// FilterMedia restricts the media library query to the viewer's own uploads
// unless the viewer can edit posts. Anonymous viewers own nothing.
func (s *Switcher) FilterMedia(ctx context.Context, q models.AttachmentQuery) models.AttachmentQuery {
	if s.host.CurrentUserCan(ctx, models.CapEditPosts) {
		return q
	}
	q.AuthorID = s.host.CurrentUserID(ctx)
	if q.AuthorID == 0 {
		q.AuthorID = models.NoAuthor
	}
	return q
}

func (s *Switcher) mediaQueryFilter(ctx context.Context, value any, _ ...any) any {
	q, ok := value.(models.AttachmentQuery)
	if !ok {
		return value
	}
	return s.FilterMedia(ctx, q)
}
