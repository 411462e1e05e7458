// Package site is the host facade the web layer and the feature image
// switcher talk to. It resolves the current viewer, applies the hook
// registry around rendering and media queries, and delegates storage work to
// the services.
package site

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/featureimage/internal/common"
	"github.com/dmitrijs2005/featureimage/internal/logging"
	"github.com/dmitrijs2005/featureimage/internal/server/auth"
	"github.com/dmitrijs2005/featureimage/internal/server/hooks"
	"github.com/dmitrijs2005/featureimage/internal/server/models"
	"github.com/dmitrijs2005/featureimage/internal/server/services"
)

type Site struct {
	hooks         *hooks.Registry
	users         *services.UserService
	posts         *services.PostService
	media         *services.MediaService
	nonces        *auth.Nonces
	thumbnailSize string
	logger        logging.Logger
}

func New(reg *hooks.Registry, users *services.UserService, posts *services.PostService,
	media *services.MediaService, nonces *auth.Nonces, thumbnailSize string, logger logging.Logger) *Site {
	return &Site{
		hooks:         reg,
		users:         users,
		posts:         posts,
		media:         media,
		nonces:        nonces,
		thumbnailSize: thumbnailSize,
		logger:        logger.With("module", "site"),
	}
}

func (s *Site) Users() *services.UserService { return s.users }

func (s *Site) Posts() *services.PostService { return s.posts }

func (s *Site) Media() *services.MediaService { return s.media }

// CurrentUserCan reports whether the viewer on ctx holds capability c.
func (s *Site) CurrentUserCan(ctx context.Context, c models.Capability) bool {
	return Viewer(ctx).Can(c)
}

func (s *Site) CurrentUserID(ctx context.Context) int64 {
	return Viewer(ctx).IDOrZero()
}

// CreateNonce issues a nonce for action bound to the current viewer.
func (s *Site) CreateNonce(ctx context.Context, action string) (string, error) {
	return s.nonces.Create(action, s.CurrentUserID(ctx))
}

// VerifyNonce checks a nonce against action and the current viewer.
func (s *Site) VerifyNonce(ctx context.Context, token, action string) error {
	return s.nonces.Verify(token, action, s.CurrentUserID(ctx))
}

func (s *Site) WithPostLock(ctx context.Context, postID int64, fn func(ctx context.Context) error) error {
	return s.posts.WithPostLock(ctx, postID, fn)
}

func (s *Site) SetPostThumbnail(ctx context.Context, postID, attachmentID int64) error {
	return s.posts.SetThumbnail(ctx, postID, attachmentID)
}

// PostThumbnailHTML renders the featured image markup of postID in size.
func (s *Site) PostThumbnailHTML(ctx context.Context, postID int64, size string) (string, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return "", err
	}
	return s.media.ThumbnailHTML(ctx, post, size)
}

// FeatureImage renders the featured image block of post for page and runs
// it through the FeatureImage filter. Posts without a featured image render
// nothing and are not filtered.
func (s *Site) FeatureImage(ctx context.Context, page *Page, post *models.Post) (string, error) {
	html, err := s.media.ThumbnailHTML(ctx, post, s.thumbnailSize)
	if err != nil || html == "" {
		return html, err
	}
	return hooks.Apply(ctx, s.hooks, hooks.FeatureImage, html, page, post), nil
}

// QueryAttachments runs a media library query for the current viewer. The
// query passes through the QueryAttachmentsArgs filter first.
func (s *Site) QueryAttachments(ctx context.Context, q models.AttachmentQuery) ([]*models.Attachment, error) {
	if !s.CurrentUserCan(ctx, models.CapUploadFiles) {
		return nil, common.ErrorPermissionDenied
	}
	q = hooks.Apply(ctx, s.hooks, hooks.QueryAttachmentsArgs, q)
	return s.media.Query(ctx, q)
}

// Authenticate resolves a session token. Invalid or expired tokens yield a
// nil viewer without error; only infrastructure failures are returned.
func (s *Site) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	u, err := s.users.Authenticate(ctx, token)
	switch {
	case err == nil:
		return u, nil
	case errors.Is(err, common.ErrorInternal):
		return nil, err
	default:
		s.logger.Debug(ctx, "session rejected", "error", err)
		return nil, nil
	}
}
