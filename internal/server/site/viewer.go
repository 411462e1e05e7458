package site

import (
	"context"

	"github.com/dmitrijs2005/featureimage/internal/server/models"
)

type viewerKey struct{}

// WithViewer returns a child context carrying the current viewer.
func WithViewer(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, viewerKey{}, u)
}

// Viewer returns the current viewer, or nil for anonymous requests.
func Viewer(ctx context.Context) *models.User {
	u, _ := ctx.Value(viewerKey{}).(*models.User)
	return u
}
