// Package switcher lets authorised editors replace a post's featured image
// in place. It adds a "Choose New" control to the rendered featured image on
// single-post views, handles the set_feature_image AJAX action and limits
// non-editors' media library to their own uploads.
package switcher

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/featureimage/internal/logging"
	"github.com/dmitrijs2005/featureimage/internal/server/hooks"
	"github.com/dmitrijs2005/featureimage/internal/server/models"
)

const (
	// AjaxAction is the value of the "action" field routed to the handler.
	AjaxAction = "set_feature_image"

	// NonceAction binds issued nonces to the switch operation.
	NonceAction = "feature_image_switcher"

	// ScriptHandle identifies the client script on the page.
	ScriptHandle = "feature-image-switcher"

	// Version is appended to asset URLs.
	Version = "0.3"

	// ButtonPriority orders the control after other feature image filters.
	ButtonPriority = 20

	// DefaultSize is the image size the handler renders.
	DefaultSize = "commentpress-feature"
)

// Host is what the switcher needs from the content system.
type Host interface {
	CurrentUserCan(ctx context.Context, c models.Capability) bool
	CurrentUserID(ctx context.Context) int64
	CreateNonce(ctx context.Context, action string) (string, error)
	VerifyNonce(ctx context.Context, token, action string) error
	WithPostLock(ctx context.Context, postID int64, fn func(ctx context.Context) error) error
	SetPostThumbnail(ctx context.Context, postID, attachmentID int64) error
	PostThumbnailHTML(ctx context.Context, postID int64, size string) (string, error)
}

// AjaxRegistrar routes an AJAX action name to a handler.
type AjaxRegistrar interface {
	HandleAjax(action string, h http.Handler)
}

// Recorder receives switch outcomes and rendered controls.
type Recorder interface {
	SwitchObserved(result string, d time.Duration)
	ButtonRendered()
}

type nopRecorder struct{}

func (nopRecorder) SwitchObserved(string, time.Duration) {}
func (nopRecorder) ButtonRendered()                      {}

// Options configures URLs and the rendered size.
type Options struct {
	// SizeName is the image size returned by the handler.
	SizeName string
	// AjaxURL is where the client posts the switch request.
	AjaxURL string
	// AssetsURL is the public prefix of the embedded assets.
	AssetsURL string
	// LiveURL, if set, is the websocket endpoint for live updates.
	LiveURL string
}

type Switcher struct {
	host     Host
	hooks    *hooks.Registry
	opts     Options
	logger   logging.Logger
	recorder Recorder
}

// New builds a Switcher. A nil recorder discards metrics.
func New(host Host, reg *hooks.Registry, opts Options, logger logging.Logger, recorder Recorder) *Switcher {
	if opts.SizeName == "" {
		opts.SizeName = DefaultSize
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Switcher{
		host:     host,
		hooks:    reg,
		opts:     opts,
		logger:   logger.With("module", "switcher"),
		recorder: recorder,
	}
}

// Register attaches the switcher to the host's extension points.
func (s *Switcher) Register(ajax AjaxRegistrar) {
	s.hooks.AddFilter(hooks.FeatureImage, ButtonPriority, s.featureImageFilter)
	s.hooks.AddFilter(hooks.QueryAttachmentsArgs, hooks.DefaultPriority, s.mediaQueryFilter)
	ajax.HandleAjax(AjaxAction, http.HandlerFunc(s.SetFeatureImage))
}
