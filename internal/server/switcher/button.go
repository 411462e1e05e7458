package switcher

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/dmitrijs2005/featureimage/internal/server/hooks"
	"github.com/dmitrijs2005/featureimage/internal/server/models"
	"github.com/dmitrijs2005/featureimage/internal/server/site"
)

const buttonStyle = "position: absolute; top: 20px; right: 20px; text-transform: uppercase; font-family: sans-serif; font-weight: bold;"

// settingsObject is exposed to the client script as Featured_Image_Switcher_Settings.
type settingsObject struct {
	Localisation localisation `json:"localisation"`
	Settings     settings     `json:"settings"`
}

type localisation struct {
	Title  string `json:"title"`
	Button string `json:"button"`
}

type settings struct {
	AjaxURL string `json:"ajax_url"`
	Loading string `json:"loading"`
	LiveURL string `json:"live_url,omitempty"`
}

// AllowButton reports whether the control may be shown for post: the viewer
// can upload files and edit posts, the page is a single-post view and no
// AllowSwitcherButton filter vetoes it.
func (s *Switcher) AllowButton(ctx context.Context, page *site.Page, post *models.Post) bool {
	if !s.host.CurrentUserCan(ctx, models.CapUploadFiles) {
		return false
	}
	if !s.host.CurrentUserCan(ctx, models.CapEditPosts) {
		return false
	}
	if page == nil || !page.IsSingular() {
		return false
	}
	return hooks.Apply(ctx, s.hooks, hooks.AllowSwitcherButton, true, post)
}

// FilterFeatureImage appends the switch control to markup when allowed and
// queues the client assets. Otherwise markup is returned unchanged.
func (s *Switcher) FilterFeatureImage(ctx context.Context, page *site.Page, markup string, post *models.Post) string {
	if post == nil || !s.AllowButton(ctx, page, post) {
		return markup
	}

	nonce, err := s.host.CreateNonce(ctx, NonceAction)
	if err != nil {
		s.logger.Error(ctx, "nonce issue failed", "post_id", post.ID, "error", err)
		return markup
	}

	s.enqueue(page)
	s.recorder.ButtonRendered()

	return markup + button(post.ID, nonce)
}

func (s *Switcher) featureImageFilter(ctx context.Context, value any, args ...any) any {
	markup, ok := value.(string)
	if !ok || len(args) < 2 {
		return value
	}
	page, _ := args[0].(*site.Page)
	post, _ := args[1].(*models.Post)
	return s.FilterFeatureImage(ctx, page, markup, post)
}

func (s *Switcher) enqueue(page *site.Page) {
	page.EnqueueMedia()
	page.EnqueueScript(site.Script{
		Handle:   ScriptHandle,
		Src:      s.assetURL("js/feature-image-switcher.js"),
		Deps:     []string{site.MediaScriptHandle},
		Version:  Version,
		InFooter: true,
	})
	page.Localize(ScriptHandle, "Featured_Image_Switcher_Settings", settingsObject{
		Localisation: localisation{
			Title:  "Choose Feature Image",
			Button: "Set Feature Image",
		},
		Settings: settings{
			AjaxURL: s.opts.AjaxURL,
			Loading: s.assetURL("images/loading.gif"),
			LiveURL: s.opts.LiveURL,
		},
	})
}

func (s *Switcher) assetURL(path string) string {
	return strings.TrimRight(s.opts.AssetsURL, "/") + "/" + path
}

func button(postID int64, nonce string) string {
	return fmt.Sprintf(`<a href="#" class="feature-image-switcher button" id="feature-image-switcher-%d" data-nonce="%s" style="%s">Choose New</a>`,
		postID, html.EscapeString(nonce), buttonStyle)
}
