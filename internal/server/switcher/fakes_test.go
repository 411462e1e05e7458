package switcher

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/featureimage/internal/common"
	"github.com/dmitrijs2005/featureimage/internal/server/models"
)

// fakeHost keeps posts and attachments in memory and treats nonces as
// "<action>:<user>:<n>".
type fakeHost struct {
	mu          sync.Mutex
	viewer      *models.User
	thumbnails  map[int64]int64
	attachments map[int64]bool
	nonceSeq    int
	sets        int
	renderErr   error
	locks       int
}

func newFakeHost(viewer *models.User) *fakeHost {
	return &fakeHost{
		viewer:      viewer,
		thumbnails:  map[int64]int64{42: 3},
		attachments: map[int64]bool{3: true, 7: true},
	}
}

func (h *fakeHost) CurrentUserCan(_ context.Context, c models.Capability) bool {
	return h.viewer.Can(c)
}

func (h *fakeHost) CurrentUserID(context.Context) int64 { return h.viewer.IDOrZero() }

func (h *fakeHost) CreateNonce(_ context.Context, action string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nonceSeq++
	return fmt.Sprintf("%s:%d:%d", action, h.viewer.IDOrZero(), h.nonceSeq), nil
}

func (h *fakeHost) VerifyNonce(_ context.Context, token, action string) error {
	var u, n int64
	if _, err := fmt.Sscanf(token, NonceAction+":%d:%d", &u, &n); err != nil {
		return common.ErrInvalidToken
	}
	if action != NonceAction || u != h.viewer.IDOrZero() {
		return common.ErrInvalidToken
	}
	return nil
}

func (h *fakeHost) WithPostLock(ctx context.Context, postID int64, fn func(ctx context.Context) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.locks++
	if _, ok := h.thumbnails[postID]; !ok {
		return common.ErrorNotFound
	}
	before := h.thumbnails[postID]
	if err := fn(ctx); err != nil {
		h.thumbnails[postID] = before
		return err
	}
	return nil
}

// SetPostThumbnail and PostThumbnailHTML run under WithPostLock's mutex.
func (h *fakeHost) SetPostThumbnail(_ context.Context, postID, attachmentID int64) error {
	if !h.attachments[attachmentID] {
		return common.ErrorNotFound
	}
	if _, ok := h.thumbnails[postID]; !ok {
		return common.ErrorNotFound
	}
	h.thumbnails[postID] = attachmentID
	h.sets++
	return nil
}

func (h *fakeHost) PostThumbnailHTML(_ context.Context, postID int64, size string) (string, error) {
	if h.renderErr != nil {
		return "", h.renderErr
	}
	return fmt.Sprintf(`<img src="/media/%d.jpg" class="attachment-%s size-%s wp-post-image" alt="" />`,
		h.thumbnails[postID], size, size), nil
}

func (h *fakeHost) thumbnail(postID int64) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.thumbnails[postID]
}

type fakeAjax struct {
	handlers map[string]http.Handler
}

func (a *fakeAjax) HandleAjax(action string, h http.Handler) {
	if a.handlers == nil {
		a.handlers = map[string]http.Handler{}
	}
	a.handlers[action] = h
}

type fakeRecorder struct {
	mu      sync.Mutex
	results []string
	buttons int
}

func (r *fakeRecorder) SwitchObserved(result string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func (r *fakeRecorder) ButtonRendered() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buttons++
}

var (
	editor      = &models.User{ID: 5, UserName: "ed", Role: models.RoleEditor}
	author      = &models.User{ID: 6, UserName: "au", Role: models.RoleAuthor}
	contributor = &models.User{ID: 8, UserName: "co", Role: models.RoleContributor}
	subscriber  = &models.User{ID: 9, UserName: "su", Role: models.RoleSubscriber}
)
