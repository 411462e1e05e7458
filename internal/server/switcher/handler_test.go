package switcher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/dmitrijs2005/featureimage/internal/common"
	"github.com/dmitrijs2005/featureimage/internal/server/hooks"
	"github.com/dmitrijs2005/featureimage/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validNonce(t *testing.T, h *fakeHost) string {
	t.Helper()
	n, err := h.CreateNonce(context.Background(), NonceAction)
	require.NoError(t, err)
	return n
}

func postForm(t *testing.T, s *Switcher, form url.Values) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/wp-admin/admin-ajax.php", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()

	s.SetFeatureImage(rr, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), "body: %s", rr.Body.String())
	return rr, body
}

func form(nonce, postID, attachmentID string) url.Values {
	v := url.Values{"action": {AjaxAction}}
	if nonce != "" {
		v.Set("_ajax_nonce", nonce)
	}
	if postID != "" {
		v.Set("post_id", postID)
	}
	if attachmentID != "" {
		v.Set("attachment_id", attachmentID)
	}
	return v
}

func assertFailure(t *testing.T, rr *httptest.ResponseRecorder, body map[string]any) {
	t.Helper()
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{"success": false}, body)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
}

func TestSetFeatureImage_Success(t *testing.T) {
	s, host, reg, rec := newTestSwitcher(t, editor)

	var events []hooks.SwitchEvent
	reg.AddAction(hooks.SwitcherUpdated, hooks.DefaultPriority, func(_ context.Context, args ...any) {
		events = append(events, args[0].(hooks.SwitchEvent))
	})

	rr, body := postForm(t, s, form(validNonce(t, host), "42", "7"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rr.Header().Get("Cache-Control"))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(42), body["post_id"])
	assert.Equal(t, float64(7), body["attachment_id"])

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body["markup"].(string)))
	require.NoError(t, err)
	src, _ := doc.Find("img").Attr("src")
	assert.Equal(t, "/media/7.jpg", src)
	assert.True(t, doc.Find("img").HasClass("size-commentpress-feature"))

	assert.Equal(t, int64(7), host.thumbnail(42))
	require.Len(t, events, 1)
	assert.Equal(t, hooks.SwitchEvent{PostID: 42, AttachmentID: 7, Markup: body["markup"].(string)}, events[0])
	assert.Equal(t, []string{ResultSuccess}, rec.results)
}

func TestSetFeatureImage_Idempotent(t *testing.T) {
	s, host, _, _ := newTestSwitcher(t, editor)
	nonce := validNonce(t, host)

	_, first := postForm(t, s, form(nonce, "42", "7"))
	_, second := postForm(t, s, form(nonce, "42", "7"))

	assert.Equal(t, true, first["success"])
	assert.Equal(t, first, second)
	assert.Equal(t, int64(7), host.thumbnail(42))
}

func TestSetFeatureImage_WpnonceFallbackAndWhitespace(t *testing.T) {
	s, host, _, _ := newTestSwitcher(t, author)
	v := url.Values{
		"action":        {AjaxAction},
		"_wpnonce":      {validNonce(t, host)},
		"post_id":       {" 42\n"},
		"attachment_id": {"\t7 "},
	}

	_, body := postForm(t, s, v)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, int64(7), host.thumbnail(42))
}

func TestSetFeatureImage_Rejections(t *testing.T) {
	otherViewerNonce := "feature_image_switcher:999:1"

	tests := []struct {
		name   string
		viewer *models.User
		form   func(nonce string) url.Values
		result string
	}{
		{"missing token", editor, func(string) url.Values { return form("", "42", "7") }, ResultInvalidToken},
		{"forged token", editor, func(string) url.Values { return form("forged", "42", "7") }, ResultInvalidToken},
		{"token of other viewer", editor, func(string) url.Values { return form(otherViewerNonce, "42", "7") }, ResultInvalidToken},
		{"cannot upload", contributor, func(n string) url.Values { return form(n, "42", "7") }, ResultForbidden},
		{"cannot edit", subscriber, func(n string) url.Values { return form(n, "42", "7") }, ResultForbidden},
		{"anonymous", nil, func(n string) url.Values { return form(n, "42", "7") }, ResultForbidden},
		{"missing post", editor, func(n string) url.Values { return form(n, "", "7") }, ResultInvalidInput},
		{"zero post", editor, func(n string) url.Values { return form(n, "0", "7") }, ResultInvalidInput},
		{"non-numeric post", editor, func(n string) url.Values { return form(n, "abc", "7") }, ResultInvalidInput},
		{"negative post", editor, func(n string) url.Values { return form(n, "-42", "7") }, ResultInvalidInput},
		{"missing attachment", editor, func(n string) url.Values { return form(n, "42", "") }, ResultInvalidInput},
		{"zero attachment", editor, func(n string) url.Values { return form(n, "42", "000") }, ResultInvalidInput},
		{"fractional attachment", editor, func(n string) url.Values { return form(n, "42", "7.5") }, ResultInvalidInput},
		{"unknown post", editor, func(n string) url.Values { return form(n, "404", "7") }, ResultNotFound},
		{"unknown attachment", editor, func(n string) url.Values { return form(n, "42", "99") }, ResultNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, host, _, rec := newTestSwitcher(t, tt.viewer)

			rr, body := postForm(t, s, tt.form(validNonce(t, host)))

			assertFailure(t, rr, body)
			assert.Equal(t, int64(3), host.thumbnail(42), "no mutation expected")
			assert.Zero(t, host.sets)
			assert.Equal(t, []string{tt.result}, rec.results)
		})
	}
}

func TestSetFeatureImage_ValidationOrder(t *testing.T) {
	// a subscriber with a bad token and bad ids fails on the token first
	s, _, _, rec := newTestSwitcher(t, subscriber)
	rr, body := postForm(t, s, form("bad", "x", "y"))
	assertFailure(t, rr, body)
	assert.Equal(t, []string{ResultInvalidToken}, rec.results)

	// a valid token but no capability fails before id parsing
	s, host, _, rec := newTestSwitcher(t, subscriber)
	_, _ = postForm(t, s, form(validNonce(t, host), "x", "y"))
	assert.Equal(t, []string{ResultForbidden}, rec.results)
}

func TestSetFeatureImage_RenderFailureRollsBack(t *testing.T) {
	s, host, _, rec := newTestSwitcher(t, editor)
	host.renderErr = errors.New("s3 down")

	rr, body := postForm(t, s, form(validNonce(t, host), "42", "7"))

	assertFailure(t, rr, body)
	assert.Equal(t, int64(3), host.thumbnail(42))
	assert.Equal(t, []string{ResultError}, rec.results)
}

func TestSetFeatureImage_ConcurrentSamePost(t *testing.T) {
	s, host, _, _ := newTestSwitcher(t, editor)
	nonce := validNonce(t, host)

	var wg sync.WaitGroup
	results := make([]map[string]any, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			att := "7"
			if i%2 == 0 {
				att = "3"
			}
			req := httptest.NewRequest(http.MethodPost, "/wp-admin/admin-ajax.php",
				strings.NewReader(form(nonce, "42", att).Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rr := httptest.NewRecorder()
			s.SetFeatureImage(rr, req)
			var body map[string]any
			_ = json.Unmarshal(rr.Body.Bytes(), &body)
			results[i] = body
		}(i)
	}
	wg.Wait()

	for _, body := range results {
		require.Equal(t, true, body["success"])
		// markup always matches the attachment the request set
		want := "/media/" + jsonNumber(body["attachment_id"]) + ".jpg"
		assert.Contains(t, body["markup"], want)
	}
	assert.Equal(t, 10, host.locks)
}

func jsonNumber(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestParseID(t *testing.T) {
	good := map[string]int64{"1": 1, " 42 ": 42, "007": 7, "9223372036854775807": 9223372036854775807}
	for in, want := range good {
		got, err := ParseID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "  ", "0", "00", "-1", "+1", "1e3", "0x10", "4 2", "9223372036854775808", "４２"} {
		_, err := ParseID(in)
		assert.ErrorIs(t, err, common.ErrorInvalidInput, "%q", in)
	}
}

func TestResultFor(t *testing.T) {
	assert.Equal(t, ResultInvalidToken, resultFor(common.ErrTokenExpired))
	assert.Equal(t, ResultNotFound, resultFor(errors.Join(errors.New("post 1"), common.ErrorNotFound)))
	assert.Equal(t, ResultError, resultFor(errors.New("boom")))
}
