package switcher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/featureimage/internal/common"
	"github.com/dmitrijs2005/featureimage/internal/server/hooks"
	"github.com/dmitrijs2005/featureimage/internal/server/models"
)

// Switch outcomes as recorded by the Recorder.
const (
	ResultSuccess      = "success"
	ResultInvalidToken = "invalid_token"
	ResultForbidden    = "forbidden"
	ResultInvalidInput = "invalid_input"
	ResultNotFound     = "not_found"
	ResultError        = "error"
)

type switchRequest struct {
	postID       int64
	attachmentID int64
}

type successResponse struct {
	Success      bool   `json:"success"`
	PostID       int64  `json:"post_id"`
	AttachmentID int64  `json:"attachment_id"`
	Markup       string `json:"markup"`
}

var failureBody = []byte(`{"success":false}` + "\n")

// SetFeatureImage handles the set_feature_image AJAX action. Every failure
// answers HTTP 200 with {"success":false} and leaves storage untouched.
func (s *Switcher) SetFeatureImage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	req, err := s.validate(ctx, r)
	if err != nil {
		result := resultFor(err)
		s.logger.Warn(ctx, "feature image switch rejected", "result", result, "error", err)
		s.fail(w, result, start)
		return
	}

	var markup string
	err = s.host.WithPostLock(ctx, req.postID, func(ctx context.Context) error {
		if err := s.host.SetPostThumbnail(ctx, req.postID, req.attachmentID); err != nil {
			return err
		}
		var err error
		markup, err = s.host.PostThumbnailHTML(ctx, req.postID, s.opts.SizeName)
		return err
	})
	if err != nil {
		result := resultFor(err)
		s.logger.Error(ctx, "feature image switch failed", "result", result,
			"post_id", req.postID, "attachment_id", req.attachmentID, "error", err)
		s.fail(w, result, start)
		return
	}

	s.hooks.DoAction(ctx, hooks.SwitcherUpdated, hooks.SwitchEvent{
		PostID:       req.postID,
		AttachmentID: req.attachmentID,
		Markup:       markup,
	})

	s.logger.Info(ctx, "feature image switched", "post_id", req.postID, "attachment_id", req.attachmentID)
	s.recorder.SwitchObserved(ResultSuccess, time.Since(start))

	writeJSON(w, successResponse{
		Success:      true,
		PostID:       req.postID,
		AttachmentID: req.attachmentID,
		Markup:       markup,
	})
}

// validate applies the checks in order; the first failure wins.
func (s *Switcher) validate(ctx context.Context, r *http.Request) (switchRequest, error) {
	token := r.FormValue("_ajax_nonce")
	if token == "" {
		token = r.FormValue("_wpnonce")
	}
	if err := s.host.VerifyNonce(ctx, token, NonceAction); err != nil {
		return switchRequest{}, err
	}

	if !s.host.CurrentUserCan(ctx, models.CapUploadFiles) {
		return switchRequest{}, common.ErrorPermissionDenied
	}
	if !s.host.CurrentUserCan(ctx, models.CapEditPosts) {
		return switchRequest{}, common.ErrorPermissionDenied
	}

	postID, err := ParseID(r.FormValue("post_id"))
	if err != nil {
		return switchRequest{}, err
	}
	attachmentID, err := ParseID(r.FormValue("attachment_id"))
	if err != nil {
		return switchRequest{}, err
	}

	return switchRequest{postID: postID, attachmentID: attachmentID}, nil
}

// ParseID reads a positive decimal identifier, ignoring surrounding
// whitespace. Signs, fractions, zero and out-of-range values are rejected.
func ParseID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, common.ErrorInvalidInput
	}
	for _, c := range raw {
		if c < '0' || c > '9' {
			return 0, common.ErrorInvalidInput
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, common.ErrorInvalidInput
	}
	return id, nil
}

func resultFor(err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return ResultInvalidToken
	case errors.Is(err, common.ErrorPermissionDenied):
		return ResultForbidden
	case errors.Is(err, common.ErrorInvalidInput):
		return ResultInvalidInput
	case errors.Is(err, common.ErrorNotFound):
		return ResultNotFound
	default:
		return ResultError
	}
}

func (s *Switcher) fail(w http.ResponseWriter, result string, start time.Time) {
	s.recorder.SwitchObserved(result, time.Since(start))
	setJSONHeaders(w)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(failureBody)
}

func setJSONHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
}

func writeJSON(w http.ResponseWriter, v any) {
	setJSONHeaders(w)
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
