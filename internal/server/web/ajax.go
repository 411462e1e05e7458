package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/featureimage/internal/common"
	"github.com/dmitrijs2005/featureimage/internal/server/models"
)

const mediaPageSize = 40

// handleAjax dispatches on the "action" form field. Unknown actions get
// HTTP 400 with body "0".
func (s *Server) handleAjax(w http.ResponseWriter, r *http.Request) {
	action := strings.TrimSpace(r.FormValue("action"))
	h, ok := s.ajaxHandler(action)
	if !ok {
		s.logger.Debug(r.Context(), "unknown ajax action", "action", action)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("0"))
		return
	}
	h.ServeHTTP(w, r)
}

type attachmentJSON struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	MimeType string `json:"mime"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	AuthorID int64  `json:"author"`
}

type ajaxResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// queryAttachments serves the media picker listing.
func (s *Server) queryAttachments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := models.AttachmentQuery{
		MimePrefix: "image/",
		Search:     strings.TrimSpace(r.FormValue("s")),
		Limit:      mediaPageSize,
	}
	if page, err := strconv.Atoi(r.FormValue("paged")); err == nil && page > 1 {
		q.Offset = (page - 1) * mediaPageSize
	}

	list, err := s.site.QueryAttachments(ctx, q)
	if err != nil {
		if !errors.Is(err, common.ErrorPermissionDenied) {
			s.logger.Error(ctx, "media query failed", "error", err)
		}
		writeAjax(w, ajaxResponse{Success: false})
		return
	}

	out := make([]attachmentJSON, 0, len(list))
	for _, a := range list {
		img, err := s.site.Media().Image(ctx, a, "thumbnail")
		if err != nil {
			s.logger.Warn(ctx, "attachment url failed", "attachment_id", a.ID, "error", err)
			continue
		}
		out = append(out, attachmentJSON{
			ID:       a.ID,
			Title:    a.Title,
			MimeType: a.MimeType,
			URL:      img.Src,
			Width:    img.Width,
			Height:   img.Height,
			AuthorID: a.AuthorID,
		})
	}
	writeAjax(w, ajaxResponse{Success: true, Data: out})
}

// handleUpload stores a multipart "async-upload" file for viewers who can
// upload files.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !s.site.CurrentUserCan(ctx, models.CapUploadFiles) {
		writeAjax(w, ajaxResponse{Success: false})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("async-upload")
	if err != nil {
		writeAjax(w, ajaxResponse{Success: false})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeAjax(w, ajaxResponse{Success: false})
		return
	}

	title := r.FormValue("name")
	if title == "" {
		title = strings.TrimSuffix(header.Filename, path.Ext(header.Filename))
	}

	a, err := s.site.Media().Upload(ctx, s.site.CurrentUserID(ctx), title, data)
	if err != nil {
		s.logger.Warn(ctx, "upload rejected", "error", err)
		writeAjax(w, ajaxResponse{Success: false})
		return
	}

	s.logger.Info(ctx, "attachment uploaded", "attachment_id", a.ID, "mime", a.MimeType)
	writeAjax(w, ajaxResponse{Success: true, Data: attachmentJSON{
		ID: a.ID, Title: a.Title, MimeType: a.MimeType, Width: a.Width, Height: a.Height, AuthorID: a.AuthorID,
	}})
}

func writeAjax(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_ = json.NewEncoder(w).Encode(v)
}
