package web

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/featureimage/internal/common"
	"github.com/dmitrijs2005/featureimage/internal/server/models"
	"github.com/dmitrijs2005/featureimage/internal/server/site"
)

const indexPageSize = 20

type postView struct {
	Post         *models.Post
	FeatureImage template.HTML
}

type pageData struct {
	Title    string
	Path     string
	Singular bool
	Viewer   *models.User
	Posts    []postView
	Scripts  template.HTML
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	posts, err := s.site.Posts().List(ctx, indexPageSize, 0)
	if err != nil {
		s.logger.Error(ctx, "post listing failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	page := site.NewPage(false, s.mediaBundleURL())
	views, err := s.renderPosts(ctx, page, posts)
	if err != nil {
		s.logger.Error(ctx, "feature image render failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "index.html", page, pageData{Title: "Posts", Posts: views})
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}

	post, err := s.site.Posts().Get(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Error(ctx, "post lookup failed", "post_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	page := site.NewPage(true, s.mediaBundleURL())
	views, err := s.renderPosts(ctx, page, []*models.Post{post})
	if err != nil {
		s.logger.Error(ctx, "feature image render failed", "post_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "post.html", page, pageData{Title: post.Title, Singular: true, Posts: views})
}

func (s *Server) renderPosts(ctx context.Context, page *site.Page, posts []*models.Post) ([]postView, error) {
	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		html, err := s.site.FeatureImage(ctx, page, p)
		if err != nil {
			return nil, err
		}
		views = append(views, postView{Post: p, FeatureImage: template.HTML(html)})
	}
	return views, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, page *site.Page, data pageData) {
	ctx := r.Context()

	scripts, err := page.ScriptTags()
	if err != nil {
		s.logger.Error(ctx, "script tags failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	data.Scripts = scripts
	data.Path = r.URL.Path
	data.Viewer = site.Viewer(ctx)

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error(ctx, "template failed", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) mediaBundleURL() string {
	return s.cfg.URL(MediaPath + "media-views.js")
}
