// Package web is the HTTP front end of the host: post pages, the
// admin-ajax action dispatcher, session login, static assets, live update
// websockets and the metrics endpoint.
package web

import (
	"context"
	"errors"
	"html/template"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/featureimage/internal/logging"
	"github.com/dmitrijs2005/featureimage/internal/server/config"
	"github.com/dmitrijs2005/featureimage/internal/server/live"
	"github.com/dmitrijs2005/featureimage/internal/server/site"
)

const (
	AjaxPath   = "/wp-admin/admin-ajax.php"
	UploadPath = "/wp-admin/async-upload.php"
	AssetsPath = "/assets/"
	MediaPath  = "/media/"
	LivePath   = "/ws"

	shutdownTimeout = 10 * time.Second
	maxUploadSize   = 20 << 20
)

type Server struct {
	address      string
	site         *site.Site
	hub          *live.Hub
	metrics      http.Handler
	cfg          *config.Config
	logger       logging.Logger
	templates    *template.Template
	assets       http.Handler
	secureCookie bool

	mu   sync.RWMutex
	ajax map[string]http.Handler
}

// NewServer builds the HTTP server. metricsHandler and hub may be nil, in
// which case their endpoints are not mounted.
func NewServer(cfg *config.Config, st *site.Site, hub *live.Hub, metricsHandler http.Handler,
	assets http.Handler, logger logging.Logger) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		address:      cfg.EndpointAddrHTTP,
		site:         st,
		hub:          hub,
		metrics:      metricsHandler,
		cfg:          cfg,
		logger:       logger.With("module", "http_server"),
		templates:    tmpl,
		assets:       assets,
		secureCookie: strings.HasPrefix(cfg.SiteURL, "https://"),
		ajax:         make(map[string]http.Handler),
	}
	s.HandleAjax("query-attachments", http.HandlerFunc(s.queryAttachments))
	return s, nil
}

// HandleAjax routes POST admin-ajax requests whose "action" field equals
// action to h. Registering an action twice replaces the handler.
func (s *Server) HandleAjax(action string, h http.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ajax[action] = h
}

func (s *Server) ajaxHandler(action string) (http.Handler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.ajax[action]
	return h, ok
}

// Handler returns the root handler with session and access-log middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /posts/{id}", s.handlePost)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("POST "+AjaxPath, s.handleAjax)
	mux.HandleFunc("POST "+UploadPath, s.handleUpload)

	if s.assets != nil {
		mux.Handle("GET "+AssetsPath, http.StripPrefix(AssetsPath, s.assets))
	}
	mux.Handle("GET "+MediaPath, http.StripPrefix(MediaPath, http.FileServerFS(staticMedia())))

	if s.hub != nil {
		mux.HandleFunc("GET "+LivePath, s.handleLive)
	}
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}

	return s.session(s.accessLog(mux))
}

func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
