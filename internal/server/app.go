// Package server wires the feature image site together: storage, services,
// the hook registry, the switcher, live updates and metrics. It runs the
// HTTP front end and the gRPC health endpoint until a shutdown signal.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/featureimage/internal/logging"
	"github.com/dmitrijs2005/featureimage/internal/server/auth"
	"github.com/dmitrijs2005/featureimage/internal/server/config"
	"github.com/dmitrijs2005/featureimage/internal/server/hooks"
	"github.com/dmitrijs2005/featureimage/internal/server/live"
	"github.com/dmitrijs2005/featureimage/internal/server/media"
	"github.com/dmitrijs2005/featureimage/internal/server/metrics"
	"github.com/dmitrijs2005/featureimage/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/featureimage/internal/server/services"
	"github.com/dmitrijs2005/featureimage/internal/server/site"
	"github.com/dmitrijs2005/featureimage/internal/server/switcher"
	"github.com/dmitrijs2005/featureimage/internal/server/web"

	gs "github.com/dmitrijs2005/featureimage/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	hub     *live.Hub
	web     *web.Server
	grpc    *gs.GRPCServer
	metrics *metrics.Metrics
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store := media.NewS3Store(media.S3Config{
		Region:        c.S3Region,
		AccessKey:     c.S3RootUser,
		SecretKey:     c.S3RootPassword,
		BaseEndpoint:  c.S3BaseEndpoint,
		Bucket:        c.S3Bucket,
		PublicBaseURL: c.MediaBaseURL,
	})

	m := metrics.New()
	reg := hooks.NewRegistry()

	ms := services.NewMediaService(db, rm, store, media.NewSizes(), logger)
	ms.SetMaxPixels(c.MaxImagePixels)

	st := site.New(reg,
		services.NewUserService(db, rm, c),
		services.NewPostService(db, rm),
		ms,
		auth.NewNonces([]byte(c.SecretKey), c.NonceValidityDuration),
		c.ThumbnailSize,
		logger,
	)

	hub := live.NewHub(logger, m)
	reg.AddAction(hooks.SwitcherUpdated, hooks.DefaultPriority, hub.OnSwitch)

	ws, err := web.NewServer(c, st, hub, m.Handler(), http.FileServerFS(switcher.Assets()), logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	sw := switcher.New(st, reg, switcher.Options{
		SizeName:  c.ThumbnailSize,
		AjaxURL:   c.URL(web.AjaxPath),
		AssetsURL: c.URL(web.AssetsPath),
		LiveURL:   websocketURL(c.URL(web.LivePath)),
	}, logger, m)
	sw.Register(ws)

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		hub:     hub,
		web:     ws,
		grpc:    gs.NewGRPCServer(c.EndpointAddrGRPC, logger),
		metrics: m,
	}, nil
}

func websocketURL(u string) string {
	if rest, ok := strings.CutPrefix(u, "https://"); ok {
		return "wss://" + rest
	}
	if rest, ok := strings.CutPrefix(u, "http://"); ok {
		return "ws://" + rest
	}
	return u
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpc.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.web.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.hub.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
