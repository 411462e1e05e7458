// Package cli is the interactive admin console: it creates users and posts,
// uploads media and sets featured images directly against the database and
// object storage the server uses.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/featureimage/internal/logging"
	"github.com/dmitrijs2005/featureimage/internal/server/config"
	"github.com/dmitrijs2005/featureimage/internal/server/media"
	"github.com/dmitrijs2005/featureimage/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/featureimage/internal/server/services"
)

type App struct {
	users  *services.UserService
	posts  *services.PostService
	media  *services.MediaService
	reader *bufio.Reader
	out    io.Writer
	db     *sql.DB
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stderr, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := media.NewS3Store(media.S3Config{
		Region:        c.S3Region,
		AccessKey:     c.S3RootUser,
		SecretKey:     c.S3RootPassword,
		BaseEndpoint:  c.S3BaseEndpoint,
		Bucket:        c.S3Bucket,
		PublicBaseURL: c.MediaBaseURL,
	})

	ms := services.NewMediaService(db, rm, store, media.NewSizes(), logger)
	ms.SetMaxPixels(c.MaxImagePixels)

	app := newApp(
		services.NewUserService(db, rm, c),
		services.NewPostService(db, rm),
		ms,
		os.Stdin, os.Stdout,
	)
	app.db = db
	return app, nil
}

func newApp(us *services.UserService, ps *services.PostService, ms *services.MediaService, in io.Reader, out io.Writer) *App {
	return &App{users: us, posts: ps, media: ms, reader: bufio.NewReader(in), out: out}
}

// Run starts the console and returns when the user exits.
func (a *App) Run(ctx context.Context) {
	if a.db != nil {
		defer a.db.Close()
	}
	printlnFn("Feature image admin console (type 'help' for commands)")
	runREPL(ctx, a, a.reader)
}
