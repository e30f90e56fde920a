// Package server wires the gallery server together: database, migrations,
// blob store, services and the HTTP API, and runs them until a termination
// signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/logging"
	"github.com/dmitrijs2005/photogallery/internal/server/blobstore"
	"github.com/dmitrijs2005/photogallery/internal/server/config"
	"github.com/dmitrijs2005/photogallery/internal/server/httpapi"
	"github.com/dmitrijs2005/photogallery/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/photogallery/internal/server/services"
	"github.com/dmitrijs2005/photogallery/internal/workerpool"
)

// PresignTTL is the lifetime of redirect URLs handed out by the S3 backend.
const PresignTTL = 15 * time.Minute

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	authService  *services.AuthService
	imageService *services.ImageService
	store        blobstore.Store
}

// openDB is a seam over repomanager.Open.
var openDB = repomanager.Open

// NewApp connects to the database, applies migrations and builds the
// services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel)

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, db, repomanager.NewPostgresRepositoryManager(), logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) (*App, error) {
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	store, err := newStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	auth, err := services.NewAuthService(db, rm, c.AdminEmail, c.AdminPassword, c.SessionTTL, logger.With("module", "auth"))
	if err != nil {
		return nil, err
	}

	pool := workerpool.New(c.Workers)
	images := services.NewImageService(db, rm, store, pool, services.ImageOptionsFromConfig(c), logger.With("module", "images"))

	return &App{config: c, logger: logger, db: db, authService: auth, imageService: images, store: store}, nil
}

func newStore(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	switch c.StorageBackend {
	case config.StorageS3:
		return blobstore.NewS3Store(ctx, blobstore.S3Config{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		})
	default:
		return blobstore.NewLocalStore(c.UploadDir)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Handler returns the HTTP API of the app.
func (app *App) Handler() *httpapi.Server {
	router := httpapi.NewRouter(app.authService, app.imageService, app.store, app.logger, httpapi.Options{
		MaxFileSize:    app.config.MaxFileSize,
		MaxFiles:       app.config.MaxFiles,
		RequestTimeout: app.config.RequestTimeout,
		PresignTTL:     PresignTTL,
	})
	return httpapi.NewServer(app.config.HTTPAddr, router, app.logger, app.config.ShutdownTimeout)
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// stops the janitor and closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.authService.RunJanitor(ctx, app.config.SessionCleanupInterval)
	}()

	err := app.Handler().Run(ctx)
	if err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
	}
	cancelFunc()
	wg.Wait()

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Warn(ctx, "db close failed", "error", cerr)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}
