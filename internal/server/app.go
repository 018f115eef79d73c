// Package server initializes and runs the blog server.
// It picks the storage and image backends from the configuration, applies
// migrations, handles graceful shutdown and starts the HTTP endpoint.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gopherblog/internal/logging"
	"github.com/dmitrijs2005/gopherblog/internal/server/api"
	"github.com/dmitrijs2005/gopherblog/internal/server/config"
	"github.com/dmitrijs2005/gopherblog/internal/server/images"
	"github.com/dmitrijs2005/gopherblog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gopherblog/internal/server/services"
)

type App struct {
	config       *config.Config
	logger       *logging.ZapLogger
	repomanager  repomanager.RepositoryManager
	imageStore   images.Store
	userService  *services.UserService
	postService  *services.PostService
	imageService *services.ImageService
}

// seams for tests
var (
	openPostgres = func(ctx context.Context, dsn string) (repomanager.RepositoryManager, error) {
		m, err := repomanager.OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	newS3Store = func(ctx context.Context, c *config.Config) (images.Store, error) {
		s, err := images.NewS3Store(ctx, c)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
)

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.New(c.LogLevel, c.IsDevelopment())
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	m, err := newRepositoryManager(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := m.RunMigrations(ctx); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := newImageStore(ctx, c)
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("image store init error: %w", err)
	}

	us := services.NewUserService(m, logger, c)
	ps := services.NewPostService(m, store, logger, c.PostsPerPage)
	is := services.NewImageService(m, store, logger, c.MaxImageSize)

	return &App{
		config:       c,
		logger:       logger,
		repomanager:  m,
		imageStore:   store,
		userService:  us,
		postService:  ps,
		imageService: is,
	}, nil
}

func newRepositoryManager(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.StorageBackend {
	case config.StoragePostgres:
		return openPostgres(ctx, c.DatabaseDSN)
	case config.StorageMemory:
		return repomanager.NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
}

func newImageStore(ctx context.Context, c *config.Config) (images.Store, error) {
	switch c.ImageBackend {
	case config.ImagesOnDisk:
		s, err := images.NewDiskStore(c.ImagesDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.ImagesOnS3:
		return newS3Store(ctx, c)
	default:
		return nil, fmt.Errorf("unknown image backend %q", c.ImageBackend)
	}
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := api.NewServer(app.config, app.logger, app.userService, app.postService, app.imageService, app.imageStore)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...",
		"storage", app.config.StorageBackend,
		"images", app.config.ImageBackend,
		"environment", app.config.Environment,
	)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "closing storage failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	_ = app.logger.Sync()
}
