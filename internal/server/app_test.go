package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gopherblog/internal/server/config"
	"github.com/dmitrijs2005/gopherblog/internal/server/images"
	"github.com/dmitrijs2005/gopherblog/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(t *testing.T) *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.StorageBackend = config.StorageMemory
	c.ImagesDir = t.TempDir()
	c.LogLevel = "error"
	return c
}

func TestNewApp_MemoryAndDisk(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig(t))
	require.NoError(t, err)

	assert.IsType(t, &repomanager.MemoryRepositoryManager{}, app.repomanager)
	assert.IsType(t, &images.DiskStore{}, app.imageStore)
	assert.NotNil(t, app.userService)
	assert.NotNil(t, app.postService)
	assert.NotNil(t, app.imageService)
}

func TestNewApp_UnknownBackends(t *testing.T) {
	c := memoryConfig(t)
	c.StorageBackend = "mongo"
	_, err := NewApp(context.Background(), c)
	assert.ErrorContains(t, err, `unknown storage backend "mongo"`)

	c = memoryConfig(t)
	c.ImageBackend = "ftp"
	_, err = NewApp(context.Background(), c)
	assert.ErrorContains(t, err, `unknown image backend "ftp"`)
}

func TestNewApp_BadLogLevel(t *testing.T) {
	c := memoryConfig(t)
	c.LogLevel = "loud"
	_, err := NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "logger init error")
}

func TestNewApp_PostgresFailure(t *testing.T) {
	orig := openPostgres
	defer func() { openPostgres = orig }()

	var gotDSN string
	openPostgres = func(ctx context.Context, dsn string) (repomanager.RepositoryManager, error) {
		gotDSN = dsn
		return nil, errors.New("connection refused")
	}

	c := memoryConfig(t)
	c.StorageBackend = config.StoragePostgres
	c.DatabaseDSN = "postgres://db/blog"

	_, err := NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "db init error: connection refused")
	assert.Equal(t, "postgres://db/blog", gotDSN)
}

func TestNewApp_S3Store(t *testing.T) {
	orig := newS3Store
	defer func() { newS3Store = orig }()

	called := false
	newS3Store = func(ctx context.Context, c *config.Config) (images.Store, error) {
		called = true
		return images.NewDiskStore(t.TempDir())
	}

	c := memoryConfig(t)
	c.ImageBackend = config.ImagesOnS3

	_, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}
