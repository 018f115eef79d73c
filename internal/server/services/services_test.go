package services

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gopherblog/internal/logging"
	"github.com/dmitrijs2005/gopherblog/internal/server/auth"
	"github.com/dmitrijs2005/gopherblog/internal/server/config"
	"github.com/dmitrijs2005/gopherblog/internal/server/models"
	"github.com/dmitrijs2005/gopherblog/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeImageStore struct {
	mu        sync.Mutex
	saved     map[string][]byte
	removed   []string
	saveErr   error
	removeErr error
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{saved: map[string][]byte{}}
}

func (f *fakeImageStore) Save(ctx context.Context, name, contentType string, body io.Reader, size int64) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved["images/"+name] = b
	return "images/" + name, nil
}

func (f *fakeImageStore) Remove(ctx context.Context, relPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, relPath)
	return f.removeErr
}

func (f *fakeImageStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	http.NotFound(w, r)
}

func testConfig() *config.Config {
	return &config.Config{SecretKey: "test-secret", AccessTokenValidityDuration: time.Hour, PostsPerPage: 2}
}

func newTestUserService(m repomanager.RepositoryManager) *UserService {
	s := NewUserService(m, logging.Nop{}, testConfig())
	s.bcryptCost = bcrypt.MinCost
	return s
}

// register creates a user and returns an authenticated identity for it.
func register(t *testing.T, s *UserService, email, name string) (auth.Identity, *models.User) {
	t.Helper()
	u, err := s.CreateUser(context.Background(), email, name, "secret1")
	require.NoError(t, err)
	return auth.Identity{Authenticated: true, UserID: u.ID, Email: u.Email}, u
}

func ptr(s string) *string { return &s }

func pngFile(name string) *UploadFile {
	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 64)...)
	return &UploadFile{Name: name, Size: int64(len(content)), Content: bytes.NewReader(content)}
}
