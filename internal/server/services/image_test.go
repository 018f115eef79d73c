package services

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/dmitrijs2005/gopherblog/internal/logging"
	"github.com/dmitrijs2005/gopherblog/internal/server/auth"
	"github.com/dmitrijs2005/gopherblog/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var alice = auth.Identity{Authenticated: true, UserID: "u-1", Email: "a@x.com"}

func newImageService(store *fakeImageStore) *ImageService {
	s := NewImageService(repomanager.NewMemoryRepositoryManager(), store, logging.Nop{}, 1024)
	s.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s
}

func TestUpload_StoresPNG(t *testing.T) {
	store := newFakeImageStore()
	s := newImageService(store)

	file := pngFile("Holiday Photo.PNG")
	path, err := s.Upload(context.Background(), alice, file, "")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^images/20240102T030405\.000Z-[0-9a-f]{8}-holiday_photo\.png$`), path)
	require.Contains(t, store.saved, path)
	assert.True(t, bytes.HasPrefix(store.saved[path], pngHeader), "sniffed bytes must be written too")
	assert.Len(t, store.saved[path], int(file.Size))
	assert.Empty(t, store.removed)
}

func TestUpload_RemovesOldImage(t *testing.T) {
	store := newFakeImageStore()
	s := newImageService(store)

	_, err := s.Upload(context.Background(), alice, pngFile("a.png"), "images/old.png")
	require.NoError(t, err)
	assert.Equal(t, []string{"images/old.png"}, store.removed)

	store.removeErr = common.ErrFileNotFound
	_, err = s.Upload(context.Background(), alice, pngFile("b.png"), "images/gone.png")
	assert.NoError(t, err, "old image cleanup is best effort")
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name    string
		id      auth.Identity
		file    *UploadFile
		oldPath string
		saveErr error
		kind    error
		msg     string
	}{
		{name: "unauthenticated", id: auth.Identity{}, file: pngFile("a.png"), kind: common.ErrorUnauthenticated, msg: common.MsgUnauthenticated},
		{name: "no file", id: alice, file: nil, kind: common.ErrorValidation, msg: common.MsgNoFile},
		{
			name: "not an image",
			id:   alice,
			file: &UploadFile{Name: "a.png", Size: 11, Content: strings.NewReader("hello world")},
			kind: common.ErrorValidation,
			msg:  common.MsgNoFile,
		},
		{
			name: "too large",
			id:   alice,
			file: &UploadFile{Name: "a.png", Size: 2048, Content: bytes.NewReader(pngHeader)},
			kind: common.ErrorValidation,
			msg:  common.MsgFileTooLarge,
		},
		{name: "old path outside images", id: alice, file: pngFile("a.png"), oldPath: "../server.go", kind: common.ErrorForbidden, msg: common.MsgInvalidFilePath},
		{name: "store failure", id: alice, file: pngFile("a.png"), saveErr: errors.New("disk full"), kind: common.ErrorStorage, msg: common.MsgStorageFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeImageStore()
			store.saveErr = tt.saveErr
			s := newImageService(store)

			_, err := s.Upload(context.Background(), tt.id, tt.file, tt.oldPath)
			assert.ErrorIs(t, err, tt.kind)
			assert.EqualError(t, err, tt.msg)
			assert.Empty(t, store.removed)
		})
	}
}

func TestUpload_AcceptsJPEG(t *testing.T) {
	store := newFakeImageStore()
	s := newImageService(store)

	jpeg := []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01")
	path, err := s.Upload(context.Background(), alice, &UploadFile{Name: "cat.jpeg", Size: int64(len(jpeg)), Content: bytes.NewReader(jpeg)}, "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "-cat.jpg"), path)
}

func TestUpload_KeepsImageOfAnotherUsersPost(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture(t)
	owner, _ := register(t, f.users, "a@x.com", "Alice")
	other, _ := register(t, f.users, "b@x.com", "Bob")

	p, err := f.posts.Create(ctx, owner, PostInput{Title: "Hello World", Content: "This is content", ImageURL: ptr("images/alice.png")})
	require.NoError(t, err)

	core, logs := observer.New(zap.WarnLevel)
	s := NewImageService(f.m, f.images, logging.NewZapLogger(zap.New(core)), 1024)

	for _, oldPath := range []string{p.ImageURL, "../images/alice.png", "./images/alice.png"} {
		_, err = s.Upload(ctx, other, pngFile("b.png"), oldPath)
		require.NoError(t, err)
	}
	assert.Empty(t, f.images.removed, "another user's image must survive")
	assert.Len(t, logs.FilterMessage("image cleanup skipped").All(), 3)

	_, err = s.Upload(ctx, owner, pngFile("c.png"), p.ImageURL)
	require.NoError(t, err)
	assert.Equal(t, []string{"images/alice.png"}, f.images.removed, "the owner may replace their own image")
}
