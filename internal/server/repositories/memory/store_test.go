package memory

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/dmitrijs2005/gopherblog/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, s *Store, email string) *models.User {
	t.Helper()
	u, err := s.Users().Create(context.Background(), &models.User{Email: email, PasswordHash: "hash", Name: "Alice", Status: models.DefaultStatus})
	require.NoError(t, err)
	return u
}

func TestUsers_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := seedUser(t, s, "alice@example.com")

	assert.NotEmpty(t, u.ID)

	byEmail, err := s.Users().GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	exists, err := s.Users().ExistsByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = s.Users().Create(ctx, &models.User{Email: "alice@example.com"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = s.Users().GetByID(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUsers_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := seedUser(t, s, "alice@example.com")

	got, err := s.Users().UpdateStatus(ctx, u.ID, "writing")
	require.NoError(t, err)
	assert.Equal(t, "writing", got.Status)

	_, err = s.Users().UpdateStatus(ctx, "ghost", "x")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPosts_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := seedUser(t, s, "alice@example.com")

	var ids []string
	for _, title := range []string{"first", "second", "third"} {
		p, err := s.Posts().Create(ctx, &models.Post{Title: title, Content: "content", ImageURL: "images/x.png", CreatorID: u.ID})
		require.NoError(t, err)
		require.NoError(t, s.Users().AddPost(ctx, u.ID, p.ID))
		ids = append(ids, p.ID)
	}

	page, err := s.Posts().List(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)
	assert.Equal(t, "Alice", page[0].Creator.Name)
	assert.Empty(t, page[0].Creator.PasswordHash)

	page, err = s.Posts().List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[0], page[0].ID)

	n, err := s.Posts().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	owned, err := s.Posts().ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, owned, 3)
	assert.Equal(t, ids[0], owned[0].ID)
}

func TestPosts_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := seedUser(t, s, "alice@example.com")

	p, err := s.Posts().Create(ctx, &models.Post{Title: "first", Content: "content", ImageURL: "images/x.png", CreatorID: u.ID})
	require.NoError(t, err)

	_, err = s.Posts().Update(ctx, &models.Post{ID: p.ID, Title: "renamed", Content: "content", ImageURL: "images/y.png", CreatorID: "someone-else"})
	require.NoError(t, err)

	got, err := s.Posts().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, "images/y.png", got.ImageURL)
	assert.Equal(t, u.ID, got.CreatorID)

	require.NoError(t, s.Posts().Delete(ctx, p.ID))
	assert.ErrorIs(t, s.Posts().Delete(ctx, p.ID), common.ErrorNotFound)
	_, err = s.Posts().GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPosts_CreateUnknownCreator(t *testing.T) {
	_, err := NewStore().Posts().Create(context.Background(), &models.Post{CreatorID: "ghost"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSnapshotRestore(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := seedUser(t, s, "alice@example.com")

	snap := s.Snapshot()
	p, err := s.Posts().Create(ctx, &models.Post{Title: "first", CreatorID: u.ID})
	require.NoError(t, err)
	require.NoError(t, s.Users().AddPost(ctx, u.ID, p.ID))

	s.Restore(snap)

	_, err = s.Posts().GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	owned, err := s.Posts().ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, owned)
}

func TestPosts_ImageInUse(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := seedUser(t, s, "alice@example.com")

	_, err := s.Posts().Create(ctx, &models.Post{Title: "t", Content: "c", ImageURL: "images/a.png", CreatorID: u.ID})
	require.NoError(t, err)

	tests := []struct {
		name   string
		image  string
		except string
		want   bool
	}{
		{"any post", "images/a.png", "", true},
		{"other creator", "images/a.png", "someone-else", true},
		{"only own posts", "images/a.png", u.ID, false},
		{"unused image", "images/b.png", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Posts().ImageInUse(ctx, tt.image, tt.except)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
