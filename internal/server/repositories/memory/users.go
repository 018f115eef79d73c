package memory

import (
	"context"
	"slices"
	"time"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/dmitrijs2005/gopherblog/internal/server/models"
	"github.com/google/uuid"
)

type UsersRepository struct {
	s *Store
}

func (r *UsersRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.st.emails[user.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}

	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.s.st.users[user.ID] = *user
	r.s.st.emails[user.Email] = user.ID
	return user, nil
}

func (r *UsersRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.st.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.st.emails[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u := r.s.st.users[id]
	return &u, nil
}

func (r *UsersRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.st.emails[email]
	return ok, nil
}

func (r *UsersRepository) UpdateStatus(ctx context.Context, id string, status string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.st.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.Status = status
	u.UpdatedAt = time.Now().UTC()
	r.s.st.users[id] = u
	return &u, nil
}

func (r *UsersRepository) AddPost(ctx context.Context, userID string, postID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.st.users[userID]; !ok {
		return common.ErrorNotFound
	}
	r.s.st.userPosts[userID] = append(r.s.st.userPosts[userID], postID)
	return nil
}

func (r *UsersRepository) RemovePost(ctx context.Context, userID string, postID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.st.userPosts[userID] = slices.DeleteFunc(r.s.st.userPosts[userID], func(id string) bool {
		return id == postID
	})
	return nil
}
