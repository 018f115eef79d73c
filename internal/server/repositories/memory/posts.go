package memory

import (
	"context"
	"slices"
	"time"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/dmitrijs2005/gopherblog/internal/server/models"
	"github.com/google/uuid"
)

type PostsRepository struct {
	s *Store
}

func (r *PostsRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.st.users[post.CreatorID]; !ok {
		return nil, common.ErrorNotFound
	}

	now := time.Now().UTC()
	post.ID = uuid.NewString()
	post.CreatedAt = now
	post.UpdatedAt = now

	r.s.st.seq++
	stored := *post
	stored.Creator = nil
	r.s.st.posts[post.ID] = postRecord{post: stored, seq: r.s.st.seq}
	return post, nil
}

func (r *PostsRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.st.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.withCreator(rec.post), nil
}

func (r *PostsRepository) List(ctx context.Context, offset, limit int) ([]*models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	records := make([]postRecord, 0, len(r.s.st.posts))
	for _, rec := range r.s.st.posts {
		records = append(records, rec)
	}
	slices.SortFunc(records, func(a, b postRecord) int {
		if c := b.post.CreatedAt.Compare(a.post.CreatedAt); c != 0 {
			return c
		}
		return int(b.seq - a.seq)
	})

	result := []*models.Post{}
	for i := offset; i < len(records) && len(result) < limit; i++ {
		result = append(result, r.withCreator(records[i].post))
	}
	return result, nil
}

func (r *PostsRepository) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return len(r.s.st.posts), nil
}

func (r *PostsRepository) ListByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []*models.Post{}
	for _, id := range r.s.st.userPosts[userID] {
		if rec, ok := r.s.st.posts[id]; ok {
			result = append(result, r.withCreator(rec.post))
		}
	}
	return result, nil
}

func (r *PostsRepository) Update(ctx context.Context, post *models.Post) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.st.posts[post.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	rec.post.Title = post.Title
	rec.post.Content = post.Content
	rec.post.ImageURL = post.ImageURL
	rec.post.UpdatedAt = time.Now().UTC()
	r.s.st.posts[post.ID] = rec

	post.UpdatedAt = rec.post.UpdatedAt
	return post, nil
}

func (r *PostsRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.st.posts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.st.posts, id)
	return nil
}

func (r *PostsRepository) ImageInUse(ctx context.Context, imageURL, exceptCreatorID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rec := range r.s.st.posts {
		if rec.post.ImageURL == imageURL && (exceptCreatorID == "" || rec.post.CreatorID != exceptCreatorID) {
			return true, nil
		}
	}
	return false, nil
}

// withCreator must be called with the read lock held.
func (r *PostsRepository) withCreator(p models.Post) *models.Post {
	if u, ok := r.s.st.users[p.CreatorID]; ok {
		u.PasswordHash = ""
		p.Creator = &u
	}
	return &p
}
