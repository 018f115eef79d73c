package posts

import (
	"context"

	"github.com/dmitrijs2005/gopherblog/internal/server/models"
)

// Repository stores posts. Reads fill Post.Creator with the author.
type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// List returns posts newest first.
	List(ctx context.Context, offset, limit int) ([]*models.Post, error)
	Count(ctx context.Context) (int, error)
	// ListByUser returns the posts owned by userID in the order they were added.
	ListByUser(ctx context.Context, userID string) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	// ImageInUse reports whether a post not created by exceptCreatorID
	// references imageURL. An empty exceptCreatorID matches every post.
	ImageInUse(ctx context.Context, imageURL, exceptCreatorID string) (bool, error)
}
