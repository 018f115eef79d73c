package users

import (
	"context"

	"github.com/dmitrijs2005/gopherblog/internal/server/models"
)

// Repository stores users and the ordered list of posts each user owns.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status string) (*models.User, error)
	AddPost(ctx context.Context, userID string, postID string) error
	RemovePost(ctx context.Context, userID string, postID string) error
}
