package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/dmitrijs2005/gopherblog/internal/logging"
	"github.com/dmitrijs2005/gopherblog/internal/server/auth"
	"github.com/dmitrijs2005/gopherblog/internal/server/images"
	"github.com/dmitrijs2005/gopherblog/internal/server/models"
	"github.com/dmitrijs2005/gopherblog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gopherblog/internal/server/validation"
	"github.com/google/uuid"
)

// PostInput carries post fields from a create or update request. A nil
// ImageURL on update keeps the current image.
type PostInput struct {
	Title    string
	Content  string
	ImageURL *string
}

// PostPage is one page of the feed.
type PostPage struct {
	Posts   []*models.Post
	Total   int
	HasNext bool
}

type PostService struct {
	repomanager repomanager.RepositoryManager
	images      images.Store
	logger      logging.Logger
	pageSize    int
}

func NewPostService(m repomanager.RepositoryManager, store images.Store, logger logging.Logger, pageSize int) *PostService {
	if pageSize < 1 {
		pageSize = 2
	}
	return &PostService{repomanager: m, images: store, logger: logger, pageSize: pageSize}
}

// List returns the page-th page of posts, newest first. Pages start at 1;
// smaller values are treated as 1. A page past the end is empty.
func (s *PostService) List(ctx context.Context, id auth.Identity, page int) (*PostPage, error) {
	if err := requireAuth(id); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * s.pageSize

	repo := s.repomanager.Posts()

	total, err := repo.Count(ctx)
	if err != nil {
		return nil, storageFailure(ctx, s.logger, "count posts", err)
	}

	posts, err := repo.List(ctx, offset, s.pageSize)
	if err != nil {
		return nil, storageFailure(ctx, s.logger, "list posts", err)
	}

	return &PostPage{Posts: posts, Total: total, HasNext: offset+s.pageSize < total}, nil
}

func (s *PostService) Get(ctx context.Context, id auth.Identity, postID string) (*models.Post, error) {
	if err := requireAuth(id); err != nil {
		return nil, err
	}
	return s.find(ctx, postID)
}

// Create stores a post owned by the caller and appends it to the caller's
// post collection in one transaction.
func (s *PostService) Create(ctx context.Context, id auth.Identity, in PostInput) (*models.Post, error) {
	if err := requireAuth(id); err != nil {
		return nil, err
	}
	if errs := validation.PostInput(in.Title, in.Content, in.ImageURL, true); len(errs) > 0 {
		return nil, common.Validation(common.MsgInvalidPostInput, errs)
	}

	creator, err := s.repomanager.Users().GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(common.MsgUserNotFound)
		}
		return nil, storageFailure(ctx, s.logger, "get creator", err)
	}

	post := &models.Post{
		Title:     strings.TrimSpace(in.Title),
		Content:   strings.TrimSpace(in.Content),
		ImageURL:  images.Canonical(*in.ImageURL),
		CreatorID: creator.ID,
	}

	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		if _, err := tx.Posts().Create(ctx, post); err != nil {
			return err
		}
		return tx.Users().AddPost(ctx, creator.ID, post.ID)
	})
	if err != nil {
		return nil, storageFailure(ctx, s.logger, "create post", err)
	}

	creator.PasswordHash = ""
	post.Creator = creator
	return post, nil
}

// Update replaces title and content of a post owned by the caller, and the
// image when a new one is supplied.
func (s *PostService) Update(ctx context.Context, id auth.Identity, postID string, in PostInput) (*models.Post, error) {
	if err := requireAuth(id); err != nil {
		return nil, err
	}
	if errs := validation.PostInput(in.Title, in.Content, in.ImageURL, false); len(errs) > 0 {
		return nil, common.Validation(common.MsgInvalidPostInput, errs)
	}

	post, err := s.find(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.CreatorID != id.UserID {
		return nil, common.Forbidden(common.MsgNotAuthorized)
	}

	post.Title = strings.TrimSpace(in.Title)
	post.Content = strings.TrimSpace(in.Content)
	if in.ImageURL != nil && strings.TrimSpace(*in.ImageURL) != "" {
		post.ImageURL = images.Canonical(*in.ImageURL)
	}

	updated, err := s.repomanager.Posts().Update(ctx, post)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(common.MsgPostNotFound)
		}
		return nil, storageFailure(ctx, s.logger, "update post", err)
	}
	return updated, nil
}

// Delete removes a post owned by the caller. The reference and the post go
// first, inside one transaction; the image is removed afterwards on a best
// effort basis, and only when no other post still uses it.
func (s *PostService) Delete(ctx context.Context, id auth.Identity, postID string) error {
	if err := requireAuth(id); err != nil {
		return err
	}

	post, err := s.find(ctx, postID)
	if err != nil {
		return err
	}
	if post.CreatorID != id.UserID {
		return common.Forbidden(common.MsgNotAuthorized)
	}

	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		if err := tx.Users().RemovePost(ctx, post.CreatorID, post.ID); err != nil {
			return err
		}
		return tx.Posts().Delete(ctx, post.ID)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NotFound(common.MsgPostNotFound)
		}
		return storageFailure(ctx, s.logger, "delete post", err)
	}

	removeImage(ctx, s.repomanager, s.images, s.logger.With("post_id", post.ID), post.ImageURL, "")
	return nil
}

// find maps malformed ids to NotFound: no post can have them.
func (s *PostService) find(ctx context.Context, postID string) (*models.Post, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return nil, common.NotFound(common.MsgPostNotFound)
	}

	post, err := s.repomanager.Posts().GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(common.MsgPostNotFound)
		}
		return nil, storageFailure(ctx, s.logger, "get post", err)
	}
	return post, nil
}
