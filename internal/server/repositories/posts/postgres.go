// Package posts provides storage for blog posts.
package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/dmitrijs2005/gopherblog/internal/dbx"
	"github.com/dmitrijs2005/gopherblog/internal/server/models"
)

const selectPost = `SELECT p.id, p.title, p.content, p.image_url, p.creator_id, p.created_at, p.updated_at,
		u.id, u.email, u.name, u.status, u.created_at, u.updated_at
		FROM posts p JOIN users u ON u.id = p.creator_id`

// PostgresRepository implements post storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query :=
		`INSERT INTO posts (title, content, image_url, creator_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		post.Title, post.Content, post.ImageURL, post.CreatorID).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := selectPost + ` WHERE p.id = $1`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}

func (r *PostgresRepository) List(ctx context.Context, offset, limit int) ([]*models.Post, error) {
	query := selectPost + ` ORDER BY p.created_at DESC, p.id DESC OFFSET $1 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select posts: %w", err)
	}
	return collect(rows)
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	query := selectPost + ` JOIN user_posts up ON up.post_id = p.id WHERE up.user_id = $1 ORDER BY up.position`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select user posts: %w", err)
	}
	return collect(rows)
}

// Update overwrites title, content and image. CreatorID is never changed.
func (r *PostgresRepository) Update(ctx context.Context, post *models.Post) (*models.Post, error) {
	query :=
		`UPDATE posts SET title = $2, content = $3, image_url = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, post.ID, post.Title, post.Content, post.ImageURL).Scan(&post.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ImageInUse(ctx context.Context, imageURL, exceptCreatorID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM posts WHERE image_url = $1)`
	args := []any{imageURL}
	if exceptCreatorID != "" {
		query = `SELECT EXISTS (SELECT 1 FROM posts WHERE image_url = $1 AND creator_id <> $2)`
		args = append(args, exceptCreatorID)
	}

	var used bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&used); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return used, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (*models.Post, error) {
	p := &models.Post{Creator: &models.User{}}
	err := s.Scan(&p.ID, &p.Title, &p.Content, &p.ImageURL, &p.CreatorID, &p.CreatedAt, &p.UpdatedAt,
		&p.Creator.ID, &p.Creator.Email, &p.Creator.Name, &p.Creator.Status, &p.Creator.CreatedAt, &p.Creator.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func collect(rows *sql.Rows) ([]*models.Post, error) {
	defer rows.Close()

	result := []*models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
