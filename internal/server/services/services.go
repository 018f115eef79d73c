// Package services contains the blog's use cases. Every method receives the
// caller's auth.Identity explicitly and returns *common.AppError values that
// the transport can render without further mapping.
package services

import (
	"context"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/dmitrijs2005/gopherblog/internal/logging"
	"github.com/dmitrijs2005/gopherblog/internal/server/auth"
	"github.com/dmitrijs2005/gopherblog/internal/server/images"
	"github.com/dmitrijs2005/gopherblog/internal/server/repositories/repomanager"
)

func requireAuth(id auth.Identity) error {
	if !id.Authenticated || id.UserID == "" {
		return common.Unauthenticated(common.MsgUnauthenticated)
	}
	return nil
}

// storageFailure logs err and hides it behind a generic storage error.
func storageFailure(ctx context.Context, logger logging.Logger, op string, err error) error {
	logger.Error(ctx, "storage failure", "op", op, "error", err)
	return common.Storage(err)
}

// removeImage deletes the stored image at path unless a post created by
// someone other than ownerID still references it. An empty ownerID keeps
// the image while any post references it. Nothing here fails the caller.
func removeImage(ctx context.Context, m repomanager.RepositoryManager, store images.Store, logger logging.Logger, path, ownerID string) {
	used, err := m.Posts().ImageInUse(ctx, path, ownerID)
	if err != nil {
		logger.Warn(ctx, "image cleanup skipped", "path", path, "error", err)
		return
	}
	if used {
		logger.Warn(ctx, "image cleanup skipped", "path", path, "reason", "referenced by another post")
		return
	}
	if err := store.Remove(ctx, path); err != nil {
		logger.Warn(ctx, "image cleanup failed", "path", path, "error", err)
	}
}
