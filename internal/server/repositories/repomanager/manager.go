package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gopherblog/internal/server/repositories/posts"
	"github.com/dmitrijs2005/gopherblog/internal/server/repositories/users"
)

// TxFunc receives a manager whose repositories share one transaction.
type TxFunc func(ctx context.Context, m RepositoryManager) error

type RepositoryManager interface {
	Users() users.Repository
	Posts() posts.Repository
	// WithTx runs fn atomically: either every write made through the
	// manager passed to fn is kept, or none is.
	WithTx(ctx context.Context, fn TxFunc) error
	RunMigrations(ctx context.Context) error
	Close() error
}
