package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gopherblog/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gopherblog/internal/server/repositories/posts"
	"github.com/dmitrijs2005/gopherblog/internal/server/repositories/users"
)

// MemoryRepositoryManager serves repositories from a memory.Store.
// Transactions are serialized and rolled back by restoring a snapshot.
type MemoryRepositoryManager struct {
	store *memory.Store
	txMu  *sync.Mutex
	inTx  bool
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{store: memory.NewStore(), txMu: &sync.Mutex{}}
}

func (m *MemoryRepositoryManager) Users() users.Repository {
	return m.store.Users()
}

func (m *MemoryRepositoryManager) Posts() posts.Repository {
	return m.store.Posts()
}

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn TxFunc) (err error) {
	if m.inTx {
		return fn(ctx, m)
	}

	m.txMu.Lock()
	defer m.txMu.Unlock()

	snap := m.store.Snapshot()
	defer func() {
		if p := recover(); p != nil {
			m.store.Restore(snap)
			panic(p)
		}
		if err != nil {
			m.store.Restore(snap)
		}
	}()

	return fn(ctx, &MemoryRepositoryManager{store: m.store, txMu: m.txMu, inTx: true})
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }
func (m *MemoryRepositoryManager) Close() error                        { return nil }
