// Package memory keeps users and posts in process memory. It backs the
// "memory" storage backend used for local runs and transport tests.
package memory

import (
	"maps"
	"sync"

	"github.com/dmitrijs2005/gopherblog/internal/server/models"
)

type postRecord struct {
	post models.Post
	seq  int64
}

// State is an opaque copy of the store contents.
type State struct {
	users     map[string]models.User
	emails    map[string]string
	posts     map[string]postRecord
	userPosts map[string][]string
	seq       int64
}

// Store holds the shared state behind UsersRepository and PostsRepository.
type Store struct {
	mu sync.RWMutex
	st State
}

func NewStore() *Store {
	return &Store{st: State{
		users:     map[string]models.User{},
		emails:    map[string]string{},
		posts:     map[string]postRecord{},
		userPosts: map[string][]string{},
	}}
}

func (s *Store) Users() *UsersRepository {
	return &UsersRepository{s: s}
}

func (s *Store) Posts() *PostsRepository {
	return &PostsRepository{s: s}
}

// Snapshot returns a deep copy of the current State.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	up := make(map[string][]string, len(s.st.userPosts))
	for k, v := range s.st.userPosts {
		up[k] = append([]string(nil), v...)
	}
	return State{
		users:     maps.Clone(s.st.users),
		emails:    maps.Clone(s.st.emails),
		posts:     maps.Clone(s.st.posts),
		userPosts: up,
		seq:       s.st.seq,
	}
}

func (s *Store) Restore(st State) {
	s.mu.Lock()
	s.st = st
	s.mu.Unlock()
}
