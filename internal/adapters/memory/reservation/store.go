package reservation

import (
	"context"
	"sync"

	"github.com/osot/membership-api/internal/ports/out/reservation"
)

type key struct {
	scope   reservation.Scope
	userKey string
	key     string
}

// Store is an in-memory implementation of reservation.Store.
// Reserve is atomic under the store mutex, matching the conditional-write
// semantics of the Postgres implementation in-process.
type Store struct {
	mu   sync.Mutex
	held map[key]bool
}

func NewStore() *Store {
	return &Store{held: make(map[key]bool)}
}

func (s *Store) Reserve(ctx context.Context, scope reservation.Scope, userKey, k string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	kk := key{scope: scope, userKey: userKey, key: k}
	if s.held[kk] {
		return reservation.ErrAlreadyReserved
	}
	s.held[kk] = true
	return nil
}

func (s *Store) Release(ctx context.Context, scope reservation.Scope, userKey, k string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.held, key{scope: scope, userKey: userKey, key: k})
	return nil
}
