package accountrepo

import (
	"context"
	"sync"

	"github.com/osot/membership-api/internal/domain"
	"github.com/osot/membership-api/internal/ports/out/accountrepo"
)

// Repo is an in-memory implementation of accountrepo.Repository.
// It is seeded directly (Put) and is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID    map[domain.AccountID]accountrepo.Account
	idBySub map[domain.SubjectID]domain.AccountID
	idByBiz map[string]domain.AccountID
}

func NewRepo() *Repo {
	return &Repo{
		byID:    make(map[domain.AccountID]accountrepo.Account),
		idBySub: make(map[domain.SubjectID]domain.AccountID),
		idByBiz: make(map[string]domain.AccountID),
	}
}

// Put inserts or replaces an account snapshot.
func (r *Repo) Put(a accountrepo.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[a.ID] = a
	if a.Subject != "" {
		r.idBySub[a.Subject] = a.ID
	}
	if a.BusinessID != "" {
		r.idByBiz[a.BusinessID] = a.ID
	}
}

func (r *Repo) GetBySubject(ctx context.Context, subject domain.SubjectID) (accountrepo.Account, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idBySub[subject]
	if !ok {
		return accountrepo.Account{}, accountrepo.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *Repo) GetByBusinessID(ctx context.Context, businessID string) (accountrepo.Account, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idByBiz[businessID]
	if !ok {
		return accountrepo.Account{}, accountrepo.ErrNotFound
	}
	return r.byID[id], nil
}
