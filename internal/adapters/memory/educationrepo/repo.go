package educationrepo

import (
	"context"
	"sync"

	"github.com/osot/membership-api/internal/domain"
	"github.com/osot/membership-api/internal/ports/out/educationrepo"
)

// Repo is an in-memory implementation of educationrepo.Repository.
// Each account holds at most one latest record per table; Put replaces it.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	ot  map[domain.AccountID]educationrepo.Education
	ota map[domain.AccountID]educationrepo.Education
}

func NewRepo() *Repo {
	return &Repo{
		ot:  make(map[domain.AccountID]educationrepo.Education),
		ota: make(map[domain.AccountID]educationrepo.Education),
	}
}

func (r *Repo) PutOT(e educationrepo.Education) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ot[e.AccountID] = e
}

func (r *Repo) PutOTA(e educationrepo.Education) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ota[e.AccountID] = e
}

func (r *Repo) LatestOT(ctx context.Context, accountID domain.AccountID) (educationrepo.Education, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.ot[accountID]
	if !ok {
		return educationrepo.Education{}, educationrepo.ErrNotFound
	}
	return e, nil
}

func (r *Repo) LatestOTA(ctx context.Context, accountID domain.AccountID) (educationrepo.Education, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.ota[accountID]
	if !ok {
		return educationrepo.Education{}, educationrepo.ErrNotFound
	}
	return e, nil
}
