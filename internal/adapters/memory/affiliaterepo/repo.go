package affiliaterepo

import (
	"context"
	"sync"

	"github.com/osot/membership-api/internal/domain"
	"github.com/osot/membership-api/internal/ports/out/affiliaterepo"
)

// Repo is an in-memory implementation of affiliaterepo.Repository.
// It is seeded directly (Put) and is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID    map[domain.AffiliateID]affiliaterepo.Affiliate
	idBySub map[domain.SubjectID]domain.AffiliateID
	idByBiz map[string]domain.AffiliateID
}

func NewRepo() *Repo {
	return &Repo{
		byID:    make(map[domain.AffiliateID]affiliaterepo.Affiliate),
		idBySub: make(map[domain.SubjectID]domain.AffiliateID),
		idByBiz: make(map[string]domain.AffiliateID),
	}
}

// Put inserts or replaces an affiliate snapshot.
func (r *Repo) Put(a affiliaterepo.Affiliate) {
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

func (r *Repo) GetBySubject(ctx context.Context, subject domain.SubjectID) (affiliaterepo.Affiliate, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idBySub[subject]
	if !ok {
		return affiliaterepo.Affiliate{}, affiliaterepo.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *Repo) GetByBusinessID(ctx context.Context, businessID string) (affiliaterepo.Affiliate, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idByBiz[businessID]
	if !ok {
		return affiliaterepo.Affiliate{}, affiliaterepo.ErrNotFound
	}
	return r.byID[id], nil
}
