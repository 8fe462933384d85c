package categoryrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/osot/membership-api/internal/domain"
	"github.com/osot/membership-api/internal/ports/out/categoryrepo"
)

// Repo is an in-memory implementation of categoryrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID map[domain.CategoryID]categoryrepo.Record
	seq  int
}

func NewRepo() *Repo {
	return &Repo{
		byID: make(map[domain.CategoryID]categoryrepo.Record),
	}
}

func (r *Repo) Create(ctx context.Context, rec categoryrepo.Record) (categoryrepo.Record, error) {
	_ = ctx
	if rec.ID == "" {
		return categoryrepo.Record{}, categoryrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[rec.ID]; ok {
		return categoryrepo.Record{}, categoryrepo.ErrAlreadyExists
	}

	r.seq++
	stored := cloneRecord(rec)
	if stored.BusinessID == "" {
		stored.BusinessID = fmt.Sprintf("osot-cat-%07d", r.seq)
	}
	now := time.Now().UTC()
	if stored.CreatedOn.IsZero() {
		stored.CreatedOn = now
	}
	if stored.ModifiedOn.IsZero() {
		stored.ModifiedOn = stored.CreatedOn
	}

	r.byID[stored.ID] = stored
	return cloneRecord(stored), nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.CategoryID) (categoryrepo.Record, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id]
	if !ok {
		return categoryrepo.Record{}, categoryrepo.ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (r *Repo) ListByUser(ctx context.Context, user domain.UserRef) ([]categoryrepo.Record, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]categoryrepo.Record, 0)
	for _, rec := range r.byID {
		if recordBelongsTo(rec, user) {
			out = append(out, cloneRecord(rec))
		}
	}
	sortRecords(out)
	return out, nil
}

func (r *Repo) ExistsForYear(ctx context.Context, user domain.UserRef, year string) (bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.byID {
		if rec.MembershipYear == year && recordBelongsTo(rec, user) {
			return true, nil
		}
	}
	return false, nil
}

func (r *Repo) ParentalLeaveValuesUsed(ctx context.Context, user domain.UserRef) ([]domain.ParentalLeaveExpected, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[domain.ParentalLeaveExpected]bool)
	out := make([]domain.ParentalLeaveExpected, 0)
	for _, rec := range r.byID {
		if rec.ParentalLeaveExpected == nil || !recordBelongsTo(rec, user) {
			continue
		}
		v := *rec.ParentalLeaveExpected
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.CategoryID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return categoryrepo.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func recordBelongsTo(rec categoryrepo.Record, user domain.UserRef) bool {
	if user.Type == domain.UserTypeAffiliate {
		return rec.AffiliateID != nil && *rec.AffiliateID == user.AffiliateID
	}
	return rec.AccountID != nil && *rec.AccountID == user.AccountID
}

func sortRecords(recs []categoryrepo.Record) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].MembershipYear != recs[j].MembershipYear {
			return recs[i].MembershipYear > recs[j].MembershipYear
		}
		if !recs[i].CreatedOn.Equal(recs[j].CreatedOn) {
			return recs[i].CreatedOn.After(recs[j].CreatedOn)
		}
		return recs[i].ID < recs[j].ID
	})
}

func cloneRecord(rec categoryrepo.Record) categoryrepo.Record {
	out := rec
	if rec.AccountID != nil {
		v := *rec.AccountID
		out.AccountID = &v
	}
	if rec.AffiliateID != nil {
		v := *rec.AffiliateID
		out.AffiliateID = &v
	}
	if rec.Eligibility != nil {
		v := *rec.Eligibility
		out.Eligibility = &v
	}
	if rec.EligibilityAffiliate != nil {
		v := *rec.EligibilityAffiliate
		out.EligibilityAffiliate = &v
	}
	if rec.ParentalLeaveFrom != nil {
		v := *rec.ParentalLeaveFrom
		out.ParentalLeaveFrom = &v
	}
	if rec.ParentalLeaveTo != nil {
		v := *rec.ParentalLeaveTo
		out.ParentalLeaveTo = &v
	}
	if rec.ParentalLeaveExpected != nil {
		v := *rec.ParentalLeaveExpected
		out.ParentalLeaveExpected = &v
	}
	if rec.RetirementStart != nil {
		v := *rec.RetirementStart
		out.RetirementStart = &v
	}
	return out
}
