package affiliaterepo

import (
	"context"
	"errors"

	"github.com/osot/membership-api/internal/domain"
)

// ErrNotFound indicates the requested affiliate does not exist.
var ErrNotFound = errors.New("affiliate not found")

// Affiliate is the snapshot shape the rules engine needs from the platform's
// affiliate (organization) table.
type Affiliate struct {
	ID         domain.AffiliateID
	BusinessID string
	Subject    domain.SubjectID

	Status       domain.AccountStatus
	ActiveMember bool
}

// Repository provides read access to persisted affiliates.
type Repository interface {
	GetBySubject(ctx context.Context, subject domain.SubjectID) (Affiliate, error)
	GetByBusinessID(ctx context.Context, businessID string) (Affiliate, error)
}
