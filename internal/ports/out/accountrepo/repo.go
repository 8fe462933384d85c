package accountrepo

import (
	"context"

	"github.com/osot/membership-api/internal/domain"
)

// Account is the snapshot shape the rules engine needs from the platform's
// account table. It is an internal record, not an HTTP DTO.
type Account struct {
	ID         domain.AccountID
	BusinessID string
	Subject    domain.SubjectID

	AccountGroup domain.AccountGroup
	Status       domain.AccountStatus

	// ActiveMember is platform-owned: true while the account holds a current
	// membership. Registration is a one-time transition from non-member to
	// member, so active members cannot re-register.
	ActiveMember bool
}

// Repository provides read access to persisted accounts.
type Repository interface {
	GetBySubject(ctx context.Context, subject domain.SubjectID) (Account, error)
	GetByBusinessID(ctx context.Context, businessID string) (Account, error)
}
