package categoryrepo

import (
	"context"
	"time"

	"github.com/osot/membership-api/internal/domain"
)

// Record is the persistence shape used by the membership-category repository.
// It mirrors the platform table; the app layer maps it to the domain type.
type Record struct {
	ID         domain.CategoryID
	BusinessID string

	AccountID   *domain.AccountID
	AffiliateID *domain.AffiliateID

	MembershipYear string

	Category  domain.Category
	UserGroup domain.UserGroup

	Eligibility          *domain.Eligibility
	EligibilityAffiliate *domain.AffiliateEligibility

	ParentalLeaveFrom     *time.Time
	ParentalLeaveTo       *time.Time
	ParentalLeaveExpected *domain.ParentalLeaveExpected
	RetirementStart       *time.Time

	Privilege      domain.Privilege
	AccessModifier domain.AccessModifier

	CreatedOn  time.Time
	ModifiedOn time.Time
	OwnerID    string
}

// Repository provides access to persisted membership-category records.
//
// Result ordering expectations:
// - ListByUser returns records ordered by MembershipYear descending, then
//   CreatedOn descending, to keep behavior deterministic across backends.
type Repository interface {
	// Create persists a new record. The implementation assigns BusinessID
	// (platform autonumber) and CreatedOn/ModifiedOn when they are zero.
	Create(ctx context.Context, rec Record) (Record, error)

	GetByID(ctx context.Context, id domain.CategoryID) (Record, error)

	ListByUser(ctx context.Context, user domain.UserRef) ([]Record, error)

	// ExistsForYear reports whether the user already holds a record for the
	// given membership year.
	ExistsForYear(ctx context.Context, user domain.UserRef, year string) (bool, error)

	// ParentalLeaveValuesUsed returns the distinct ParentalLeaveExpected
	// values present on any of the user's records, across all years.
	ParentalLeaveValuesUsed(ctx context.Context, user domain.UserRef) ([]domain.ParentalLeaveExpected, error)

	Delete(ctx context.Context, id domain.CategoryID) error
}
