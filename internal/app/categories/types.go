package categories

import (
	"time"

	"github.com/osot/membership-api/internal/domain"
)

// CreateInput is the caller-supplied portion of a registration request.
// Eligibility and EligibilityAffiliate are mutually exclusive: the former is
// for account users, the latter for affiliates.
type CreateInput struct {
	Eligibility          *domain.Eligibility
	EligibilityAffiliate *domain.AffiliateEligibility

	ParentalLeaveFrom     *time.Time
	ParentalLeaveTo       *time.Time
	ParentalLeaveExpected *domain.ParentalLeaveExpected
	RetirementStart       *time.Time
}

// Determination summarizes how the category was derived. It is returned next
// to the created record so clients can render the outcome without re-deriving.
type Determination struct {
	UserGroup          domain.UserGroup
	Category           domain.Category
	RequiresEligibility bool
	RequiredDateFields []string
}

// Created is the response of a successful registration.
type Created struct {
	Record        domain.MembershipCategory
	Determination Determination
}

// EligibilityOption pairs an offerable answer with its display label.
type EligibilityOption struct {
	Value domain.Eligibility
	Label string
}

// AffiliateEligibilityOption pairs an affiliate tier with its display label.
type AffiliateEligibilityOption struct {
	Value domain.AffiliateEligibility
	Label string
}

// EligibilityOptions is the payload of the eligibility-options endpoint.
type EligibilityOptions struct {
	UserGroup domain.UserGroup
	Required  bool

	// Options is populated for account users, AffiliateOptions for affiliates.
	Options          []EligibilityOption
	AffiliateOptions []AffiliateEligibilityOption
}
