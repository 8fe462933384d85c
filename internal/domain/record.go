package domain

import "time"

// MembershipCategory is the domain representation of a membership-category
// record. Exactly one of AccountID/AffiliateID is set; Category, UserGroup and
// MembershipYear are derived at creation and immutable thereafter.
type MembershipCategory struct {
	ID         CategoryID
	BusinessID string // autonumber, "osot-cat-NNNNNNN"

	AccountID   *AccountID
	AffiliateID *AffiliateID

	MembershipYear string

	Category  Category
	UserGroup UserGroup

	Eligibility          *Eligibility
	EligibilityAffiliate *AffiliateEligibility

	ParentalLeaveFrom     *time.Time
	ParentalLeaveTo       *time.Time
	ParentalLeaveExpected *ParentalLeaveExpected
	RetirementStart       *time.Time

	Privilege      Privilege
	AccessModifier AccessModifier

	// Platform-assigned, immutable from the application's perspective.
	CreatedOn  time.Time
	ModifiedOn time.Time
	OwnerID    string
}

// UserRef reconstructs the owning user reference from the record.
func (m MembershipCategory) UserRef() UserRef {
	if m.AffiliateID != nil {
		return UserRef{Type: UserTypeAffiliate, AffiliateID: *m.AffiliateID}
	}
	var id AccountID
	if m.AccountID != nil {
		id = *m.AccountID
	}
	return UserRef{Type: UserTypeAccount, AccountID: id}
}
