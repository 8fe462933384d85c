package domain

// Eligibility is the self-reported answer an account user gives during
// registration. Combined with the user group it determines the category.
//
// EligibilityLifeMember (Q7) is admin-granted: it is accepted by the
// determination table but never offered through the options endpoint.
type Eligibility int

const (
	EligibilityNone              Eligibility = 0
	EligibilityOTPractising      Eligibility = 1
	EligibilityOTNonPractising   Eligibility = 2
	EligibilityOTAPractising     Eligibility = 3
	EligibilityOTANonPractising  Eligibility = 4
	EligibilityRetired           Eligibility = 5
	EligibilityOnParentalLeave   Eligibility = 6
	EligibilityLifeMember        Eligibility = 7
)

var eligibilityNames = map[Eligibility]string{
	EligibilityNone:             "None of the above",
	EligibilityOTPractising:     "I am an OT practising in Ontario",
	EligibilityOTNonPractising:  "I am an OT not currently practising",
	EligibilityOTAPractising:    "I am an OTA practising in Ontario",
	EligibilityOTANonPractising: "I am an OTA not currently practising",
	EligibilityRetired:          "I am retired",
	EligibilityOnParentalLeave:  "I am on parental leave",
	EligibilityLifeMember:       "Life member",
}

func (e Eligibility) Valid() bool {
	_, ok := eligibilityNames[e]
	return ok
}

func (e Eligibility) String() string {
	if s, ok := eligibilityNames[e]; ok {
		return s
	}
	return "Unknown"
}

// AffiliateEligibility is the affiliate counterpart of Eligibility. Affiliates
// answer a single question selecting their tier.
type AffiliateEligibility int

const (
	AffiliateEligibilityPrimary AffiliateEligibility = 1
	AffiliateEligibilityPremium AffiliateEligibility = 2
)

func (e AffiliateEligibility) Valid() bool {
	return e == AffiliateEligibilityPrimary || e == AffiliateEligibilityPremium
}

func (e AffiliateEligibility) String() string {
	switch e {
	case AffiliateEligibilityPrimary:
		return "Affiliate Primary"
	case AffiliateEligibilityPremium:
		return "Affiliate Premium"
	}
	return "Unknown"
}

// ParentalLeaveExpected is the expected leave duration selected alongside a
// parental-leave eligibility answer. Each option is usable at most once per
// user lifetime, across all membership years.
type ParentalLeaveExpected int

const (
	ParentalLeaveFullYear  ParentalLeaveExpected = 1
	ParentalLeaveSixMonths ParentalLeaveExpected = 2
)

// AllParentalLeaveOptions lists every selectable leave duration, in wire-value order.
var AllParentalLeaveOptions = []ParentalLeaveExpected{ParentalLeaveFullYear, ParentalLeaveSixMonths}

func (p ParentalLeaveExpected) Valid() bool {
	return p == ParentalLeaveFullYear || p == ParentalLeaveSixMonths
}

func (p ParentalLeaveExpected) String() string {
	switch p {
	case ParentalLeaveFullYear:
		return "Full Year"
	case ParentalLeaveSixMonths:
		return "Six Months"
	}
	return "Unknown"
}
