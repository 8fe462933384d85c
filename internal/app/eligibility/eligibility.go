// Package eligibility resolves which self-reported eligibility answers are
// offerable for a user group and validates a chosen answer.
package eligibility

import (
	"fmt"
	"strings"

	"github.com/osot/membership-api/internal/domain"
)

var optionsByGroup = map[domain.UserGroup][]domain.Eligibility{
	domain.UserGroupOT: {
		domain.EligibilityNone,
		domain.EligibilityOTPractising,
		domain.EligibilityOTNonPractising,
		domain.EligibilityRetired,
		domain.EligibilityOnParentalLeave,
	},
	domain.UserGroupOTA: {
		domain.EligibilityNone,
		domain.EligibilityOTAPractising,
		domain.EligibilityOTANonPractising,
		domain.EligibilityRetired,
		domain.EligibilityOnParentalLeave,
	},
}

// Options returns the eligibility answers offerable to the given user group.
// Groups whose category does not depend on eligibility get an empty set.
// The admin-granted life-member answer is never offered.
func Options(g domain.UserGroup) []domain.Eligibility {
	opts, ok := optionsByGroup[g]
	if !ok {
		return []domain.Eligibility{}
	}
	out := make([]domain.Eligibility, len(opts))
	copy(out, opts)
	return out
}

// Required reports whether the group's category determination needs an
// eligibility answer.
func Required(g domain.UserGroup) bool {
	return g == domain.UserGroupOT || g == domain.UserGroupOTA
}

// AffiliateOptions returns the affiliate tier answers.
func AffiliateOptions() []domain.AffiliateEligibility {
	return []domain.AffiliateEligibility{
		domain.AffiliateEligibilityPrimary,
		domain.AffiliateEligibilityPremium,
	}
}

// ValidateChoice checks a chosen answer against the offerable set for the
// group. For groups where eligibility is not required, any answer passes (the
// determination table ignores it).
func ValidateChoice(g domain.UserGroup, e domain.Eligibility) error {
	if !Required(g) {
		return nil
	}
	opts := optionsByGroup[g]
	for _, o := range opts {
		if o == e {
			return nil
		}
	}
	allowed := make([]string, 0, len(opts))
	for _, o := range opts {
		allowed = append(allowed, fmt.Sprintf("%d", int(o)))
	}
	return fmt.Errorf("eligibility %d is not valid for user group %q (allowed: %s)",
		int(e), g.String(), strings.Join(allowed, ", "))
}
