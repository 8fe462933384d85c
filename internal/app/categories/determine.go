package categories

import (
	"github.com/osot/membership-api/internal/domain"
)

// The determination mapping is kept as static tables rather than nested
// conditionals so the full (UserGroup, answer) product stays auditable and
// anything outside it fails by construction.

// directCategory holds the groups whose category ignores eligibility.
var directCategory = map[domain.UserGroup]domain.Category{
	domain.UserGroupOTStudent:         domain.CategoryOTStudent,
	domain.UserGroupOTAStudent:        domain.CategoryOTAStudent,
	domain.UserGroupOTStudentNewGrad:  domain.CategoryOTNewGrad,
	domain.UserGroupOTAStudentNewGrad: domain.CategoryOTANewGrad,
	domain.UserGroupVendorAdvertiser:  domain.CategoryAssociate,
	domain.UserGroupOther:             domain.CategoryAssociate,
}

type groupAnswer struct {
	Group  domain.UserGroup
	Answer domain.Eligibility
}

// conditionalCategory maps the eligibility-dependent branches. Note the
// parental-leave answer maps to the non-practising category: leave status is
// tracked via date fields, not a dedicated category value.
var conditionalCategory = map[groupAnswer]domain.Category{
	{domain.UserGroupOT, domain.EligibilityNone}:             domain.CategoryAssociate,
	{domain.UserGroupOT, domain.EligibilityOTPractising}:     domain.CategoryOTPractising,
	{domain.UserGroupOT, domain.EligibilityOTNonPractising}:  domain.CategoryOTNonPractising,
	{domain.UserGroupOT, domain.EligibilityRetired}:          domain.CategoryOTRetired,
	{domain.UserGroupOT, domain.EligibilityOnParentalLeave}:  domain.CategoryOTNonPractising,
	{domain.UserGroupOT, domain.EligibilityLifeMember}:       domain.CategoryOTLife,

	{domain.UserGroupOTA, domain.EligibilityNone}:             domain.CategoryAssociate,
	{domain.UserGroupOTA, domain.EligibilityOTAPractising}:    domain.CategoryOTAPractising,
	{domain.UserGroupOTA, domain.EligibilityOTANonPractising}: domain.CategoryOTANonPractising,
	{domain.UserGroupOTA, domain.EligibilityRetired}:          domain.CategoryOTARetired,
	{domain.UserGroupOTA, domain.EligibilityOnParentalLeave}:  domain.CategoryOTANonPractising,
	{domain.UserGroupOTA, domain.EligibilityLifeMember}:       domain.CategoryOTALife,
}

var affiliateCategory = map[domain.AffiliateEligibility]domain.Category{
	domain.AffiliateEligibilityPrimary: domain.CategoryAffiliatePrimary,
	domain.AffiliateEligibilityPremium: domain.CategoryAffiliatePremium,
}

// Determine maps (user group, eligibility answer) to the final membership
// category. It is total over the tabulated product; any pair outside the
// tables is an error.
func Determine(g domain.UserGroup, elig *domain.Eligibility, affElig *domain.AffiliateEligibility) (domain.Category, error) {
	if c, ok := directCategory[g]; ok {
		return c, nil
	}

	switch g {
	case domain.UserGroupOT, domain.UserGroupOTA:
		if elig == nil {
			return 0, &Error{
				Status:  422,
				Code:    "VALIDATION_ERROR",
				Message: "eligibility is required for this user group",
				Details: map[string]any{"userGroup": g.String()},
			}
		}
		c, ok := conditionalCategory[groupAnswer{g, *elig}]
		if !ok {
			return 0, &Error{
				Status:  422,
				Code:    "VALIDATION_ERROR",
				Message: "eligibility value cannot determine a category for this user group",
				Details: map[string]any{"userGroup": g.String(), "eligibility": int(*elig)},
			}
		}
		return c, nil

	case domain.UserGroupAffiliate:
		if affElig == nil {
			return 0, &Error{
				Status:  422,
				Code:    "VALIDATION_ERROR",
				Message: "affiliate eligibility is required for affiliate users",
			}
		}
		c, ok := affiliateCategory[*affElig]
		if !ok {
			return 0, &Error{
				Status:  422,
				Code:    "VALIDATION_ERROR",
				Message: "affiliate eligibility value cannot determine a category",
				Details: map[string]any{"eligibilityAffiliate": int(*affElig)},
			}
		}
		return c, nil

	default:
		return 0, &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "unknown user group",
			Details: map[string]any{"userGroup": int(g)},
		}
	}
}
