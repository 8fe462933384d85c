package categories

import (
	"time"

	"github.com/osot/membership-api/internal/domain"
)

const (
	fieldParentalLeaveFrom = "parentalLeaveFrom"
	fieldParentalLeaveTo   = "parentalLeaveTo"
	fieldRetirementStart   = "retirementStart"
)

// RequiredDateFields returns the supplementary date fields a given eligibility
// answer requires. Nil eligibility requires none.
func RequiredDateFields(e *domain.Eligibility) []string {
	if e == nil {
		return []string{}
	}
	switch *e {
	case domain.EligibilityOnParentalLeave:
		return []string{fieldParentalLeaveFrom, fieldParentalLeaveTo}
	case domain.EligibilityRetired:
		return []string{fieldRetirementStart}
	default:
		return []string{}
	}
}

// validateDates enforces the supplementary-date rules for a creation request:
// required fields present, leave dates both-or-neither with from strictly
// before to, and no retirement start in the future.
func validateDates(in CreateInput, now time.Time) error {
	for _, f := range RequiredDateFields(in.Eligibility) {
		missing := false
		switch f {
		case fieldParentalLeaveFrom:
			missing = in.ParentalLeaveFrom == nil
		case fieldParentalLeaveTo:
			missing = in.ParentalLeaveTo == nil
		case fieldRetirementStart:
			missing = in.RetirementStart == nil
		}
		if missing {
			return &Error{
				Status:  422,
				Code:    "VALIDATION_ERROR",
				Message: "required date field is missing for the chosen eligibility",
				Details: map[string]any{f: "required"},
			}
		}
	}

	if (in.ParentalLeaveFrom == nil) != (in.ParentalLeaveTo == nil) {
		return &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "parental leave dates must be provided together",
			Details: map[string]any{fieldParentalLeaveFrom: "both-or-neither", fieldParentalLeaveTo: "both-or-neither"},
		}
	}

	if in.ParentalLeaveFrom != nil && in.ParentalLeaveTo != nil {
		if !in.ParentalLeaveFrom.Before(*in.ParentalLeaveTo) {
			return &Error{
				Status:  422,
				Code:    "VALIDATION_ERROR",
				Message: "parental leave start must be before its end",
				Details: map[string]any{fieldParentalLeaveFrom: "must be strictly before parentalLeaveTo"},
			}
		}
	}

	if in.RetirementStart != nil && in.RetirementStart.After(now) {
		return &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "retirement start cannot be in the future",
			Details: map[string]any{fieldRetirementStart: "must not be after today"},
		}
	}

	return nil
}
