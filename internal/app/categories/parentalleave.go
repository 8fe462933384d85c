package categories

import (
	"fmt"

	"github.com/osot/membership-api/internal/domain"
)

// ParentalLeaveOptions reports which leave-duration options the caller can
// still select, and which they have exhausted.
type ParentalLeaveOptions struct {
	Available []domain.ParentalLeaveExpected
	Used      []domain.ParentalLeaveExpected
}

// parentalLeaveOptionsFromHistory subtracts the historically used values from
// the full option set. Affiliates are categorically ineligible and always get
// an empty result regardless of history.
func parentalLeaveOptionsFromHistory(user domain.UserRef, used []domain.ParentalLeaveExpected) ParentalLeaveOptions {
	if user.IsAffiliate() {
		return ParentalLeaveOptions{
			Available: []domain.ParentalLeaveExpected{},
			Used:      []domain.ParentalLeaveExpected{},
		}
	}

	usedSet := make(map[domain.ParentalLeaveExpected]bool, len(used))
	out := ParentalLeaveOptions{
		Available: []domain.ParentalLeaveExpected{},
		Used:      []domain.ParentalLeaveExpected{},
	}
	for _, u := range used {
		if u.Valid() && !usedSet[u] {
			usedSet[u] = true
		}
	}
	for _, opt := range domain.AllParentalLeaveOptions {
		if usedSet[opt] {
			out.Used = append(out.Used, opt)
		} else {
			out.Available = append(out.Available, opt)
		}
	}
	return out
}

// validateParentalLeaveExpected enforces the full rule chain for a selected
// leave duration, in order: affiliates are rejected outright, then the user
// group must be OT/OTA, the eligibility answer must be parental leave, both
// leave dates must be present, and the option must not have been used before.
func validateParentalLeaveExpected(
	user domain.UserRef,
	group domain.UserGroup,
	in CreateInput,
	used []domain.ParentalLeaveExpected,
) error {
	if in.ParentalLeaveExpected == nil {
		return nil
	}
	selected := *in.ParentalLeaveExpected

	if user.IsAffiliate() {
		return &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "affiliate users are not eligible for parental leave",
		}
	}
	if group != domain.UserGroupOT && group != domain.UserGroupOTA {
		return &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "parental leave is only available to OT and OTA user groups",
			Details: map[string]any{"userGroup": group.String()},
		}
	}
	if in.Eligibility == nil || *in.Eligibility != domain.EligibilityOnParentalLeave {
		return &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "parental leave duration requires the parental-leave eligibility answer",
		}
	}
	if in.ParentalLeaveFrom == nil || in.ParentalLeaveTo == nil {
		return &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "parental leave duration requires both leave dates",
		}
	}
	if !selected.Valid() {
		return &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "unknown parental leave duration",
			Details: map[string]any{"parentalLeaveExpected": int(selected)},
		}
	}
	for _, u := range used {
		if u == selected {
			return &Error{
				Status:  422,
				Code:    "VALIDATION_ERROR",
				Message: fmt.Sprintf("the %q parental leave option has already been used", selected.String()),
				Details: map[string]any{"parentalLeaveExpected": int(selected)},
			}
		}
	}
	return nil
}
