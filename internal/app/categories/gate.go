package categories

import (
	"context"
	"fmt"

	"github.com/osot/membership-api/internal/domain"
)

// Violation is a single failed creation-gate check.
type Violation struct {
	Code    string
	Message string
}

// GateResult is the aggregate outcome of the creation gate. All checks after
// authentication run to completion so the caller sees every problem at once.
type GateResult struct {
	Valid      bool
	Violations []Violation
}

const gateCodeConflict = "CONFLICT"

// ValidateUserReferenceExclusivity enforces the exactly-one-user-reference
// invariant: a record must bind an account or an affiliate, never both, never
// neither.
func ValidateUserReferenceExclusivity(accountID *domain.AccountID, affiliateID *domain.AffiliateID) error {
	if accountID != nil && affiliateID != nil {
		return fmt.Errorf("record cannot reference both an account and an affiliate")
	}
	if accountID == nil && affiliateID == nil {
		return fmt.Errorf("record must reference an account or an affiliate")
	}
	return nil
}

type gateSubject struct {
	user         domain.UserRef
	accountID    *domain.AccountID
	affiliateID  *domain.AffiliateID
	status       domain.AccountStatus
	activeMember bool
}

// runCreationGate runs the post-authentication business-rule checks and
// accumulates every violation. Authentication itself short-circuits earlier,
// in user resolution.
func (s *Service) runCreationGate(ctx context.Context, sub gateSubject, year string) (GateResult, error) {
	var vs []Violation

	if err := ValidateUserReferenceExclusivity(sub.accountID, sub.affiliateID); err != nil {
		vs = append(vs, Violation{Code: "VALIDATION_ERROR", Message: err.Error()})
	}

	if sub.status != domain.AccountStatusActive {
		vs = append(vs, Violation{
			Code:    "BUSINESS_RULE_VIOLATION",
			Message: fmt.Sprintf("account status must be Active (is %s)", sub.status.String()),
		})
	}

	if sub.activeMember {
		vs = append(vs, Violation{
			Code:    "BUSINESS_RULE_VIOLATION",
			Message: "user is already an active member",
		})
	}

	exists, err := s.categories.ExistsForYear(ctx, sub.user, year)
	if err != nil {
		return GateResult{}, err
	}
	if exists {
		vs = append(vs, Violation{
			Code:    gateCodeConflict,
			Message: fmt.Sprintf("membership category already exists for this user in year %s", year),
		})
	}

	return GateResult{Valid: len(vs) == 0, Violations: vs}, nil
}

// gateError converts a failed gate into the app error surfaced to the caller.
// A pure duplicate is a conflict; any other mix reports every message at once.
func gateError(res GateResult) *Error {
	if len(res.Violations) == 1 && res.Violations[0].Code == gateCodeConflict {
		return &Error{
			Status:  409,
			Code:    gateCodeConflict,
			Message: res.Violations[0].Message,
		}
	}
	msgs := make([]string, 0, len(res.Violations))
	for _, v := range res.Violations {
		msgs = append(msgs, v.Message)
	}
	return &Error{
		Status:  422,
		Code:    "BUSINESS_RULE_VIOLATION",
		Message: "membership category cannot be created",
		Details: map[string]any{"violations": msgs},
	}
}
