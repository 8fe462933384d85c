package categories

import (
	"errors"
	"testing"
	"time"

	"github.com/osot/membership-api/internal/domain"
)

func datePtrAt(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestRequiredDateFields(t *testing.T) {
	t.Parallel()

	if got := RequiredDateFields(nil); len(got) != 0 {
		t.Fatalf("nil eligibility: %v", got)
	}
	if got := RequiredDateFields(eligPtr(domain.EligibilityOTPractising)); len(got) != 0 {
		t.Fatalf("practising: %v", got)
	}
	if got := RequiredDateFields(eligPtr(domain.EligibilityOnParentalLeave)); len(got) != 2 || got[0] != "parentalLeaveFrom" || got[1] != "parentalLeaveTo" {
		t.Fatalf("parental leave: %v", got)
	}
	if got := RequiredDateFields(eligPtr(domain.EligibilityRetired)); len(got) != 1 || got[0] != "retirementStart" {
		t.Fatalf("retired: %v", got)
	}
}

func TestValidateDates_ParentalLeave(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Missing required dates.
	err := validateDates(CreateInput{Eligibility: eligPtr(domain.EligibilityOnParentalLeave)}, now)
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 422 {
		t.Fatalf("err=%v, want 422 for missing leave dates", err)
	}

	// One date without the other.
	err = validateDates(CreateInput{
		Eligibility:       eligPtr(domain.EligibilityOnParentalLeave),
		ParentalLeaveFrom: datePtrAt(2025, 7, 1),
	}, now)
	if !errors.As(err, &ae) || ae.Status != 422 {
		t.Fatalf("err=%v, want 422 for lone from-date", err)
	}

	// From not strictly before to.
	err = validateDates(CreateInput{
		Eligibility:       eligPtr(domain.EligibilityOnParentalLeave),
		ParentalLeaveFrom: datePtrAt(2025, 7, 1),
		ParentalLeaveTo:   datePtrAt(2025, 7, 1),
	}, now)
	if !errors.As(err, &ae) || ae.Status != 422 {
		t.Fatalf("err=%v, want 422 for from==to", err)
	}

	// Valid window.
	err = validateDates(CreateInput{
		Eligibility:       eligPtr(domain.EligibilityOnParentalLeave),
		ParentalLeaveFrom: datePtrAt(2025, 7, 1),
		ParentalLeaveTo:   datePtrAt(2026, 1, 1),
	}, now)
	if err != nil {
		t.Fatalf("valid window rejected: %v", err)
	}
}

func TestValidateDates_Retirement(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	err := validateDates(CreateInput{Eligibility: eligPtr(domain.EligibilityRetired)}, now)
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 422 {
		t.Fatalf("err=%v, want 422 for missing retirement start", err)
	}

	// Future retirement start is rejected.
	err = validateDates(CreateInput{
		Eligibility:     eligPtr(domain.EligibilityRetired),
		RetirementStart: datePtrAt(2025, 12, 31),
	}, now)
	if !errors.As(err, &ae) || ae.Status != 422 {
		t.Fatalf("err=%v, want 422 for future retirement start", err)
	}

	// Past start is fine.
	err = validateDates(CreateInput{
		Eligibility:     eligPtr(domain.EligibilityRetired),
		RetirementStart: datePtrAt(2024, 12, 31),
	}, now)
	if err != nil {
		t.Fatalf("past retirement start rejected: %v", err)
	}
}

func TestValidateDates_OptionalDatesAreUnconstrainedForOtherAnswers(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Leave dates supplied alongside a non-leave answer are still checked for
	// pairing and ordering.
	err := validateDates(CreateInput{
		Eligibility:     eligPtr(domain.EligibilityOTPractising),
		ParentalLeaveTo: datePtrAt(2025, 7, 1),
	}, now)
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 422 {
		t.Fatalf("err=%v, want 422 for lone to-date", err)
	}

	if err := validateDates(CreateInput{Eligibility: eligPtr(domain.EligibilityOTPractising)}, now); err != nil {
		t.Fatalf("plain practising rejected: %v", err)
	}
}
