package eligibility

import (
	"strings"
	"testing"

	"github.com/osot/membership-api/internal/domain"
)

func TestOptions_PerGroup(t *testing.T) {
	t.Parallel()

	ot := Options(domain.UserGroupOT)
	if len(ot) != 5 {
		t.Fatalf("OT options=%v", ot)
	}
	for _, e := range ot {
		if e == domain.EligibilityOTAPractising || e == domain.EligibilityOTANonPractising {
			t.Fatalf("OT options contain OTA answer: %v", ot)
		}
		if e == domain.EligibilityLifeMember {
			t.Fatalf("life member must never be offered: %v", ot)
		}
	}

	ota := Options(domain.UserGroupOTA)
	if len(ota) != 5 {
		t.Fatalf("OTA options=%v", ota)
	}
	for _, e := range ota {
		if e == domain.EligibilityOTPractising || e == domain.EligibilityOTNonPractising {
			t.Fatalf("OTA options contain OT answer: %v", ota)
		}
	}

	for _, g := range []domain.UserGroup{
		domain.UserGroupAffiliate,
		domain.UserGroupVendorAdvertiser,
		domain.UserGroupOther,
		domain.UserGroupOTStudent,
	} {
		if got := Options(g); len(got) != 0 {
			t.Fatalf("group %s: options=%v, want none", g, got)
		}
	}
}

func TestRequired(t *testing.T) {
	t.Parallel()

	if !Required(domain.UserGroupOT) || !Required(domain.UserGroupOTA) {
		t.Fatalf("OT and OTA require an eligibility answer")
	}
	for _, g := range []domain.UserGroup{
		domain.UserGroupOTStudent,
		domain.UserGroupOTAStudentNewGrad,
		domain.UserGroupAffiliate,
		domain.UserGroupOther,
	} {
		if Required(g) {
			t.Fatalf("group %s should not require eligibility", g)
		}
	}
}

func TestAffiliateOptions(t *testing.T) {
	t.Parallel()

	got := AffiliateOptions()
	want := []domain.AffiliateEligibility{
		domain.AffiliateEligibilityPrimary,
		domain.AffiliateEligibilityPremium,
	}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("AffiliateOptions()=%v, want %v", got, want)
	}
}

func TestValidateChoice(t *testing.T) {
	t.Parallel()

	if err := ValidateChoice(domain.UserGroupOT, domain.EligibilityOTPractising); err != nil {
		t.Fatalf("valid OT answer: %v", err)
	}
	if err := ValidateChoice(domain.UserGroupOTA, domain.EligibilityNone); err != nil {
		t.Fatalf("none is offerable: %v", err)
	}

	// Shared answers pass for both groups.
	for _, g := range []domain.UserGroup{domain.UserGroupOT, domain.UserGroupOTA} {
		if err := ValidateChoice(g, domain.EligibilityRetired); err != nil {
			t.Fatalf("retired for %s: %v", g, err)
		}
		if err := ValidateChoice(g, domain.EligibilityOnParentalLeave); err != nil {
			t.Fatalf("parental leave for %s: %v", g, err)
		}
	}

	err := ValidateChoice(domain.UserGroupOT, domain.EligibilityOTAPractising)
	if err == nil {
		t.Fatalf("cross-group answer accepted")
	}
	if !strings.Contains(err.Error(), "allowed:") {
		t.Fatalf("error should list allowed values: %v", err)
	}

	if err := ValidateChoice(domain.UserGroupOT, domain.EligibilityLifeMember); err == nil {
		t.Fatalf("life member must be rejected at the self-serve endpoint")
	}

	// Unrequired group: anything, even nonsense, is ignored.
	if err := ValidateChoice(domain.UserGroupVendorAdvertiser, domain.Eligibility(42)); err != nil {
		t.Fatalf("vendor choice should be ignored: %v", err)
	}
}
