package categories

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	memaccountrepo "github.com/osot/membership-api/internal/adapters/memory/accountrepo"
	memaffiliaterepo "github.com/osot/membership-api/internal/adapters/memory/affiliaterepo"
	memcategoryrepo "github.com/osot/membership-api/internal/adapters/memory/categoryrepo"
	memclock "github.com/osot/membership-api/internal/adapters/memory/clock"
	memeducationrepo "github.com/osot/membership-api/internal/adapters/memory/educationrepo"
	memreservation "github.com/osot/membership-api/internal/adapters/memory/reservation"
	memyearprovider "github.com/osot/membership-api/internal/adapters/memory/yearprovider"
	"github.com/osot/membership-api/internal/app/usergroup"
	"github.com/osot/membership-api/internal/domain"
	"github.com/osot/membership-api/internal/ports/out/accountrepo"
	"github.com/osot/membership-api/internal/ports/out/affiliaterepo"
	"github.com/osot/membership-api/internal/ports/out/categoryrepo"
	"github.com/osot/membership-api/internal/ports/out/educationrepo"
	"github.com/osot/membership-api/internal/ports/out/reservation"
)

type fixture struct {
	svc          *Service
	accounts     *memaccountrepo.Repo
	affiliates   *memaffiliaterepo.Repo
	education    *memeducationrepo.Repo
	categories   *memcategoryrepo.Repo
	years        *memyearprovider.Provider
	reservations *memreservation.Store
	clk          *memclock.ManualClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		accounts:     memaccountrepo.NewRepo(),
		affiliates:   memaffiliaterepo.NewRepo(),
		education:    memeducationrepo.NewRepo(),
		categories:   memcategoryrepo.NewRepo(),
		years:        memyearprovider.NewProvider("2025"),
		reservations: memreservation.NewStore(),
		clk:          memclock.NewManualClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	}
	groups := usergroup.NewService(f.education, zap.NewNop())
	f.svc = NewService(f.categories, f.accounts, f.affiliates, groups, f.years, f.reservations, f.clk)
	return f
}

func (f *fixture) seedOTAccount(sub domain.SubjectID, id domain.AccountID, edu domain.EducationCategory) {
	f.accounts.Put(accountrepo.Account{
		ID:           id,
		BusinessID:   "osot-acct-0000001",
		Subject:      sub,
		AccountGroup: domain.AccountGroupOccupationalTherapist,
		Status:       domain.AccountStatusActive,
	})
	f.education.PutOT(educationrepo.Education{AccountID: id, Category: edu})
}

func (f *fixture) seedAffiliate(sub domain.SubjectID, id domain.AffiliateID) {
	f.affiliates.Put(affiliaterepo.Affiliate{
		ID:         id,
		BusinessID: "osot-aff-0000001",
		Subject:    sub,
		Status:     domain.AccountStatusActive,
	})
}

func appErr(t *testing.T, err error) *Error {
	t.Helper()
	ae := (*Error)(nil)
	if !errors.As(err, &ae) {
		t.Fatalf("err=%v (type=%T), want *categories.Error", err, err)
	}
	return ae
}

func TestService_CreateMyCategory_OTPractising(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedOTAccount("sub-1", "acct-1", domain.EducationGraduated)

	created, err := f.svc.CreateMyCategory(context.Background(), "sub-1", CreateInput{
		Eligibility: eligPtr(domain.EligibilityOTPractising),
	})
	if err != nil {
		t.Fatalf("CreateMyCategory err=%v", err)
	}

	rec := created.Record
	if rec.Category != domain.CategoryOTPractising {
		t.Fatalf("category=%s", rec.Category)
	}
	if rec.UserGroup != domain.UserGroupOT {
		t.Fatalf("userGroup=%s", rec.UserGroup)
	}
	if rec.MembershipYear != "2025" {
		t.Fatalf("year=%q", rec.MembershipYear)
	}
	if rec.Privilege != domain.PrivilegeOwner || rec.AccessModifier != domain.AccessPrivate {
		t.Fatalf("privilege=%s access=%s, want Owner/Private", rec.Privilege, rec.AccessModifier)
	}
	if rec.AccountID == nil || *rec.AccountID != "acct-1" || rec.AffiliateID != nil {
		t.Fatalf("user refs: %+v", rec)
	}
	if rec.BusinessID == "" {
		t.Fatalf("expected assigned business id")
	}
	if !created.Determination.RequiresEligibility {
		t.Fatalf("determination=%+v", created.Determination)
	}
	if len(created.Determination.RequiredDateFields) != 0 {
		t.Fatalf("requiredDateFields=%v", created.Determination.RequiredDateFields)
	}
}

func TestService_CreateMyCategory_UnprovisionedSubject(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.CreateMyCategory(context.Background(), "nobody", CreateInput{})
	ae := appErr(t, err)
	if ae.Status != 404 || ae.Code != "USER_NOT_PROVISIONED" {
		t.Fatalf("err=%+v, want USER_NOT_PROVISIONED 404", ae)
	}
}

func TestService_CreateMyCategory_DuplicateYearConflict(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedOTAccount("sub-1", "acct-1", domain.EducationGraduated)

	if _, err := f.svc.CreateMyCategory(context.Background(), "sub-1", CreateInput{
		Eligibility: eligPtr(domain.EligibilityOTPractising),
	}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := f.svc.CreateMyCategory(context.Background(), "sub-1", CreateInput{
		Eligibility: eligPtr(domain.EligibilityOTPractising),
	})
	ae := appErr(t, err)
	if ae.Status != 409 || ae.Code != "CONFLICT" {
		t.Fatalf("err=%+v, want CONFLICT 409", ae)
	}
	if !strings.Contains(ae.Message, "2025") {
		t.Fatalf("message=%q, want year in message", ae.Message)
	}
}

func TestService_CreateMyCategory_InactiveAccount(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.accounts.Put(accountrepo.Account{
		ID:           "acct-1",
		Subject:      "sub-1",
		AccountGroup: domain.AccountGroupOccupationalTherapist,
		Status:       domain.AccountStatusInactive,
	})

	_, err := f.svc.CreateMyCategory(context.Background(), "sub-1", CreateInput{
		Eligibility: eligPtr(domain.EligibilityOTPractising),
	})
	ae := appErr(t, err)
	if ae.Status != 422 || ae.Code != "BUSINESS_RULE_VIOLATION" {
		t.Fatalf("err=%+v, want BUSINESS_RULE_VIOLATION 422", ae)
	}
}

func TestService_CreateMyCategory_ActiveMemberCannotReRegister(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.accounts.Put(accountrepo.Account{
		ID:           "acct-1",
		Subject:      "sub-1",
		AccountGroup: domain.AccountGroupOccupationalTherapist,
		Status:       domain.AccountStatusActive,
		ActiveMember: true,
	})

	_, err := f.svc.CreateMyCategory(context.Background(), "sub-1", CreateInput{
		Eligibility: eligPtr(domain.EligibilityOTPractising),
	})
	ae := appErr(t, err)
	if ae.Status != 422 || ae.Code != "BUSINESS_RULE_VIOLATION" {
		t.Fatalf("err=%+v, want BUSINESS_RULE_VIOLATION 422", ae)
	}
}

func TestService_CreateMyCategory_YearNotConfigured(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedOTAccount("sub-1", "acct-1", domain.EducationGraduated)
	f.years.SetYear("")

	_, err := f.svc.CreateMyCategory(context.Background(), "sub-1", CreateInput{
		Eligibility: eligPtr(domain.EligibilityOTPractising),
	})
	ae := appErr(t, err)
	if ae.Status != 500 || ae.Code != "INTERNAL_ERROR" {
		t.Fatalf("err=%+v, want INTERNAL_ERROR 500", ae)
	}
}

func TestService_CreateMyCategory_AnswerKindMismatch(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedOTAccount("sub-acct", "acct-1", domain.EducationGraduated)
	f.seedAffiliate("sub-aff", "aff-1")

	// Account user sending the affiliate answer.
	_, err := f.svc.CreateMyCategory(context.Background(), "sub-acct", CreateInput{
		EligibilityAffiliate: affEligPtr(domain.AffiliateEligibilityPrimary),
	})
	ae := appErr(t, err)
	if ae.Status != 422 || ae.Code != "VALIDATION_ERROR" {
		t.Fatalf("account: err=%+v, want VALIDATION_ERROR 422", ae)
	}

	// Affiliate sending the account answer.
	_, err = f.svc.CreateMyCategory(context.Background(), "sub-aff", CreateInput{
		Eligibility: eligPtr(domain.EligibilityOTPractising),
	})
	ae = appErr(t, err)
	if ae.Status != 422 || ae.Code != "VALIDATION_ERROR" {
		t.Fatalf("affiliate: err=%+v, want VALIDATION_ERROR 422", ae)
	}
}

func TestService_CreateMyCategory_AffiliatePremium(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedAffiliate("sub-aff", "aff-1")

	created, err := f.svc.CreateMyCategory(context.Background(), "sub-aff", CreateInput{
		EligibilityAffiliate: affEligPtr(domain.AffiliateEligibilityPremium),
	})
	if err != nil {
		t.Fatalf("CreateMyCategory err=%v", err)
	}
	if created.Record.Category != domain.CategoryAffiliatePremium {
		t.Fatalf("category=%s", created.Record.Category)
	}
	if created.Record.UserGroup != domain.UserGroupAffiliate {
		t.Fatalf("userGroup=%s", created.Record.UserGroup)
	}
	if created.Record.AffiliateID == nil || *created.Record.AffiliateID != "aff-1" || created.Record.AccountID != nil {
		t.Fatalf("user refs: %+v", created.Record)
	}
	if created.Determination.RequiresEligibility {
		t.Fatalf("affiliate determination should not require account eligibility")
	}
}

func TestService_CreateMyCategory_AffiliateParentalLeaveRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedAffiliate("sub-aff", "aff-1")

	_, err := f.svc.CreateMyCategory(context.Background(), "sub-aff", CreateInput{
		EligibilityAffiliate:  affEligPtr(domain.AffiliateEligibilityPrimary),
		ParentalLeaveExpected: plPtr(domain.ParentalLeaveFullYear),
	})
	ae := appErr(t, err)
	if ae.Status != 422 || ae.Code != "VALIDATION_ERROR" {
		t.Fatalf("err=%+v, want VALIDATION_ERROR 422", ae)
	}
}

func TestService_CreateMyCategory_EligibilityOutsideGroupOptions(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedOTAccount("sub-1", "acct-1", domain.EducationGraduated)

	// An OT answering the OTA practising question.
	_, err := f.svc.CreateMyCategory(context.Background(), "sub-1", CreateInput{
		Eligibility: eligPtr(domain.EligibilityOTAPractising),
	})
	ae := appErr(t, err)
	if ae.Status != 422 || ae.Code != "VALIDATION_ERROR" {
		t.Fatalf("err=%+v, want VALIDATION_ERROR 422", ae)
	}

	// The life-member answer is admin-granted and not accepted here.
	_, err = f.svc.CreateMyCategory(context.Background(), "sub-1", CreateInput{
		Eligibility: eligPtr(domain.EligibilityLifeMember),
	})
	ae = appErr(t, err)
	if ae.Status != 422 || ae.Code != "VALIDATION_ERROR" {
		t.Fatalf("life member: err=%+v, want VALIDATION_ERROR 422", ae)
	}
}

func TestService_CreateMyCategory_StudentIgnoresEligibility(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedOTAccount("sub-1", "acct-1", domain.EducationStudent)

	created, err := f.svc.CreateMyCategory(context.Background(), "sub-1", CreateInput{})
	if err != nil {
		t.Fatalf("CreateMyCategory err=%v", err)
	}
	if created.Record.Category != domain.CategoryOTStudent {
		t.Fatalf("category=%s", created.Record.Category)
	}
	if created.Determination.RequiresEligibility {
		t.Fatalf("student group should not require eligibility")
	}
}

func TestService_CreateMyCategory_NoEducationFallsBackToAssociate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	// OT account group without any education record: soft-fail to Other.
	f.accounts.Put(accountrepo.Account{
		ID:           "acct-1",
		Subject:      "sub-1",
		AccountGroup: domain.AccountGroupOccupationalTherapist,
		Status:       domain.AccountStatusActive,
	})

	created, err := f.svc.CreateMyCategory(context.Background(), "sub-1", CreateInput{})
	if err != nil {
		t.Fatalf("CreateMyCategory err=%v", err)
	}
	if created.Record.UserGroup != domain.UserGroupOther {
		t.Fatalf("userGroup=%s, want Other", created.Record.UserGroup)
	}
	if created.Record.Category != domain.CategoryAssociate {
		t.Fatalf("category=%s, want Associate", created.Record.Category)
	}
}

func TestService_CreateMyCategory_ParentalLeaveLifecycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedOTAccount("sub-1", "acct-1", domain.EducationGraduated)

	leave := CreateInput{
		Eligibility:           eligPtr(domain.EligibilityOnParentalLeave),
		ParentalLeaveFrom:     datePtrAt(2025, 7, 1),
		ParentalLeaveTo:       datePtrAt(2026, 6, 30),
		ParentalLeaveExpected: plPtr(domain.ParentalLeaveFullYear),
	}
	created, err := f.svc.CreateMyCategory(context.Background(), "sub-1", leave)
	if err != nil {
		t.Fatalf("first leave create: %v", err)
	}
	if created.Record.Category != domain.CategoryOTNonPractising {
		t.Fatalf("category=%s, want OT Non-Practising", created.Record.Category)
	}
	if got := created.Determination.RequiredDateFields; len(got) != 2 {
		t.Fatalf("requiredDateFields=%v", got)
	}

	// Next membership year: the full-year option is spent for life.
	f.years.SetYear("2026")
	_, err = f.svc.CreateMyCategory(context.Background(), "sub-1", leave)
	ae := appErr(t, err)
	if ae.Status != 422 || !strings.Contains(ae.Message, "already been used") {
		t.Fatalf("err=%+v, want one-time-use rejection", ae)
	}

	// The six-month option is still available.
	leave.ParentalLeaveExpected = plPtr(domain.ParentalLeaveSixMonths)
	leave.ParentalLeaveTo = datePtrAt(2026, 1, 1)
	if _, err := f.svc.CreateMyCategory(context.Background(), "sub-1", leave); err != nil {
		t.Fatalf("six-month create: %v", err)
	}

	opts, err := f.svc.MyParentalLeaveOptions(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("MyParentalLeaveOptions: %v", err)
	}
	if len(opts.Available) != 0 || len(opts.Used) != 2 {
		t.Fatalf("options=%+v, want both exhausted", opts)
	}
}

func TestService_CreateMyCategory_RetiredRequiresPastStart(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedOTAccount("sub-1", "acct-1", domain.EducationGraduated)

	_, err := f.svc.CreateMyCategory(context.Background(), "sub-1", CreateInput{
		Eligibility:     eligPtr(domain.EligibilityRetired),
		RetirementStart: datePtrAt(2026, 1, 1),
	})
	ae := appErr(t, err)
	if ae.Status != 422 {
		t.Fatalf("future start: err=%+v, want 422", ae)
	}

	created, err := f.svc.CreateMyCategory(context.Background(), "sub-1", CreateInput{
		Eligibility:     eligPtr(domain.EligibilityRetired),
		RetirementStart: datePtrAt(2024, 1, 1),
	})
	if err != nil {
		t.Fatalf("CreateMyCategory err=%v", err)
	}
	if created.Record.Category != domain.CategoryOTRetired {
		t.Fatalf("category=%s", created.Record.Category)
	}
	if got := created.Determination.RequiredDateFields; len(got) != 1 || got[0] != "retirementStart" {
		t.Fatalf("requiredDateFields=%v", got)
	}
}

func TestService_ListMyCategories(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedOTAccount("sub-1", "acct-1", domain.EducationGraduated)

	if _, err := f.svc.CreateMyCategory(context.Background(), "sub-1", CreateInput{
		Eligibility: eligPtr(domain.EligibilityOTPractising),
	}); err != nil {
		t.Fatalf("create 2025: %v", err)
	}
	f.years.SetYear("2026")
	if _, err := f.svc.CreateMyCategory(context.Background(), "sub-1", CreateInput{
		Eligibility: eligPtr(domain.EligibilityOTNonPractising),
	}); err != nil {
		t.Fatalf("create 2026: %v", err)
	}

	recs, err := f.svc.ListMyCategories(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("ListMyCategories: %v", err)
	}
	if len(recs) != 2 || recs[0].MembershipYear != "2026" || recs[1].MembershipYear != "2025" {
		t.Fatalf("recs=%+v, want newest year first", recs)
	}
}

func TestService_MyEligibilityOptions(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedOTAccount("sub-ot", "acct-1", domain.EducationGraduated)
	f.seedAffiliate("sub-aff", "aff-1")

	out, err := f.svc.MyEligibilityOptions(context.Background(), "sub-ot")
	if err != nil {
		t.Fatalf("MyEligibilityOptions: %v", err)
	}
	if out.UserGroup != domain.UserGroupOT || !out.Required {
		t.Fatalf("out=%+v", out)
	}
	if len(out.Options) != 5 {
		t.Fatalf("options=%+v, want 5 offerable answers", out.Options)
	}
	for _, o := range out.Options {
		if o.Value == domain.EligibilityLifeMember {
			t.Fatalf("life member must not be offered: %+v", out.Options)
		}
	}

	out, err = f.svc.MyEligibilityOptions(context.Background(), "sub-aff")
	if err != nil {
		t.Fatalf("affiliate options: %v", err)
	}
	if out.UserGroup != domain.UserGroupAffiliate || out.Required {
		t.Fatalf("out=%+v", out)
	}
	if len(out.AffiliateOptions) != 2 || len(out.Options) != 0 {
		t.Fatalf("out=%+v", out)
	}
}

func TestService_DeleteCategory(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedOTAccount("sub-1", "acct-1", domain.EducationGraduated)
	f.seedOTAccount("sub-2", "acct-2", domain.EducationGraduated)

	created, err := f.svc.CreateMyCategory(context.Background(), "sub-1", CreateInput{
		Eligibility: eligPtr(domain.EligibilityOTPractising),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := created.Record.ID

	// Unknown id.
	err = f.svc.DeleteCategory(context.Background(), "sub-1", "no-such-id")
	if ae := appErr(t, err); ae.Status != 404 || ae.Code != "NOT_FOUND" {
		t.Fatalf("unknown id: err=%+v", ae)
	}

	// Another user's record reads as not-found, not forbidden.
	err = f.svc.DeleteCategory(context.Background(), "sub-2", id)
	if ae := appErr(t, err); ae.Status != 404 || ae.Code != "NOT_FOUND" {
		t.Fatalf("other user: err=%+v", ae)
	}

	// Owner privilege is not enough.
	err = f.svc.DeleteCategory(context.Background(), "sub-1", id)
	if ae := appErr(t, err); ae.Status != 403 || ae.Code != "PERMISSION_DENIED" {
		t.Fatalf("owner delete: err=%+v", ae)
	}
}

func TestService_DeleteCategory_AdminFreesYear(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedOTAccount("sub-1", "acct-1", domain.EducationGraduated)

	// Seed an admin-privileged record directly, with its year key claimed the
	// way a creation would have left it.
	acct := domain.AccountID("acct-1")
	user := domain.UserRef{Type: domain.UserTypeAccount, AccountID: acct}
	rec, err := f.categories.Create(context.Background(), categoryrepo.Record{
		ID:             "rec-admin",
		AccountID:      &acct,
		MembershipYear: "2025",
		Category:       domain.CategoryOTPractising,
		UserGroup:      domain.UserGroupOT,
		Privilege:      domain.PrivilegeAdmin,
		AccessModifier: domain.AccessPrivate,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := f.reservations.Reserve(context.Background(), reservation.ScopeYear, user.Key(), "2025"); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	if err := f.svc.DeleteCategory(context.Background(), "sub-1", rec.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}

	// The year is open again.
	if _, err := f.svc.CreateMyCategory(context.Background(), "sub-1", CreateInput{
		Eligibility: eligPtr(domain.EligibilityOTPractising),
	}); err != nil {
		t.Fatalf("re-create after delete: %v", err)
	}
}
