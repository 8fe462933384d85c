package categories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/osot/membership-api/internal/app/eligibility"
	"github.com/osot/membership-api/internal/app/usergroup"
	"github.com/osot/membership-api/internal/domain"
	"github.com/osot/membership-api/internal/ports/out/accountrepo"
	"github.com/osot/membership-api/internal/ports/out/affiliaterepo"
	"github.com/osot/membership-api/internal/ports/out/categoryrepo"
	clockport "github.com/osot/membership-api/internal/ports/out/clock"
	"github.com/osot/membership-api/internal/ports/out/reservation"
	"github.com/osot/membership-api/internal/ports/out/yearprovider"
)

type Service struct {
	categories   categoryrepo.Repository
	accounts     accountrepo.Repository
	affiliates   affiliaterepo.Repository
	groups       *usergroup.Service
	years        yearprovider.Provider
	reservations reservation.Store
	clk          clockport.Clock

	newCategoryID func() domain.CategoryID
}

func NewService(
	categoriesRepo categoryrepo.Repository,
	accountsRepo accountrepo.Repository,
	affiliatesRepo affiliaterepo.Repository,
	groups *usergroup.Service,
	years yearprovider.Provider,
	reservations reservation.Store,
	clk clockport.Clock,
) *Service {
	return &Service{
		categories:   categoriesRepo,
		accounts:     accountsRepo,
		affiliates:   affiliatesRepo,
		groups:       groups,
		years:        years,
		reservations: reservations,
		clk:          clk,
		newCategoryID: func() domain.CategoryID {
			return domain.CategoryID(uuid.NewString())
		},
	}
}

// SetNewCategoryIDForTest overrides record ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewCategoryIDForTest(fn func() domain.CategoryID) {
	if fn != nil {
		s.newCategoryID = fn
	}
}

type resolvedUser struct {
	ref       domain.UserRef
	account   accountrepo.Account
	affiliate affiliaterepo.Affiliate
}

func (u resolvedUser) gateSubject() gateSubject {
	sub := gateSubject{user: u.ref}
	if u.ref.IsAffiliate() {
		id := u.affiliate.ID
		sub.affiliateID = &id
		sub.status = u.affiliate.Status
		sub.activeMember = u.affiliate.ActiveMember
		return sub
	}
	id := u.account.ID
	sub.accountID = &id
	sub.status = u.account.Status
	sub.activeMember = u.account.ActiveMember
	return sub
}

// resolveUser binds the authenticated subject to an account or an affiliate.
// Failing to resolve short-circuits every operation.
func (s *Service) resolveUser(ctx context.Context, subject domain.SubjectID) (resolvedUser, error) {
	acct, err := s.accounts.GetBySubject(ctx, subject)
	if err == nil {
		return resolvedUser{
			ref:     domain.UserRef{Type: domain.UserTypeAccount, AccountID: acct.ID},
			account: acct,
		}, nil
	}
	if !errors.Is(err, accountrepo.ErrNotFound) {
		return resolvedUser{}, err
	}

	aff, err := s.affiliates.GetBySubject(ctx, subject)
	if err == nil {
		return resolvedUser{
			ref:       domain.UserRef{Type: domain.UserTypeAffiliate, AffiliateID: aff.ID},
			affiliate: aff,
		}, nil
	}
	if !errors.Is(err, affiliaterepo.ErrNotFound) {
		return resolvedUser{}, err
	}

	return resolvedUser{}, &Error{
		Status:  404,
		Code:    "USER_NOT_PROVISIONED",
		Message: "No account or affiliate exists for the authenticated subject.",
	}
}

// CreateMyCategory runs the registration workflow: resolve the caller, gate
// the creation, resolve the user group, validate the eligibility answer and
// supplementary dates, determine the category, reserve the uniqueness keys,
// and persist the record.
func (s *Service) CreateMyCategory(ctx context.Context, subject domain.SubjectID, in CreateInput) (Created, error) {
	u, err := s.resolveUser(ctx, subject)
	if err != nil {
		return Created{}, err
	}

	if err := validateAnswerKind(u.ref, in); err != nil {
		return Created{}, err
	}

	year, err := s.years.CurrentYear(ctx)
	if err != nil {
		if errors.Is(err, yearprovider.ErrNotConfigured) {
			return Created{}, &Error{
				Status:  500,
				Code:    "INTERNAL_ERROR",
				Message: "no active membership year is configured",
			}
		}
		return Created{}, err
	}

	gate, err := s.runCreationGate(ctx, u.gateSubject(), year)
	if err != nil {
		return Created{}, err
	}
	if !gate.Valid {
		return Created{}, gateError(gate)
	}

	group, err := s.groups.Resolve(ctx, u.ref, u.account)
	if err != nil {
		return Created{}, mapUsergroupError(err)
	}

	if !u.ref.IsAffiliate() && eligibility.Required(group) {
		if in.Eligibility == nil {
			return Created{}, &Error{
				Status:  422,
				Code:    "VALIDATION_ERROR",
				Message: "eligibility is required for this user group",
				Details: map[string]any{"userGroup": group.String()},
			}
		}
		if err := eligibility.ValidateChoice(group, *in.Eligibility); err != nil {
			return Created{}, &Error{
				Status:  422,
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			}
		}
	}

	cat, err := Determine(group, in.Eligibility, in.EligibilityAffiliate)
	if err != nil {
		return Created{}, err
	}

	if err := validateDates(in, s.clk.Now()); err != nil {
		return Created{}, err
	}

	if in.ParentalLeaveExpected != nil {
		used, err := s.categories.ParentalLeaveValuesUsed(ctx, u.ref)
		if err != nil {
			return Created{}, err
		}
		if err := validateParentalLeaveExpected(u.ref, group, in, used); err != nil {
			return Created{}, err
		}
	}

	reserved, err := s.reserveKeys(ctx, u.ref, year, in.ParentalLeaveExpected)
	if err != nil {
		return Created{}, err
	}

	rec := categoryrepo.Record{
		ID:             s.newCategoryID(),
		MembershipYear: year,
		Category:       cat,
		UserGroup:      group,

		Eligibility:          cloneEligibility(in.Eligibility),
		EligibilityAffiliate: cloneAffiliateEligibility(in.EligibilityAffiliate),

		ParentalLeaveFrom:     cloneTimePtr(in.ParentalLeaveFrom),
		ParentalLeaveTo:       cloneTimePtr(in.ParentalLeaveTo),
		ParentalLeaveExpected: cloneParentalLeave(in.ParentalLeaveExpected),
		RetirementStart:       cloneTimePtr(in.RetirementStart),

		Privilege:      domain.PrivilegeOwner,
		AccessModifier: domain.AccessPrivate,
	}
	if u.ref.IsAffiliate() {
		id := u.affiliate.ID
		rec.AffiliateID = &id
	} else {
		id := u.account.ID
		rec.AccountID = &id
	}

	stored, err := s.categories.Create(ctx, rec)
	if err != nil {
		s.releaseKeys(ctx, reserved)
		if errors.Is(err, categoryrepo.ErrAlreadyExists) {
			return Created{}, &Error{Status: 409, Code: "CONFLICT", Message: "membership category id conflict"}
		}
		return Created{}, err
	}

	return Created{
		Record: toDomain(stored),
		Determination: Determination{
			UserGroup:           group,
			Category:            cat,
			RequiresEligibility: eligibility.Required(group),
			RequiredDateFields:  RequiredDateFields(in.Eligibility),
		},
	}, nil
}

// ListMyCategories returns the caller's records across all membership years.
func (s *Service) ListMyCategories(ctx context.Context, subject domain.SubjectID) ([]domain.MembershipCategory, error) {
	u, err := s.resolveUser(ctx, subject)
	if err != nil {
		return nil, err
	}
	recs, err := s.categories.ListByUser(ctx, u.ref)
	if err != nil {
		return nil, err
	}
	out := make([]domain.MembershipCategory, 0, len(recs))
	for _, r := range recs {
		out = append(out, toDomain(r))
	}
	return out, nil
}

// MyParentalLeaveOptions reports the caller's remaining and exhausted
// parental-leave durations.
func (s *Service) MyParentalLeaveOptions(ctx context.Context, subject domain.SubjectID) (ParentalLeaveOptions, error) {
	u, err := s.resolveUser(ctx, subject)
	if err != nil {
		return ParentalLeaveOptions{}, err
	}
	if u.ref.IsAffiliate() {
		return parentalLeaveOptionsFromHistory(u.ref, nil), nil
	}
	used, err := s.categories.ParentalLeaveValuesUsed(ctx, u.ref)
	if err != nil {
		return ParentalLeaveOptions{}, err
	}
	return parentalLeaveOptionsFromHistory(u.ref, used), nil
}

// MyEligibilityOptions returns the offerable eligibility answers for the
// caller's user group.
func (s *Service) MyEligibilityOptions(ctx context.Context, subject domain.SubjectID) (EligibilityOptions, error) {
	u, err := s.resolveUser(ctx, subject)
	if err != nil {
		return EligibilityOptions{}, err
	}
	group, err := s.groups.Resolve(ctx, u.ref, u.account)
	if err != nil {
		return EligibilityOptions{}, mapUsergroupError(err)
	}

	out := EligibilityOptions{
		UserGroup:        group,
		Required:         eligibility.Required(group),
		Options:          []EligibilityOption{},
		AffiliateOptions: []AffiliateEligibilityOption{},
	}
	if u.ref.IsAffiliate() {
		for _, o := range eligibility.AffiliateOptions() {
			out.AffiliateOptions = append(out.AffiliateOptions, AffiliateEligibilityOption{Value: o, Label: o.String()})
		}
		return out, nil
	}
	for _, o := range eligibility.Options(group) {
		out.Options = append(out.Options, EligibilityOption{Value: o, Label: o.String()})
	}
	return out, nil
}

// DeleteCategory removes a record. Only records the caller holds admin
// privilege on can be deleted; records belonging to other users read as
// not-found.
func (s *Service) DeleteCategory(ctx context.Context, subject domain.SubjectID, id domain.CategoryID) error {
	u, err := s.resolveUser(ctx, subject)
	if err != nil {
		return err
	}
	rec, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, categoryrepo.ErrNotFound) {
			return &Error{Status: 404, Code: "NOT_FOUND", Message: "membership category not found"}
		}
		return err
	}
	if toDomain(rec).UserRef() != u.ref {
		return &Error{Status: 404, Code: "NOT_FOUND", Message: "membership category not found"}
	}
	if rec.Privilege != domain.PrivilegeAdmin {
		return &Error{
			Status:  403,
			Code:    "PERMISSION_DENIED",
			Message: "deleting a membership category requires admin privilege",
		}
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, categoryrepo.ErrNotFound) {
			return &Error{Status: 404, Code: "NOT_FOUND", Message: "membership category not found"}
		}
		return err
	}
	// Free the per-year uniqueness key so the user can re-register for the
	// year. Parental-leave keys stay claimed: that rule is lifetime.
	_ = s.reservations.Release(ctx, reservation.ScopeYear, u.ref.Key(), rec.MembershipYear)
	return nil
}

// validateAnswerKind enforces that the answer field matches the user kind:
// accounts answer `eligibility`, affiliates answer `eligibilityAffiliate`.
func validateAnswerKind(ref domain.UserRef, in CreateInput) error {
	if ref.IsAffiliate() {
		if in.Eligibility != nil {
			return &Error{
				Status:  422,
				Code:    "VALIDATION_ERROR",
				Message: "affiliate users must use eligibilityAffiliate",
				Details: map[string]any{"eligibility": "not allowed for affiliates"},
			}
		}
		return nil
	}
	if in.EligibilityAffiliate != nil {
		return &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "account users must use eligibility",
			Details: map[string]any{"eligibilityAffiliate": "not allowed for accounts"},
		}
	}
	return nil
}

type reservedKey struct {
	scope   reservation.Scope
	userKey string
	key     string
}

// reserveKeys claims the uniqueness keys for a creation: always the
// (user, year) key, plus the (user, option) key when a parental-leave
// duration is selected. Claims are conditional writes, so two racing
// registrations cannot both pass.
func (s *Service) reserveKeys(ctx context.Context, user domain.UserRef, year string, pl *domain.ParentalLeaveExpected) ([]reservedKey, error) {
	var reserved []reservedKey

	yearKey := reservedKey{scope: reservation.ScopeYear, userKey: user.Key(), key: year}
	if err := s.reservations.Reserve(ctx, yearKey.scope, yearKey.userKey, yearKey.key); err != nil {
		if errors.Is(err, reservation.ErrAlreadyReserved) {
			return nil, &Error{
				Status:  409,
				Code:    "CONFLICT",
				Message: fmt.Sprintf("membership category already exists for this user in year %s", year),
			}
		}
		return nil, err
	}
	reserved = append(reserved, yearKey)

	if pl != nil {
		plKey := reservedKey{scope: reservation.ScopeParentalLeave, userKey: user.Key(), key: strconv.Itoa(int(*pl))}
		if err := s.reservations.Reserve(ctx, plKey.scope, plKey.userKey, plKey.key); err != nil {
			s.releaseKeys(ctx, reserved)
			if errors.Is(err, reservation.ErrAlreadyReserved) {
				return nil, &Error{
					Status:  422,
					Code:    "VALIDATION_ERROR",
					Message: fmt.Sprintf("the %q parental leave option has already been used", pl.String()),
				}
			}
			return nil, err
		}
		reserved = append(reserved, plKey)
	}

	return reserved, nil
}

// releaseKeys is best-effort rollback after a failed platform write.
func (s *Service) releaseKeys(ctx context.Context, keys []reservedKey) {
	for _, k := range keys {
		_ = s.reservations.Release(ctx, k.scope, k.userKey, k.key)
	}
}

func mapUsergroupError(err error) error {
	ue := (*usergroup.Error)(nil)
	if errors.As(err, &ue) {
		return &Error{Status: ue.Status, Code: ue.Code, Message: ue.Message, Details: ue.Details}
	}
	return err
}

func toDomain(r categoryrepo.Record) domain.MembershipCategory {
	return domain.MembershipCategory{
		ID:         r.ID,
		BusinessID: r.BusinessID,

		AccountID:   cloneAccountID(r.AccountID),
		AffiliateID: cloneAffiliateID(r.AffiliateID),

		MembershipYear: r.MembershipYear,
		Category:       r.Category,
		UserGroup:      r.UserGroup,

		Eligibility:          cloneEligibility(r.Eligibility),
		EligibilityAffiliate: cloneAffiliateEligibility(r.EligibilityAffiliate),

		ParentalLeaveFrom:     cloneTimePtr(r.ParentalLeaveFrom),
		ParentalLeaveTo:       cloneTimePtr(r.ParentalLeaveTo),
		ParentalLeaveExpected: cloneParentalLeave(r.ParentalLeaveExpected),
		RetirementStart:       cloneTimePtr(r.RetirementStart),

		Privilege:      r.Privilege,
		AccessModifier: r.AccessModifier,

		CreatedOn:  r.CreatedOn,
		ModifiedOn: r.ModifiedOn,
		OwnerID:    r.OwnerID,
	}
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneEligibility(p *domain.Eligibility) *domain.Eligibility {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneAffiliateEligibility(p *domain.AffiliateEligibility) *domain.AffiliateEligibility {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneParentalLeave(p *domain.ParentalLeaveExpected) *domain.ParentalLeaveExpected {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneAccountID(p *domain.AccountID) *domain.AccountID {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneAffiliateID(p *domain.AffiliateID) *domain.AffiliateID {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
