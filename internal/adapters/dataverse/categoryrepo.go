package dataverse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/osot/membership-api/internal/domain"
	"github.com/osot/membership-api/internal/ports/out/categoryrepo"
)

const categorySet = "osot_membershipcategories"

// CategoryRepo is the Dataverse implementation of categoryrepo.Repository.
// The platform assigns the GUID key, the autonumber business id and the
// created/modified stamps.
type CategoryRepo struct {
	c *Client
}

func NewCategoryRepo(c *Client) *CategoryRepo {
	return &CategoryRepo{c: c}
}

// dateOnly is the Edm.Date wire layout.
const dateOnly = "2006-01-02"

type categoryRow struct {
	ID         string `json:"osot_membershipcategoryid"`
	BusinessID string `json:"osot_businessid"`

	AccountID   *string `json:"_osot_account_value"`
	AffiliateID *string `json:"_osot_affiliate_value"`

	MembershipYear string `json:"osot_membershipyear"`

	Category  *int `json:"osot_category"`
	UserGroup *int `json:"osot_usergroup"`

	Eligibility          *int `json:"osot_eligibility"`
	EligibilityAffiliate *int `json:"osot_eligibility_affiliate"`

	ParentalLeaveFrom     *string `json:"osot_parental_leave_from"`
	ParentalLeaveTo       *string `json:"osot_parental_leave_to"`
	ParentalLeaveExpected *int    `json:"osot_parental_leave_expected"`
	RetirementStart       *string `json:"osot_retirement_start"`

	Privilege      *int `json:"osot_privilege"`
	AccessModifier *int `json:"osot_access_modifier"`

	CreatedOn  *time.Time `json:"createdon"`
	ModifiedOn *time.Time `json:"modifiedon"`
	OwnerID    *string    `json:"_ownerid_value"`
}

const categorySelect = "$select=osot_membershipcategoryid,osot_businessid,_osot_account_value,_osot_affiliate_value," +
	"osot_membershipyear,osot_category,osot_usergroup,osot_eligibility,osot_eligibility_affiliate," +
	"osot_parental_leave_from,osot_parental_leave_to,osot_parental_leave_expected,osot_retirement_start," +
	"osot_privilege,osot_access_modifier,createdon,modifiedon,_ownerid_value"

func (r *CategoryRepo) Create(ctx context.Context, rec categoryrepo.Record) (categoryrepo.Record, error) {
	body := map[string]any{
		"osot_membershipyear": rec.MembershipYear,
		"osot_category":       int(rec.Category),
		"osot_usergroup":      int(rec.UserGroup),
		"osot_privilege":      int(rec.Privilege),
		"osot_access_modifier": int(rec.AccessModifier),
	}
	if rec.AccountID != nil {
		body["osot_Account@odata.bind"] = fmt.Sprintf("/%s(%s)", accountSet, string(*rec.AccountID))
	}
	if rec.AffiliateID != nil {
		body["osot_Affiliate@odata.bind"] = fmt.Sprintf("/%s(%s)", affiliateSet, string(*rec.AffiliateID))
	}
	if rec.Eligibility != nil {
		body["osot_eligibility"] = int(*rec.Eligibility)
	}
	if rec.EligibilityAffiliate != nil {
		body["osot_eligibility_affiliate"] = int(*rec.EligibilityAffiliate)
	}
	if rec.ParentalLeaveFrom != nil {
		body["osot_parental_leave_from"] = rec.ParentalLeaveFrom.Format(dateOnly)
	}
	if rec.ParentalLeaveTo != nil {
		body["osot_parental_leave_to"] = rec.ParentalLeaveTo.Format(dateOnly)
	}
	if rec.ParentalLeaveExpected != nil {
		body["osot_parental_leave_expected"] = int(*rec.ParentalLeaveExpected)
	}
	if rec.RetirementStart != nil {
		body["osot_retirement_start"] = rec.RetirementStart.Format(dateOnly)
	}

	var row categoryRow
	if err := r.c.Post(ctx, categorySet+"?"+categorySelect, body, &row); err != nil {
		return categoryrepo.Record{}, err
	}
	return recordFromRow(row), nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, id domain.CategoryID) (categoryrepo.Record, error) {
	path := fmt.Sprintf("%s(%s)?%s", categorySet, string(id), categorySelect)
	var row categoryRow
	if err := r.c.Get(ctx, path, &row); err != nil {
		if errors.Is(err, ErrNotFound) {
			return categoryrepo.Record{}, categoryrepo.ErrNotFound
		}
		return categoryrepo.Record{}, err
	}
	return recordFromRow(row), nil
}

func (r *CategoryRepo) ListByUser(ctx context.Context, user domain.UserRef) ([]categoryrepo.Record, error) {
	path := fmt.Sprintf("%s?%s&$filter=%s&$orderby=osot_membershipyear desc,createdon desc",
		categorySet, categorySelect, userFilter(user))
	var page struct {
		Value []categoryRow `json:"value"`
	}
	if err := r.c.Get(ctx, path, &page); err != nil {
		return nil, err
	}
	out := make([]categoryrepo.Record, 0, len(page.Value))
	for _, row := range page.Value {
		out = append(out, recordFromRow(row))
	}
	return out, nil
}

func (r *CategoryRepo) ExistsForYear(ctx context.Context, user domain.UserRef, year string) (bool, error) {
	path := fmt.Sprintf("%s?$select=osot_membershipcategoryid&$filter=%s and osot_membershipyear eq %s&$top=1",
		categorySet, userFilter(user), odataQuote(year))
	var page struct {
		Value []categoryRow `json:"value"`
	}
	if err := r.c.Get(ctx, path, &page); err != nil {
		return false, err
	}
	return len(page.Value) > 0, nil
}

func (r *CategoryRepo) ParentalLeaveValuesUsed(ctx context.Context, user domain.UserRef) ([]domain.ParentalLeaveExpected, error) {
	path := fmt.Sprintf("%s?$select=osot_parental_leave_expected&$filter=%s and osot_parental_leave_expected ne null",
		categorySet, userFilter(user))
	var page struct {
		Value []categoryRow `json:"value"`
	}
	if err := r.c.Get(ctx, path, &page); err != nil {
		return nil, err
	}
	seen := make(map[domain.ParentalLeaveExpected]bool)
	out := make([]domain.ParentalLeaveExpected, 0, 2)
	for _, row := range page.Value {
		if row.ParentalLeaveExpected == nil {
			continue
		}
		v := domain.ParentalLeaveExpected(*row.ParentalLeaveExpected)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *CategoryRepo) Delete(ctx context.Context, id domain.CategoryID) error {
	path := fmt.Sprintf("%s(%s)", categorySet, string(id))
	if err := r.c.Delete(ctx, path); err != nil {
		if errors.Is(err, ErrNotFound) {
			return categoryrepo.ErrNotFound
		}
		return err
	}
	return nil
}

// userFilter builds the OData filter selecting the owning user's records.
// Lookup GUID values are unquoted in filter expressions.
func userFilter(user domain.UserRef) string {
	if user.Type == domain.UserTypeAffiliate {
		return fmt.Sprintf("_osot_affiliate_value eq %s", string(user.AffiliateID))
	}
	return fmt.Sprintf("_osot_account_value eq %s", string(user.AccountID))
}

func recordFromRow(row categoryRow) categoryrepo.Record {
	rec := categoryrepo.Record{
		ID:             domain.CategoryID(row.ID),
		BusinessID:     row.BusinessID,
		MembershipYear: row.MembershipYear,
	}
	if row.AccountID != nil {
		v := domain.AccountID(*row.AccountID)
		rec.AccountID = &v
	}
	if row.AffiliateID != nil {
		v := domain.AffiliateID(*row.AffiliateID)
		rec.AffiliateID = &v
	}
	if row.Category != nil {
		rec.Category = domain.Category(*row.Category)
	}
	if row.UserGroup != nil {
		rec.UserGroup = domain.UserGroup(*row.UserGroup)
	}
	if row.Eligibility != nil {
		v := domain.Eligibility(*row.Eligibility)
		rec.Eligibility = &v
	}
	if row.EligibilityAffiliate != nil {
		v := domain.AffiliateEligibility(*row.EligibilityAffiliate)
		rec.EligibilityAffiliate = &v
	}
	rec.ParentalLeaveFrom = parseDateOnly(row.ParentalLeaveFrom)
	rec.ParentalLeaveTo = parseDateOnly(row.ParentalLeaveTo)
	if row.ParentalLeaveExpected != nil {
		v := domain.ParentalLeaveExpected(*row.ParentalLeaveExpected)
		rec.ParentalLeaveExpected = &v
	}
	rec.RetirementStart = parseDateOnly(row.RetirementStart)
	if row.Privilege != nil {
		rec.Privilege = domain.Privilege(*row.Privilege)
	}
	if row.AccessModifier != nil {
		rec.AccessModifier = domain.AccessModifier(*row.AccessModifier)
	}
	if row.CreatedOn != nil {
		rec.CreatedOn = row.CreatedOn.UTC()
	}
	if row.ModifiedOn != nil {
		rec.ModifiedOn = row.ModifiedOn.UTC()
	}
	if row.OwnerID != nil {
		rec.OwnerID = *row.OwnerID
	}
	return rec
}

func parseDateOnly(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(dateOnly, *s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
