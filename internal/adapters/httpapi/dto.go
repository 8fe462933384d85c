package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/osot/membership-api/internal/app/categories"
	"github.com/osot/membership-api/internal/domain"
)

// CreateMembershipCategoryRequest is the POST body for self-registration.
// Dates use nullable so clients can distinguish "absent" from an explicit null;
// both are treated as not-provided.
type CreateMembershipCategoryRequest struct {
	Eligibility          *int `json:"eligibility,omitempty"`
	EligibilityAffiliate *int `json:"eligibilityAffiliate,omitempty"`

	ParentalLeaveFrom     nullable.Nullable[openapi_types.Date] `json:"parentalLeaveFrom,omitempty"`
	ParentalLeaveTo       nullable.Nullable[openapi_types.Date] `json:"parentalLeaveTo,omitempty"`
	ParentalLeaveExpected *int                                  `json:"parentalLeaveExpected,omitempty"`
	RetirementStart       nullable.Nullable[openapi_types.Date] `json:"retirementStart,omitempty"`
}

// EnumValue pairs a wire value with its display label so clients never hardcode
// the label tables.
type EnumValue struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// MembershipCategoryDTO is the wire representation of a membership-category record.
type MembershipCategoryDTO struct {
	CategoryID string `json:"categoryId"`
	BusinessID string `json:"businessId"`

	AccountID   *string `json:"accountId,omitempty"`
	AffiliateID *string `json:"affiliateId,omitempty"`

	MembershipYear string `json:"membershipYear"`

	Category  EnumValue `json:"category"`
	UserGroup EnumValue `json:"userGroup"`

	Eligibility          *EnumValue `json:"eligibility,omitempty"`
	EligibilityAffiliate *EnumValue `json:"eligibilityAffiliate,omitempty"`

	ParentalLeaveFrom     *openapi_types.Date `json:"parentalLeaveFrom,omitempty"`
	ParentalLeaveTo       *openapi_types.Date `json:"parentalLeaveTo,omitempty"`
	ParentalLeaveExpected *EnumValue          `json:"parentalLeaveExpected,omitempty"`
	RetirementStart       *openapi_types.Date `json:"retirementStart,omitempty"`

	Privilege      EnumValue `json:"privilege"`
	AccessModifier EnumValue `json:"accessModifier"`

	CreatedOn  time.Time `json:"createdOn"`
	ModifiedOn time.Time `json:"modifiedOn"`
}

// DeterminationDTO explains how the category was derived.
type DeterminationDTO struct {
	UserGroup           EnumValue `json:"userGroup"`
	Category            EnumValue `json:"category"`
	RequiresEligibility bool      `json:"requiresEligibility"`
	RequiredDateFields  []string  `json:"requiredDateFields"`
}

type CreateMembershipCategoryResponse struct {
	Category      MembershipCategoryDTO `json:"category"`
	Determination DeterminationDTO      `json:"determination"`
}

type ListMembershipCategoriesResponse struct {
	Categories []MembershipCategoryDTO `json:"categories"`
}

type ParentalLeaveOptionsResponse struct {
	Available []EnumValue `json:"available"`
	Used      []EnumValue `json:"used"`
}

type EligibilityOptionsResponse struct {
	UserGroup EnumValue `json:"userGroup"`
	Required  bool      `json:"required"`

	Options          []EnumValue `json:"options"`
	AffiliateOptions []EnumValue `json:"affiliateOptions,omitempty"`
}

func createInputFromDTO(req CreateMembershipCategoryRequest) categories.CreateInput {
	var in categories.CreateInput
	if req.Eligibility != nil {
		e := domain.Eligibility(*req.Eligibility)
		in.Eligibility = &e
	}
	if req.EligibilityAffiliate != nil {
		e := domain.AffiliateEligibility(*req.EligibilityAffiliate)
		in.EligibilityAffiliate = &e
	}
	if req.ParentalLeaveExpected != nil {
		p := domain.ParentalLeaveExpected(*req.ParentalLeaveExpected)
		in.ParentalLeaveExpected = &p
	}
	in.ParentalLeaveFrom = dateValue(req.ParentalLeaveFrom)
	in.ParentalLeaveTo = dateValue(req.ParentalLeaveTo)
	in.RetirementStart = dateValue(req.RetirementStart)
	return in
}

func dateValue(n nullable.Nullable[openapi_types.Date]) *time.Time {
	if !n.IsSpecified() || n.IsNull() {
		return nil
	}
	d, err := n.Get()
	if err != nil {
		return nil
	}
	t := d.Time
	return &t
}

func datePtr(t *time.Time) *openapi_types.Date {
	if t == nil {
		return nil
	}
	return &openapi_types.Date{Time: *t}
}

func membershipCategoryFromDomain(m domain.MembershipCategory) MembershipCategoryDTO {
	out := MembershipCategoryDTO{
		CategoryID:     string(m.ID),
		BusinessID:     m.BusinessID,
		MembershipYear: m.MembershipYear,

		Category:  EnumValue{Value: int(m.Category), Label: m.Category.String()},
		UserGroup: EnumValue{Value: int(m.UserGroup), Label: m.UserGroup.String()},

		Privilege:      EnumValue{Value: int(m.Privilege), Label: m.Privilege.String()},
		AccessModifier: EnumValue{Value: int(m.AccessModifier), Label: m.AccessModifier.String()},

		CreatedOn:  m.CreatedOn,
		ModifiedOn: m.ModifiedOn,
	}
	if m.AccountID != nil {
		s := string(*m.AccountID)
		out.AccountID = &s
	}
	if m.AffiliateID != nil {
		s := string(*m.AffiliateID)
		out.AffiliateID = &s
	}
	if m.Eligibility != nil {
		out.Eligibility = &EnumValue{Value: int(*m.Eligibility), Label: m.Eligibility.String()}
	}
	if m.EligibilityAffiliate != nil {
		out.EligibilityAffiliate = &EnumValue{Value: int(*m.EligibilityAffiliate), Label: m.EligibilityAffiliate.String()}
	}
	if m.ParentalLeaveExpected != nil {
		out.ParentalLeaveExpected = &EnumValue{Value: int(*m.ParentalLeaveExpected), Label: m.ParentalLeaveExpected.String()}
	}
	out.ParentalLeaveFrom = datePtr(m.ParentalLeaveFrom)
	out.ParentalLeaveTo = datePtr(m.ParentalLeaveTo)
	out.RetirementStart = datePtr(m.RetirementStart)
	return out
}

func determinationFromApp(d categories.Determination) DeterminationDTO {
	fields := d.RequiredDateFields
	if fields == nil {
		fields = []string{}
	}
	return DeterminationDTO{
		UserGroup:           EnumValue{Value: int(d.UserGroup), Label: d.UserGroup.String()},
		Category:            EnumValue{Value: int(d.Category), Label: d.Category.String()},
		RequiresEligibility: d.RequiresEligibility,
		RequiredDateFields:  fields,
	}
}

func parentalLeaveEnumValues(opts []domain.ParentalLeaveExpected) []EnumValue {
	out := make([]EnumValue, 0, len(opts))
	for _, o := range opts {
		out = append(out, EnumValue{Value: int(o), Label: o.String()})
	}
	return out
}

func eligibilityOptionsFromApp(o categories.EligibilityOptions) EligibilityOptionsResponse {
	resp := EligibilityOptionsResponse{
		UserGroup: EnumValue{Value: int(o.UserGroup), Label: o.UserGroup.String()},
		Required:  o.Required,
		Options:   make([]EnumValue, 0, len(o.Options)),
	}
	for _, opt := range o.Options {
		resp.Options = append(resp.Options, EnumValue{Value: int(opt.Value), Label: opt.Label})
	}
	for _, opt := range o.AffiliateOptions {
		resp.AffiliateOptions = append(resp.AffiliateOptions, EnumValue{Value: int(opt.Value), Label: opt.Label})
	}
	return resp
}
