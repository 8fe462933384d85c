package dataverse

import (
	"context"
	"fmt"

	"github.com/osot/membership-api/internal/domain"
	"github.com/osot/membership-api/internal/ports/out/affiliaterepo"
)

const affiliateSet = "osot_affiliates"

// AffiliateRepo is the Dataverse implementation of affiliaterepo.Repository.
type AffiliateRepo struct {
	c *Client
}

func NewAffiliateRepo(c *Client) *AffiliateRepo {
	return &AffiliateRepo{c: c}
}

type affiliateRow struct {
	ID           string `json:"osot_affiliateid"`
	BusinessID   string `json:"osot_businessid"`
	Subject      string `json:"osot_subjectid"`
	Status       *int   `json:"osot_accountstatus"`
	ActiveMember *bool  `json:"osot_activemember"`
}

const affiliateSelect = "$select=osot_affiliateid,osot_businessid,osot_subjectid,osot_accountstatus,osot_activemember"

func (r *AffiliateRepo) GetBySubject(ctx context.Context, subject domain.SubjectID) (affiliaterepo.Affiliate, error) {
	path := fmt.Sprintf("%s?%s&$filter=osot_subjectid eq %s&$top=1",
		affiliateSet, affiliateSelect, odataQuote(string(subject)))
	return r.getOne(ctx, path)
}

func (r *AffiliateRepo) GetByBusinessID(ctx context.Context, businessID string) (affiliaterepo.Affiliate, error) {
	path := fmt.Sprintf("%s?%s&$filter=osot_businessid eq %s&$top=1",
		affiliateSet, affiliateSelect, odataQuote(businessID))
	return r.getOne(ctx, path)
}

func (r *AffiliateRepo) getOne(ctx context.Context, path string) (affiliaterepo.Affiliate, error) {
	var page struct {
		Value []affiliateRow `json:"value"`
	}
	if err := r.c.Get(ctx, path, &page); err != nil {
		return affiliaterepo.Affiliate{}, err
	}
	if len(page.Value) == 0 {
		return affiliaterepo.Affiliate{}, affiliaterepo.ErrNotFound
	}
	row := page.Value[0]
	a := affiliaterepo.Affiliate{
		ID:         domain.AffiliateID(row.ID),
		BusinessID: row.BusinessID,
		Subject:    domain.SubjectID(row.Subject),
	}
	if row.Status != nil {
		a.Status = domain.AccountStatus(*row.Status)
	}
	if row.ActiveMember != nil {
		a.ActiveMember = *row.ActiveMember
	}
	return a, nil
}
