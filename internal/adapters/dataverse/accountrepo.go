package dataverse

import (
	"context"
	"fmt"

	"github.com/osot/membership-api/internal/domain"
	"github.com/osot/membership-api/internal/ports/out/accountrepo"
)

const accountSet = "osot_accounts"

// AccountRepo is the Dataverse implementation of accountrepo.Repository.
type AccountRepo struct {
	c *Client
}

func NewAccountRepo(c *Client) *AccountRepo {
	return &AccountRepo{c: c}
}

type accountRow struct {
	ID           string `json:"osot_accountid"`
	BusinessID   string `json:"osot_businessid"`
	Subject      string `json:"osot_subjectid"`
	AccountGroup *int   `json:"osot_accountgroup"`
	Status       *int   `json:"osot_accountstatus"`
	ActiveMember *bool  `json:"osot_activemember"`
}

const accountSelect = "$select=osot_accountid,osot_businessid,osot_subjectid,osot_accountgroup,osot_accountstatus,osot_activemember"

func (r *AccountRepo) GetBySubject(ctx context.Context, subject domain.SubjectID) (accountrepo.Account, error) {
	path := fmt.Sprintf("%s?%s&$filter=osot_subjectid eq %s&$top=1",
		accountSet, accountSelect, odataQuote(string(subject)))
	return r.getOne(ctx, path)
}

func (r *AccountRepo) GetByBusinessID(ctx context.Context, businessID string) (accountrepo.Account, error) {
	path := fmt.Sprintf("%s?%s&$filter=osot_businessid eq %s&$top=1",
		accountSet, accountSelect, odataQuote(businessID))
	return r.getOne(ctx, path)
}

func (r *AccountRepo) getOne(ctx context.Context, path string) (accountrepo.Account, error) {
	var page struct {
		Value []accountRow `json:"value"`
	}
	if err := r.c.Get(ctx, path, &page); err != nil {
		return accountrepo.Account{}, err
	}
	if len(page.Value) == 0 {
		return accountrepo.Account{}, accountrepo.ErrNotFound
	}
	return accountFromRow(page.Value[0]), nil
}

func accountFromRow(row accountRow) accountrepo.Account {
	a := accountrepo.Account{
		ID:         domain.AccountID(row.ID),
		BusinessID: row.BusinessID,
		Subject:    domain.SubjectID(row.Subject),
	}
	if row.AccountGroup != nil {
		a.AccountGroup = domain.AccountGroup(*row.AccountGroup)
	}
	if row.Status != nil {
		a.Status = domain.AccountStatus(*row.Status)
	}
	if row.ActiveMember != nil {
		a.ActiveMember = *row.ActiveMember
	}
	return a
}
