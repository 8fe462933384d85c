package dataverse

import (
	"context"
	"fmt"

	"github.com/osot/membership-api/internal/domain"
	"github.com/osot/membership-api/internal/ports/out/educationrepo"
)

const (
	educationOTSet  = "osot_educationots"
	educationOTASet = "osot_educationotas"
)

// EducationRepo is the Dataverse implementation of educationrepo.Repository.
// The OT and OTA education tables share one wire shape.
type EducationRepo struct {
	c *Client
}

func NewEducationRepo(c *Client) *EducationRepo {
	return &EducationRepo{c: c}
}

type educationRow struct {
	AccountID      string `json:"_osot_account_value"`
	Category       *int   `json:"osot_educationcategory"`
	GraduationYear *int   `json:"osot_graduationyear"`
}

func (r *EducationRepo) LatestOT(ctx context.Context, accountID domain.AccountID) (educationrepo.Education, error) {
	return r.latest(ctx, educationOTSet, accountID)
}

func (r *EducationRepo) LatestOTA(ctx context.Context, accountID domain.AccountID) (educationrepo.Education, error) {
	return r.latest(ctx, educationOTASet, accountID)
}

func (r *EducationRepo) latest(ctx context.Context, set string, accountID domain.AccountID) (educationrepo.Education, error) {
	path := fmt.Sprintf(
		"%s?$select=_osot_account_value,osot_educationcategory,osot_graduationyear&$filter=_osot_account_value eq %s&$orderby=createdon desc&$top=1",
		set, string(accountID))
	var page struct {
		Value []educationRow `json:"value"`
	}
	if err := r.c.Get(ctx, path, &page); err != nil {
		return educationrepo.Education{}, err
	}
	if len(page.Value) == 0 {
		return educationrepo.Education{}, educationrepo.ErrNotFound
	}
	row := page.Value[0]
	e := educationrepo.Education{AccountID: domain.AccountID(row.AccountID)}
	if row.Category != nil {
		e.Category = domain.EducationCategory(*row.Category)
	}
	if row.GraduationYear != nil {
		v := *row.GraduationYear
		e.GraduationYear = &v
	}
	return e, nil
}
