package educationrepo

import (
	"context"
	"errors"

	"github.com/osot/membership-api/internal/domain"
)

// ErrNotFound indicates no education record exists for the account.
var ErrNotFound = errors.New("education record not found")

// Education is the most recent education record for an account in either the
// OT or OTA education table.
type Education struct {
	AccountID      domain.AccountID
	Category       domain.EducationCategory
	GraduationYear *int
}

// Repository provides read access to the two education tables. The OT and OTA
// tables are distinct on the platform; which one applies is decided by the
// account group.
type Repository interface {
	// LatestOT returns the account's most recent OT education record.
	LatestOT(ctx context.Context, accountID domain.AccountID) (Education, error)
	// LatestOTA returns the account's most recent OTA education record.
	LatestOTA(ctx context.Context, accountID domain.AccountID) (Education, error)
}
