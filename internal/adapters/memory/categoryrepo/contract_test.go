package categoryrepo

import (
	"testing"

	"github.com/osot/membership-api/internal/adapters/contracttest"
	categoryrepoport "github.com/osot/membership-api/internal/ports/out/categoryrepo"
)

func TestContract_CategoryRepo(t *testing.T) {
	contracttest.RunCategoryRepo(t, func(t *testing.T) (categoryrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	})
}
