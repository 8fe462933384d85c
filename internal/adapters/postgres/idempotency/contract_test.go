package idempotency

import (
	"testing"

	"github.com/osot/membership-api/internal/adapters/contracttest"
	"github.com/osot/membership-api/internal/adapters/postgres/testutil"
	idempotencyport "github.com/osot/membership-api/internal/ports/out/idempotency"
)

func TestContract_PostgresIdempotencyStore(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)
	issuer := "https://issuer.test"

	contracttest.RunIdempotencyStore(t, func(t *testing.T) (idempotencyport.Store, func()) {
		t.Helper()
		return NewStore(pool, issuer), nil
	})
}
