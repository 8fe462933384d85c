package itest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/osot/membership-api/internal/adapters/httpapi"
	memaccountrepo "github.com/osot/membership-api/internal/adapters/memory/accountrepo"
	memaffiliaterepo "github.com/osot/membership-api/internal/adapters/memory/affiliaterepo"
	memcategoryrepo "github.com/osot/membership-api/internal/adapters/memory/categoryrepo"
	memclock "github.com/osot/membership-api/internal/adapters/memory/clock"
	memeducationrepo "github.com/osot/membership-api/internal/adapters/memory/educationrepo"
	memidempotency "github.com/osot/membership-api/internal/adapters/memory/idempotency"
	memreservation "github.com/osot/membership-api/internal/adapters/memory/reservation"
	memyearprovider "github.com/osot/membership-api/internal/adapters/memory/yearprovider"
	pgidempotency "github.com/osot/membership-api/internal/adapters/postgres/idempotency"
	pgreservation "github.com/osot/membership-api/internal/adapters/postgres/reservation"
	postgres_testutil "github.com/osot/membership-api/internal/adapters/postgres/testutil"
	"github.com/osot/membership-api/internal/app/categories"
	"github.com/osot/membership-api/internal/app/usergroup"
	"github.com/osot/membership-api/internal/domain"
	"github.com/osot/membership-api/internal/ports/out/accountrepo"
	"github.com/osot/membership-api/internal/ports/out/affiliaterepo"
	"github.com/osot/membership-api/internal/ports/out/educationrepo"
	idempotencyport "github.com/osot/membership-api/internal/ports/out/idempotency"
	reservationport "github.com/osot/membership-api/internal/ports/out/reservation"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendPostgres backend = "postgres"
)

// backendsFromEnv selects which durable stores back the reservation and
// idempotency ports. Platform record repos stay in memory either way; the
// live Dataverse adapter is exercised only against a real environment.
func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|postgres|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	client  *http.Client

	accounts   *memaccountrepo.Repo
	affiliates *memaffiliaterepo.Repo
	education  *memeducationrepo.Repo
	years      *memyearprovider.Provider
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	const issuer = "itest-issuer"
	clk := memclock.NewManualClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	ts := &testServer{
		accounts:   memaccountrepo.NewRepo(),
		affiliates: memaffiliaterepo.NewRepo(),
		education:  memeducationrepo.NewRepo(),
		years:      memyearprovider.NewProvider("2025"),
	}

	var (
		reservations reservationport.Store
		idemStore    idempotencyport.Store
	)
	switch b {
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t)
		reservations = pgreservation.NewStore(pool)
		idemStore = pgidempotency.NewStore(pool, issuer)
	case backendMemory:
		reservations = memreservation.NewStore()
		idemStore = memidempotency.NewStore()
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	groups := usergroup.NewService(ts.education, zap.NewNop())
	svc := categories.NewService(
		memcategoryrepo.NewRepo(),
		ts.accounts,
		ts.affiliates,
		groups,
		ts.years,
		reservations,
		clk,
	)
	api := httpapi.NewServer(svc, idemStore)

	// Dev auth keeps the suite local and deterministic. The empty default
	// subject forces every request to name one, so 401 paths stay coverable.
	handler := httpapi.NewRouter(api, httpapi.NewDevAuthMiddleware(""), nil)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ts.baseURL = srv.URL
	ts.client = srv.Client()
	return ts
}

func (s *testServer) seedOT(sub domain.SubjectID, id domain.AccountID, edu domain.EducationCategory) {
	s.accounts.Put(accountrepo.Account{
		ID:           id,
		BusinessID:   "osot-acct-0000001",
		Subject:      sub,
		AccountGroup: domain.AccountGroupOccupationalTherapist,
		Status:       domain.AccountStatusActive,
	})
	s.education.PutOT(educationrepo.Education{AccountID: id, Category: edu})
}

func (s *testServer) seedAffiliate(sub domain.SubjectID, id domain.AffiliateID) {
	s.affiliates.Put(affiliaterepo.Affiliate{
		ID:         id,
		BusinessID: "osot-aff-0000001",
		Subject:    sub,
		Status:     domain.AccountStatusActive,
	})
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, subject string, body any, extra map[string]string) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if subject != "" {
		req.Header.Set("X-Debug-Subject", subject)
	}
	for k, v := range extra {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
}
