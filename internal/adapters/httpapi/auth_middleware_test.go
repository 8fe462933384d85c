package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	memaccountrepo "github.com/osot/membership-api/internal/adapters/memory/accountrepo"
	memaffiliaterepo "github.com/osot/membership-api/internal/adapters/memory/affiliaterepo"
	memcategoryrepo "github.com/osot/membership-api/internal/adapters/memory/categoryrepo"
	memclock "github.com/osot/membership-api/internal/adapters/memory/clock"
	memeducationrepo "github.com/osot/membership-api/internal/adapters/memory/educationrepo"
	memidempotency "github.com/osot/membership-api/internal/adapters/memory/idempotency"
	memreservation "github.com/osot/membership-api/internal/adapters/memory/reservation"
	memyearprovider "github.com/osot/membership-api/internal/adapters/memory/yearprovider"
	"github.com/osot/membership-api/internal/app/categories"
	"github.com/osot/membership-api/internal/app/usergroup"
	"github.com/osot/membership-api/internal/platform/auth/jwks_testutil"
	"github.com/osot/membership-api/internal/platform/auth/jwtverifier"
	"github.com/osot/membership-api/internal/platform/config"
	"go.uber.org/zap"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newBareServer() *Server {
	groups := usergroup.NewService(memeducationrepo.NewRepo(), zap.NewNop())
	svc := categories.NewService(
		memcategoryrepo.NewRepo(),
		memaccountrepo.NewRepo(),
		memaffiliaterepo.NewRepo(),
		groups,
		memyearprovider.NewProvider("2025"),
		memreservation.NewStore(),
		memclock.NewManualClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
	)
	return NewServer(svc, memidempotency.NewStore())
}

func newTestAuthRouter(t *testing.T) (http.Handler, func(sub string) string) {
	t.Helper()

	jwksSrv, setKeys := jwks_testutil.NewRotatingJWKSServer()
	t.Cleanup(jwksSrv.Close)

	kp, err := jwks_testutil.GenerateRSAKeypair("kid-1")
	if err != nil {
		t.Fatalf("GenerateRSAKeypair: %v", err)
	}
	setKeys([]jwks_testutil.Keypair{kp})

	cfg := config.JWTConfig{
		Issuer:                 "https://login.osot.test/",
		Audience:               "osot-membership",
		JWKSURL:                jwksSrv.URL,
		ClockSkew:              0,
		JWKSRefreshInterval:    10 * time.Minute,
		JWKSMinRefreshInterval: 0,
		HTTPTimeout:            2 * time.Second,
	}
	clk := fixedClock{t: time.Unix(1700000000, 0)}
	v := jwtverifier.NewWithOptions(cfg, nil, clk)

	mint := func(sub string) string {
		jwt, err := jwks_testutil.MintRS256JWT(kp, cfg.Issuer, cfg.Audience, sub, clk.Now(), 5*time.Minute, nil)
		if err != nil {
			t.Fatalf("MintRS256JWT: %v", err)
		}
		return jwt
	}

	h := NewRouter(newBareServer(), NewAuthMiddleware(v), nil)
	return h, mint
}

func TestAuthMiddleware_MissingHeader_401(t *testing.T) {
	t.Parallel()

	h, _ := newTestAuthRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/private/membership-categories/me", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d want %d", rec.Code, http.StatusUnauthorized)
	}
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if er.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("code: got %q", er.Error.Code)
	}
	if er.Error.RequestID == "" {
		t.Fatalf("expected requestId to be set")
	}
}

func TestAuthMiddleware_MalformedHeader_401(t *testing.T) {
	t.Parallel()

	h, _ := newTestAuthRouter(t)

	for _, authz := range []string{"Basic abc", "Bearer", "Bearer   "} {
		req := httptest.NewRequest(http.MethodGet, "/private/membership-categories/me", nil)
		req.Header.Set("Authorization", authz)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("authz %q: status got %d want %d", authz, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestAuthMiddleware_InvalidToken_401(t *testing.T) {
	t.Parallel()

	h, _ := newTestAuthRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/private/membership-categories/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_ValidToken_ReachesHandler(t *testing.T) {
	t.Parallel()

	h, mint := newTestAuthRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/private/membership-categories/me", nil)
	req.Header.Set("Authorization", "Bearer "+mint("auth0|member-123"))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	// The subject is unknown to the platform, so the handler answers 404
	// rather than 401: auth succeeded.
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d want %d (body %s)", rec.Code, http.StatusNotFound, rec.Body.String())
	}
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if er.Error.Code != "USER_NOT_PROVISIONED" {
		t.Fatalf("code: got %q", er.Error.Code)
	}
}

func TestAuthMiddleware_HealthzBypassesAuth(t *testing.T) {
	t.Parallel()

	h, _ := newTestAuthRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want %d", rec.Code, http.StatusOK)
	}
}
