package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/osot/membership-api/internal/adapters/dataverse"
	"github.com/osot/membership-api/internal/adapters/httpapi"
	memaccountrepo "github.com/osot/membership-api/internal/adapters/memory/accountrepo"
	memaffiliaterepo "github.com/osot/membership-api/internal/adapters/memory/affiliaterepo"
	memcategoryrepo "github.com/osot/membership-api/internal/adapters/memory/categoryrepo"
	memeducationrepo "github.com/osot/membership-api/internal/adapters/memory/educationrepo"
	memidempotency "github.com/osot/membership-api/internal/adapters/memory/idempotency"
	memreservation "github.com/osot/membership-api/internal/adapters/memory/reservation"
	memyearprovider "github.com/osot/membership-api/internal/adapters/memory/yearprovider"
	"github.com/osot/membership-api/internal/adapters/postgres"
	pgidempotency "github.com/osot/membership-api/internal/adapters/postgres/idempotency"
	pgreservation "github.com/osot/membership-api/internal/adapters/postgres/reservation"
	"github.com/osot/membership-api/internal/app/categories"
	"github.com/osot/membership-api/internal/app/usergroup"
	"github.com/osot/membership-api/internal/platform/auth/jwtverifier"
	platformclock "github.com/osot/membership-api/internal/platform/clock"
	"github.com/osot/membership-api/internal/platform/config"
	accountrepoport "github.com/osot/membership-api/internal/ports/out/accountrepo"
	affiliaterepoport "github.com/osot/membership-api/internal/ports/out/affiliaterepo"
	categoryrepoport "github.com/osot/membership-api/internal/ports/out/categoryrepo"
	educationrepoport "github.com/osot/membership-api/internal/ports/out/educationrepo"
	idempotencyport "github.com/osot/membership-api/internal/ports/out/idempotency"
	reservationport "github.com/osot/membership-api/internal/ports/out/reservation"
	yearproviderport "github.com/osot/membership-api/internal/ports/out/yearprovider"
)

func main() {
	log, err := newLogger()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "8080")

	// Auth configuration:
	// - Production: require JWT_* env vars and enforce bearer auth
	// - Local dev: set AUTH_MODE=dev to bypass JWT verification and use X-Debug-Subject
	authMode := getenv("AUTH_MODE", "jwt")
	var authMW func(http.Handler) http.Handler
	authIssuer := ""
	switch authMode {
	case "dev":
		authMW = httpapi.NewDevAuthMiddleware(getenv("DEV_SUBJECT", "dev|local"))
		authIssuer = getenv("DEV_ISSUER", "dev")
	default:
		jwtCfg, err := config.LoadJWTConfigFromEnv()
		if err != nil {
			log.Fatal("invalid auth config", zap.Error(err))
		}
		verifier := jwtverifier.New(jwtCfg)
		authMW = httpapi.NewAuthMiddleware(verifier)
		authIssuer = jwtCfg.Issuer
	}

	clk := platformclock.NewSystemClock()

	// Business data backend:
	// - Production: the external platform (Dataverse Web API)
	// - Local dev: in-memory repositories seeded via the dev tooling
	storageBackend := getenv("STORAGE_BACKEND", "dataverse")
	var (
		accountRepo   accountrepoport.Repository
		affiliateRepo affiliaterepoport.Repository
		educationRepo educationrepoport.Repository
		categoryRepo  categoryrepoport.Repository
		years         yearproviderport.Provider
	)
	switch storageBackend {
	case "memory":
		accountRepo = memaccountrepo.NewRepo()
		affiliateRepo = memaffiliaterepo.NewRepo()
		educationRepo = memeducationrepo.NewRepo()
		categoryRepo = memcategoryrepo.NewRepo()
		years = memyearprovider.NewProvider(getenv("MEMBERSHIP_YEAR", ""))
	default:
		dvCfg, err := config.LoadDataverseConfigFromEnv()
		if err != nil {
			log.Fatal("invalid dataverse config", zap.Error(err))
		}
		client := dataverse.NewClient(dvCfg, log)
		accountRepo = dataverse.NewAccountRepo(client)
		affiliateRepo = dataverse.NewAffiliateRepo(client)
		educationRepo = dataverse.NewEducationRepo(client)
		categoryRepo = dataverse.NewCategoryRepo(client)
		years = dataverse.NewYearProvider(client)
	}

	// Reservations and idempotency live in Postgres when DATABASE_URL is set;
	// otherwise a single-process in-memory store (dev only: the uniqueness
	// guarantees do not span replicas).
	var (
		reservations reservationport.Store
		idemStore    idempotencyport.Store
	)
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		pool, err := postgres.NewPool(context.Background(), dsn, postgres.PoolOptions{})
		if err != nil {
			log.Fatal("invalid postgres config", zap.Error(err))
		}
		defer pool.Close()
		reservations = pgreservation.NewStore(pool)
		idemStore = pgidempotency.NewStore(pool, authIssuer)
	} else {
		log.Warn("DATABASE_URL not set; using in-memory reservation/idempotency stores")
		reservations = memreservation.NewStore()
		idemStore = memidempotency.NewStore()
	}

	groups := usergroup.NewService(educationRepo, log)
	categorySvc := categories.NewService(categoryRepo, accountRepo, affiliateRepo, groups, years, reservations, clk)

	api := httpapi.NewServer(categorySvc, idemStore)
	handler := httpapi.NewRouter(api, authMW, log)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("api listening", zap.String("port", port), zap.String("storage", storageBackend), zap.String("auth", authMode))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func newLogger() (*zap.Logger, error) {
	if getenv("LOG_FORMAT", "json") == "console" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
