package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter constructs the API HTTP router.
//
// This is intentionally a thin adapter:
// - handlers decode/encode the wire format and delegate to the app services
// - this function wires routes/middleware; auth is injected so tests and the
//   dev binary can swap in the debug middleware
func NewRouter(srv *Server, auth func(http.Handler) http.Handler, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Baseline production-safe middleware (minimal but useful).
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if log != nil {
		r.Use(requestLogger(log))
	}

	// Health endpoint is deliberately out-of-spec (used for infra checks).
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		if auth != nil {
			r.Use(auth)
		}
		r.Route("/private/membership-categories", func(r chi.Router) {
			r.Post("/me", srv.CreateMyMembershipCategory)
			r.Get("/me", srv.ListMyMembershipCategories)
			r.Get("/me/parental-leave-options", srv.GetMyParentalLeaveOptions)
			r.Get("/me/eligibility-options", srv.GetMyEligibilityOptions)
			r.Delete("/{categoryID}", srv.DeleteMembershipCategory)
		})
	})

	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
