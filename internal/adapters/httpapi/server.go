package httpapi

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/osot/membership-api/internal/app/categories"
	"github.com/osot/membership-api/internal/domain"
	"github.com/osot/membership-api/internal/ports/out/idempotency"
)

const createCategoryRoute = "/private/membership-categories/me"

// Server is the HTTP adapter. It decodes requests, delegates to the
// application service and renders responses/errors.
type Server struct {
	Categories *categories.Service
	Idem       idempotency.Store
}

func NewServer(categoriesSvc *categories.Service, idem idempotency.Store) *Server {
	return &Server{Categories: categoriesSvc, Idem: idem}
}

func (s *Server) CreateMyMembershipCategory(w http.ResponseWriter, r *http.Request) {
	sub, ok := SubjectFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing subject", nil)
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unreadable request body", nil)
		return
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}

	var req CreateMembershipCategoryRequest
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}

	// Idempotency handling:
	// - Replay if same actor+key+route+bodyHash
	// - Reject if same actor+key+route with different bodyHash (409)
	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	bodyHash := hashBody(raw)
	if s.Idem != nil && idemKey != "" {
		metaFP := idempotency.Fingerprint{
			Key:      idempotency.Key(idemKey),
			Subject:  domain.SubjectID(sub),
			Method:   http.MethodPost,
			Route:    createCategoryRoute,
			BodyHash: "",
		}
		if meta, ok, err := s.Idem.Get(r.Context(), metaFP); err != nil {
			writeAppError(w, r, err)
			return
		} else if ok {
			if string(meta.Body) != bodyHash {
				writeError(w, r, http.StatusConflict, "IDEMPOTENCY_KEY_REUSE", "idempotency key reuse with different payload", nil)
				return
			}
		} else {
			_ = s.Idem.Put(r.Context(), metaFP, idempotency.Record{
				StatusCode:  0,
				ContentType: "text/plain",
				Body:        []byte(bodyHash),
				CreatedAt:   time.Now().UTC(),
			})
		}

		respFP := metaFP
		respFP.BodyHash = bodyHash
		if rec, ok, err := s.Idem.Get(r.Context(), respFP); err != nil {
			writeAppError(w, r, err)
			return
		} else if ok && rec.StatusCode == http.StatusCreated && strings.HasPrefix(rec.ContentType, "application/json") {
			w.Header().Set("Content-Type", rec.ContentType)
			w.WriteHeader(rec.StatusCode)
			_, _ = w.Write(rec.Body)
			return
		}
	}

	created, err := s.Categories.CreateMyCategory(r.Context(), domain.SubjectID(sub), createInputFromDTO(req))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	resp := CreateMembershipCategoryResponse{
		Category:      membershipCategoryFromDomain(created.Record),
		Determination: determinationFromApp(created.Determination),
	}

	if s.Idem != nil && idemKey != "" {
		respFP := idempotency.Fingerprint{
			Key:      idempotency.Key(idemKey),
			Subject:  domain.SubjectID(sub),
			Method:   http.MethodPost,
			Route:    createCategoryRoute,
			BodyHash: bodyHash,
		}
		if b, err := json.Marshal(resp); err == nil {
			_ = s.Idem.Put(r.Context(), respFP, idempotency.Record{
				StatusCode:  http.StatusCreated,
				ContentType: "application/json",
				Body:        b,
				CreatedAt:   time.Now().UTC(),
			})
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) ListMyMembershipCategories(w http.ResponseWriter, r *http.Request) {
	sub, ok := SubjectFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing subject", nil)
		return
	}

	recs, err := s.Categories.ListMyCategories(r.Context(), domain.SubjectID(sub))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	out := make([]MembershipCategoryDTO, 0, len(recs))
	for _, rec := range recs {
		out = append(out, membershipCategoryFromDomain(rec))
	}
	writeJSON(w, http.StatusOK, ListMembershipCategoriesResponse{Categories: out})
}

func (s *Server) GetMyParentalLeaveOptions(w http.ResponseWriter, r *http.Request) {
	sub, ok := SubjectFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing subject", nil)
		return
	}

	opts, err := s.Categories.MyParentalLeaveOptions(r.Context(), domain.SubjectID(sub))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ParentalLeaveOptionsResponse{
		Available: parentalLeaveEnumValues(opts.Available),
		Used:      parentalLeaveEnumValues(opts.Used),
	})
}

func (s *Server) GetMyEligibilityOptions(w http.ResponseWriter, r *http.Request) {
	sub, ok := SubjectFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing subject", nil)
		return
	}

	opts, err := s.Categories.MyEligibilityOptions(r.Context(), domain.SubjectID(sub))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, eligibilityOptionsFromApp(opts))
}

func (s *Server) DeleteMembershipCategory(w http.ResponseWriter, r *http.Request) {
	sub, ok := SubjectFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing subject", nil)
		return
	}

	id := chi.URLParam(r, "categoryID")
	if strings.TrimSpace(id) == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "missing categoryID", nil)
		return
	}

	if err := s.Categories.DeleteCategory(r.Context(), domain.SubjectID(sub), domain.CategoryID(id)); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func hashBody(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
