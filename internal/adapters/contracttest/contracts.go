package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/osot/membership-api/internal/domain"
	categoryrepoport "github.com/osot/membership-api/internal/ports/out/categoryrepo"
	idempotencyport "github.com/osot/membership-api/internal/ports/out/idempotency"
	reservationport "github.com/osot/membership-api/internal/ports/out/reservation"
)

type CleanupFunc = func()

type CategoryRepoFactory func(t *testing.T) (categoryrepoport.Repository, CleanupFunc)
type ReservationStoreFactory func(t *testing.T) (reservationport.Store, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:      "k-1",
		Subject:  domain.SubjectID("sub-1"),
		Method:   "POST",
		Route:    "/private/membership-categories/me",
		BodyHash: "",
	}
	rec := idempotencyport.Record{
		StatusCode:  0,
		ContentType: "text/plain",
		Body:        []byte("hash-abc"),
		CreatedAt:   time.Unix(123, 0).UTC(),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != "hash-abc" || got.ContentType != "text/plain" || got.StatusCode != 0 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte("hash-def")
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || string(got.Body) != "hash-def" {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}

	// Fingerprints differing only in BodyHash are distinct entries.
	fp2 := fp
	fp2.BodyHash = "deadbeef"
	if _, ok, err := store.Get(ctx, fp2); err != nil || ok {
		t.Fatalf("expected miss for distinct fingerprint, got ok=%v err=%v", ok, err)
	}
}

func RunReservationStore(t *testing.T, newStore ReservationStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	user := "account:" + uuid.NewString()

	if err := store.Reserve(ctx, reservationport.ScopeYear, user, "2025"); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	// Second claim on the same key must fail atomically.
	if err := store.Reserve(ctx, reservationport.ScopeYear, user, "2025"); !errors.Is(err, reservationport.ErrAlreadyReserved) {
		t.Fatalf("expected ErrAlreadyReserved, got %v", err)
	}

	// Same key under a different scope or user is independent.
	if err := store.Reserve(ctx, reservationport.ScopeParentalLeave, user, "2025"); err != nil {
		t.Fatalf("Reserve other scope: %v", err)
	}
	other := "account:" + uuid.NewString()
	if err := store.Reserve(ctx, reservationport.ScopeYear, other, "2025"); err != nil {
		t.Fatalf("Reserve other user: %v", err)
	}

	// Release frees the key for re-use.
	if err := store.Release(ctx, reservationport.ScopeYear, user, "2025"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := store.Reserve(ctx, reservationport.ScopeYear, user, "2025"); err != nil {
		t.Fatalf("Reserve after release: %v", err)
	}

	// Releasing a key that was never claimed is a no-op.
	if err := store.Release(ctx, reservationport.ScopeYear, user, "never-claimed"); err != nil {
		t.Fatalf("Release unclaimed: %v", err)
	}
}

func RunCategoryRepo(t *testing.T, newRepo CategoryRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	acctID := domain.AccountID(uuid.NewString())
	user := domain.UserRef{Type: domain.UserTypeAccount, AccountID: acctID}

	elig := domain.EligibilityOTPractising
	first := categoryrepoport.Record{
		ID:             domain.CategoryID(uuid.NewString()),
		AccountID:      &acctID,
		MembershipYear: "2024",
		Category:       domain.CategoryOTPractising,
		UserGroup:      domain.UserGroupOT,
		Eligibility:    &elig,
		Privilege:      domain.PrivilegeOwner,
		AccessModifier: domain.AccessPrivate,
		CreatedOn:      time.Unix(1000, 0).UTC(),
		ModifiedOn:     time.Unix(1000, 0).UTC(),
	}
	created, err := repo.Create(ctx, first)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.BusinessID == "" {
		t.Fatalf("expected assigned business id")
	}

	got, err := repo.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.MembershipYear != "2024" || got.Category != domain.CategoryOTPractising {
		t.Fatalf("unexpected record: %+v", got)
	}

	if _, err := repo.GetByID(ctx, domain.CategoryID(uuid.NewString())); !errors.Is(err, categoryrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Year existence check is scoped to the user.
	if ok, err := repo.ExistsForYear(ctx, user, "2024"); err != nil || !ok {
		t.Fatalf("ExistsForYear(2024): ok=%v err=%v", ok, err)
	}
	if ok, err := repo.ExistsForYear(ctx, user, "2025"); err != nil || ok {
		t.Fatalf("ExistsForYear(2025): ok=%v err=%v", ok, err)
	}
	otherAcct := domain.AccountID(uuid.NewString())
	otherUser := domain.UserRef{Type: domain.UserTypeAccount, AccountID: otherAcct}
	if ok, err := repo.ExistsForYear(ctx, otherUser, "2024"); err != nil || ok {
		t.Fatalf("ExistsForYear other user: ok=%v err=%v", ok, err)
	}

	// List ordering: year descending.
	pl := domain.ParentalLeaveFullYear
	eligPL := domain.EligibilityOnParentalLeave
	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	second := categoryrepoport.Record{
		ID:                    domain.CategoryID(uuid.NewString()),
		AccountID:             &acctID,
		MembershipYear:        "2025",
		Category:              domain.CategoryOTNonPractising,
		UserGroup:             domain.UserGroupOT,
		Eligibility:           &eligPL,
		ParentalLeaveFrom:     &from,
		ParentalLeaveTo:       &to,
		ParentalLeaveExpected: &pl,
		Privilege:             domain.PrivilegeOwner,
		AccessModifier:        domain.AccessPrivate,
		CreatedOn:             time.Unix(2000, 0).UTC(),
		ModifiedOn:            time.Unix(2000, 0).UTC(),
	}
	if _, err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Create second: %v", err)
	}
	list, err := repo.ListByUser(ctx, user)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 || list[0].MembershipYear != "2025" || list[1].MembershipYear != "2024" {
		t.Fatalf("unexpected ordering: %#v", list)
	}

	// Parental-leave usage spans all years and is scoped to the user.
	used, err := repo.ParentalLeaveValuesUsed(ctx, user)
	if err != nil {
		t.Fatalf("ParentalLeaveValuesUsed: %v", err)
	}
	if len(used) != 1 || used[0] != domain.ParentalLeaveFullYear {
		t.Fatalf("unexpected used values: %#v", used)
	}
	if used, err := repo.ParentalLeaveValuesUsed(ctx, otherUser); err != nil || len(used) != 0 {
		t.Fatalf("expected no used values for other user: %#v err=%v", used, err)
	}

	// Delete removes the record.
	if err := repo.Delete(ctx, second.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, second.ID); !errors.Is(err, categoryrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, second.ID); !errors.Is(err, categoryrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}
