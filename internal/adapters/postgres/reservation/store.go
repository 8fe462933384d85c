package reservation

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osot/membership-api/internal/ports/out/reservation"
)

// Store is a Postgres implementation of reservation.Store.
//
// Reserve is a single conditional write: the primary key on
// (scope, user_key, key) makes the claim atomic, which is what closes the
// check-then-act window the external membership platform leaves open.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Reserve(ctx context.Context, scope reservation.Scope, userKey, key string) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	ct, err := s.pool.Exec(ctx, `
		INSERT INTO uniqueness_reservations (scope, user_key, key, reserved_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (scope, user_key, key) DO NOTHING
	`,
		string(scope),
		userKey,
		key,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return reservation.ErrAlreadyReserved
	}
	return nil
}

func (s *Store) Release(ctx context.Context, scope reservation.Scope, userKey, key string) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := s.pool.Exec(ctx, `
		DELETE FROM uniqueness_reservations
		WHERE scope = $1 AND user_key = $2 AND key = $3
	`,
		string(scope),
		userKey,
		key,
	)
	return err
}
