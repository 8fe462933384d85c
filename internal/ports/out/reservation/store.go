package reservation

import (
	"context"
	"errors"
)

// ErrAlreadyReserved indicates the uniqueness key is already held.
var ErrAlreadyReserved = errors.New("key already reserved")

// Scope namespaces reservation keys.
type Scope string

const (
	// ScopeYear guards the at-most-one-record-per-(user, membershipYear)
	// invariant.
	ScopeYear Scope = "year"
	// ScopeParentalLeave guards the lifetime one-time-use rule per
	// parental-leave option.
	ScopeParentalLeave Scope = "parental-leave"
)

// Store is a conditional-write uniqueness guard. The business data lives on an
// external platform that offers no transactional pre-check, so creation first
// reserves its uniqueness keys here; a reservation either succeeds atomically
// or fails with ErrAlreadyReserved.
type Store interface {
	// Reserve atomically claims (scope, userKey, key).
	Reserve(ctx context.Context, scope Scope, userKey, key string) error

	// Release frees a reservation. Used to roll back when the platform write
	// fails after keys were claimed.
	Release(ctx context.Context, scope Scope, userKey, key string) error
}
