package yearprovider

import (
	"context"
	"errors"
)

// ErrNotConfigured indicates no active membership year is configured on the
// platform. This is a deployment fault and fails creation hard.
var ErrNotConfigured = errors.New("no active membership year configured")

// Provider exposes the externally managed "active membership year" setting.
// The year is a label string (e.g. "2025"), not parsed by the application.
type Provider interface {
	CurrentYear(ctx context.Context) (string, error)
}
