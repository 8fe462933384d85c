package yearprovider

import (
	"context"
	"sync"

	"github.com/osot/membership-api/internal/ports/out/yearprovider"
)

// Provider is an in-memory implementation of yearprovider.Provider with a
// settable active year. It is safe for concurrent use.
type Provider struct {
	mu   sync.RWMutex
	year string
}

func NewProvider(year string) *Provider {
	return &Provider{year: year}
}

func (p *Provider) SetYear(year string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.year = year
}

func (p *Provider) CurrentYear(ctx context.Context) (string, error) {
	_ = ctx
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.year == "" {
		return "", yearprovider.ErrNotConfigured
	}
	return p.year, nil
}
