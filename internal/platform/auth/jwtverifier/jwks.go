package jwtverifier

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"
)

// JWKSFetcher retrieves and parses a JWKS document.
type JWKSFetcher struct {
	url    string
	client *http.Client
}

func NewJWKSFetcher(url string, timeout time.Duration) *JWKSFetcher {
	return &JWKSFetcher{url: url, client: &http.Client{Timeout: timeout}}
}

func (f *JWKSFetcher) Fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("jwks fetch failed: status=%d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return parseJWKS(body)
}

// keyCache holds the current JWKS key set and decides when to re-fetch.
//
// Refresh rules:
// - refresh periodically (rotation), even if the kid is already cached
// - refresh on unknown kid, bounded by the min refresh interval
// Concurrent refreshes are deduplicated: latecomers wait for the in-flight one.
type keyCache struct {
	fetch           func(context.Context) (map[string]*rsa.PublicKey, error)
	refreshInterval time.Duration
	minRefresh      time.Duration
	now             func() time.Time

	mu          sync.Mutex
	byKID       map[string]*rsa.PublicKey
	lastRefresh time.Time
	inflight    chan struct{}
}

func (kc *keyCache) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if err := kc.maybeRefresh(ctx, kid); err != nil {
		return nil, err
	}
	kc.mu.Lock()
	defer kc.mu.Unlock()
	return kc.byKID[kid], nil
}

func (kc *keyCache) maybeRefresh(ctx context.Context, kid string) error {
	now := kc.now()

	kc.mu.Lock()
	stale := !kc.lastRefresh.IsZero() && kc.refreshInterval > 0 && now.Sub(kc.lastRefresh) >= kc.refreshInterval
	unknownKid := kc.byKID[kid] == nil
	unknownKidAllowed := kc.lastRefresh.IsZero() || kc.minRefresh <= 0 || now.Sub(kc.lastRefresh) >= kc.minRefresh
	if !stale && !(unknownKid && unknownKidAllowed) {
		kc.mu.Unlock()
		return nil
	}

	if kc.inflight != nil {
		ch := kc.inflight
		kc.mu.Unlock()
		select {
		case <-ch:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	ch := make(chan struct{})
	kc.inflight = ch
	kc.mu.Unlock()

	keys, err := kc.fetch(ctx)

	kc.mu.Lock()
	if err == nil {
		kc.byKID = keys
		kc.lastRefresh = kc.now()
	}
	kc.inflight = nil
	close(ch)
	kc.mu.Unlock()

	return err
}

type jwksDoc struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func parseJWKS(b []byte) (map[string]*rsa.PublicKey, error) {
	var doc jwksDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	out := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" || k.N == "" || k.E == "" {
			continue
		}
		nb, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			return nil, err
		}
		eb, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			return nil, err
		}
		e := new(big.Int).SetBytes(eb).Int64()
		if e <= 0 || e > int64(^uint(0)>>1) {
			return nil, fmt.Errorf("invalid jwk exponent")
		}
		out[k.Kid] = &rsa.PublicKey{
			N: new(big.Int).SetBytes(nb),
			E: int(e),
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no usable jwks keys")
	}
	return out, nil
}
