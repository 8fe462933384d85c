package jwtverifier

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/osot/membership-api/internal/platform/config"
)

var ErrUnauthorized = errors.New("unauthorized")

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Verifier validates RS256 bearer tokens against a JWKS endpoint.
type Verifier struct {
	cfg   config.JWTConfig
	keys  *keyCache
	clock Clock
}

func New(cfg config.JWTConfig) *Verifier {
	return NewWithOptions(cfg, nil, nil)
}

func NewWithOptions(cfg config.JWTConfig, fetcher *JWKSFetcher, clock Clock) *Verifier {
	if fetcher == nil {
		fetcher = NewJWKSFetcher(cfg.JWKSURL, cfg.HTTPTimeout)
	}
	if clock == nil {
		clock = realClock{}
	}
	return &Verifier{
		cfg:   cfg,
		clock: clock,
		keys: &keyCache{
			fetch:           fetcher.Fetch,
			refreshInterval: cfg.JWKSRefreshInterval,
			minRefresh:      cfg.JWKSMinRefreshInterval,
			now:             clock.Now,
		},
	}
}

type header struct {
	Alg string `json:"alg"`
	Kid string `json:"kid"`
}

type claims struct {
	Iss string          `json:"iss"`
	Sub string          `json:"sub"`
	Aud json.RawMessage `json:"aud"`
	Exp *int64          `json:"exp"`
	Nbf *int64          `json:"nbf"`
}

// Verify checks signature and claims and returns the `sub` claim.
//
// Claims checked: iss, aud, exp, and nbf when present, all within the
// configured clock skew. Any failure collapses to ErrUnauthorized so callers
// never leak validation internals to clients.
func (v *Verifier) Verify(ctx context.Context, token string) (string, error) {
	h, c, signingInput, sig, err := split(token)
	if err != nil {
		return "", ErrUnauthorized
	}
	if h.Alg != "RS256" || h.Kid == "" {
		return "", ErrUnauthorized
	}

	pub, err := v.keys.Key(ctx, h.Kid)
	if err != nil || pub == nil {
		return "", ErrUnauthorized
	}

	sum := sha256.Sum256([]byte(signingInput))
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, sum[:], sig); err != nil {
		return "", ErrUnauthorized
	}
	if err := v.checkClaims(c); err != nil {
		return "", ErrUnauthorized
	}
	if c.Sub == "" {
		return "", ErrUnauthorized
	}
	return c.Sub, nil
}

func (v *Verifier) checkClaims(c claims) error {
	now := v.clock.Now()
	skew := v.cfg.ClockSkew

	if c.Iss != v.cfg.Issuer {
		return fmt.Errorf("iss mismatch")
	}
	if !audienceContains(c.Aud, v.cfg.Audience) {
		return fmt.Errorf("aud mismatch")
	}
	if c.Exp == nil {
		return fmt.Errorf("missing exp")
	}
	if now.After(time.Unix(*c.Exp, 0).Add(skew)) {
		return fmt.Errorf("token expired")
	}
	if c.Nbf != nil && now.Before(time.Unix(*c.Nbf, 0).Add(-skew)) {
		return fmt.Errorf("token not yet valid")
	}
	return nil
}

func split(token string) (header, claims, string, []byte, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return header{}, claims{}, "", nil, fmt.Errorf("bad jwt parts")
	}

	var h header
	var c claims
	hb, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err == nil {
		err = json.Unmarshal(hb, &h)
	}
	if err != nil {
		return header{}, claims{}, "", nil, err
	}
	cb, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err == nil {
		err = json.Unmarshal(cb, &c)
	}
	if err != nil {
		return header{}, claims{}, "", nil, err
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return header{}, claims{}, "", nil, err
	}
	return h, c, parts[0] + "." + parts[1], sig, nil
}

// audienceContains accepts both the string and []string forms of aud.
func audienceContains(raw json.RawMessage, expected string) bool {
	if len(raw) == 0 {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s == expected
	}
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil {
		for _, a := range arr {
			if a == expected {
				return true
			}
		}
	}
	return false
}
