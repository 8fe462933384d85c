// Package dataverse implements the outbound repositories over the managed
// data platform's OData-flavored Web API.
package dataverse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/osot/membership-api/internal/platform/config"
)

// ErrNotFound is returned when the platform reports a missing entity.
var ErrNotFound = errors.New("dataverse: entity not found")

// PlatformError wraps a non-404 failure from the platform. The rules engine
// treats these as internal errors; no retries are attempted here.
type PlatformError struct {
	Status int
	Code   string
	Msg    string
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("dataverse: status=%d code=%s: %s", e.Status, e.Code, e.Msg)
}

// Client is a thin typed wrapper around the platform Web API. It handles
// authentication, the OData headers, and error mapping; the repositories own
// entity shapes and filter expressions.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     *zap.Logger

	tokenURL     string
	clientID     string
	clientSecret string
	scope        string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(cfg config.DataverseConfig, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID)
	}
	base := strings.TrimRight(cfg.BaseURL, "/") + "/api/data/" + cfg.APIVersion
	return &Client{
		baseURL:      base,
		httpc:        &http.Client{Timeout: cfg.HTTPTimeout},
		log:          log,
		tokenURL:     tokenURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		scope:        strings.TrimRight(cfg.BaseURL, "/") + "/.default",
	}
}

// Get fetches resourcePath (entity set + OData query) into out.
func (c *Client) Get(ctx context.Context, resourcePath string, out any) error {
	return c.request(ctx, http.MethodGet, resourcePath, nil, out)
}

// Post creates an entity and decodes the representation the platform returns.
func (c *Client) Post(ctx context.Context, resourcePath string, body any, out any) error {
	return c.request(ctx, http.MethodPost, resourcePath, body, out)
}

// Delete removes an entity.
func (c *Client) Delete(ctx context.Context, resourcePath string) error {
	return c.request(ctx, http.MethodDelete, resourcePath, nil, nil)
}

func (c *Client) request(ctx context.Context, method, resourcePath string, body any, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(resourcePath, "/"), rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("OData-MaxVersion", "4.0")
	req.Header.Set("OData-Version", "4.0")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost && out != nil {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Warn("dataverse request failed",
			zap.String("method", method),
			zap.String("path", resourcePath),
			zap.Error(err),
		)
		return &PlatformError{Status: 0, Code: "TRANSPORT", Msg: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.platformError(method, resourcePath, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) platformError(method, resourcePath string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(raw, &envelope)
	pe := &PlatformError{
		Status: resp.StatusCode,
		Code:   envelope.Error.Code,
		Msg:    envelope.Error.Message,
	}
	if pe.Msg == "" {
		pe.Msg = strings.TrimSpace(string(raw))
	}
	c.log.Warn("dataverse request rejected",
		zap.String("method", method),
		zap.String("path", resourcePath),
		zap.Int("status", resp.StatusCode),
		zap.String("code", pe.Code),
	)
	return pe
}

// token returns a cached client-credentials access token, refreshing it a
// minute before expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("scope", c.scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", &PlatformError{Status: 0, Code: "TOKEN", Msg: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return "", &PlatformError{Status: resp.StatusCode, Code: "TOKEN", Msg: strings.TrimSpace(string(raw))}
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", &PlatformError{Status: resp.StatusCode, Code: "TOKEN", Msg: "empty access token"}
	}
	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

// odataQuote escapes a string literal for an OData filter expression.
func odataQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
