package dataverse

import (
	"context"
	"fmt"
	"strings"

	"github.com/osot/membership-api/internal/ports/out/yearprovider"
)

const settingSet = "osot_appsettings"

// activeYearKey is the app-setting holding the active membership year label.
const activeYearKey = "active_membership_year"

// YearProvider reads the externally managed active membership year.
type YearProvider struct {
	c *Client
}

func NewYearProvider(c *Client) *YearProvider {
	return &YearProvider{c: c}
}

func (p *YearProvider) CurrentYear(ctx context.Context) (string, error) {
	path := fmt.Sprintf("%s?$select=osot_value&$filter=osot_key eq %s&$top=1",
		settingSet, odataQuote(activeYearKey))
	var page struct {
		Value []struct {
			Value string `json:"osot_value"`
		} `json:"value"`
	}
	if err := p.c.Get(ctx, path, &page); err != nil {
		return "", err
	}
	if len(page.Value) == 0 || strings.TrimSpace(page.Value[0].Value) == "" {
		return "", yearprovider.ErrNotConfigured
	}
	return strings.TrimSpace(page.Value[0].Value), nil
}
