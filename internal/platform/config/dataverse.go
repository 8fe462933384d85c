package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// DataverseConfig configures the connection to the managed data platform's
// Web API. Credentials are a client-credentials grant against the platform's
// identity provider.
type DataverseConfig struct {
	BaseURL    string `envconfig:"DATAVERSE_BASE_URL" required:"true"`
	APIVersion string `envconfig:"DATAVERSE_API_VERSION" default:"v9.2"`

	TenantID     string `envconfig:"DATAVERSE_TENANT_ID" required:"true"`
	ClientID     string `envconfig:"DATAVERSE_CLIENT_ID" required:"true"`
	ClientSecret string `envconfig:"DATAVERSE_CLIENT_SECRET" required:"true"`

	// TokenURL overrides the token endpoint; when empty it is derived from
	// the tenant ID. Mainly for tests.
	TokenURL string `envconfig:"DATAVERSE_TOKEN_URL"`

	HTTPTimeout time.Duration `envconfig:"DATAVERSE_HTTP_TIMEOUT" default:"15s"`
}

func LoadDataverseConfigFromEnv() (DataverseConfig, error) {
	var cfg DataverseConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return DataverseConfig{}, fmt.Errorf("dataverse config: %w", err)
	}
	return cfg, nil
}
