package config

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"gopkg.in/yaml.v2"
)

// Config represents the entire application configuration.
type Config struct {
	DatabasePath string           `yaml:"database_path"`
	Salesforce   SalesforceConfig `yaml:"salesforce"`
	Defaults     DefaultsConfig   `yaml:"defaults"`
}

// SalesforceConfig holds Salesforce-specific settings.
type SalesforceConfig struct {
	LoginDomain           string `yaml:"login_domain"`
	ClientID              string `yaml:"client_id"`
	ClientSecret          string `yaml:"client_secret"`
	TokenFilePath         string `yaml:"token_file_path"`
	CallbackListenAddress string `yaml:"callback_listen_address"`
	CallbackPath          string `yaml:"callback_path"`
	OAuth2Config          *oauth2.Config
}

// DefaultsConfig holds the default field values applied to opportunity
// batches. Zero values fall back to the training module's standard
// defaults (Qualification, 50000, three months out).
type DefaultsConfig struct {
	OpportunityStage      string  `yaml:"opportunity_stage"`
	OpportunityAmount     float64 `yaml:"opportunity_amount"`
	CloseDateOffsetMonths int     `yaml:"close_date_offset_months"`
}

// Load loads and validates the configuration from the given file path.
func Load(filePath string) (*Config, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", filePath)
	}

	configFile, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	err = yaml.Unmarshal(configFile, &cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to parse YAML config file: %w", err)
	}

	if err := validateAndPrepare(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validateAndPrepare checks for required fields and sets up derived values.
func validateAndPrepare(c *Config) error {
	if c.DatabasePath == "" {
		return errors.New("database_path is missing")
	}

	sc := &c.Salesforce
	if sc.ClientID == "" {
		return errors.New("salesforce.client_id is missing")
	}
	if sc.ClientSecret == "" {
		return errors.New("salesforce.client_secret is missing")
	}
	if sc.LoginDomain == "" {
		return errors.New("salesforce.login_domain is missing")
	}
	if sc.TokenFilePath == "" {
		return errors.New("salesforce.token_file_path is missing")
	}
	if sc.CallbackListenAddress == "" {
		sc.CallbackListenAddress = ":8080"
	}
	if sc.CallbackPath == "" {
		sc.CallbackPath = "/sf-callback"
	}
	sc.OAuth2Config = &oauth2.Config{
		ClientID:     sc.ClientID,
		ClientSecret: sc.ClientSecret,
		RedirectURL:  fmt.Sprintf("http://localhost%s%s", sc.CallbackListenAddress, sc.CallbackPath),
		Endpoint: oauth2.Endpoint{
			AuthURL:  fmt.Sprintf("https://%s/services/oauth2/authorize", sc.LoginDomain),
			TokenURL: fmt.Sprintf("https://%s/services/oauth2/token", sc.LoginDomain),
		},
		Scopes: []string{"api", "refresh_token"},
	}

	if c.Defaults.OpportunityAmount < 0 {
		return errors.New("defaults.opportunity_amount may not be negative")
	}
	if c.Defaults.CloseDateOffsetMonths < 0 {
		return errors.New("defaults.close_date_offset_months may not be negative")
	}

	return nil
}
