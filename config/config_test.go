package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfig(t *testing.T) {

	config, err := Load("config.example.yaml")
	if err != nil {
		t.Fatal(err)
	}

	if got, want := config.DatabasePath, "./sfrecords.db"; got != want {
		t.Errorf("got %s want %s", got, want)
	}
	if got, want := config.Salesforce.OAuth2Config.Endpoint.AuthURL,
		"https://login.salesforce.com/services/oauth2/authorize"; got != want {
		t.Errorf("got auth url %s want %s", got, want)
	}
	if got, want := config.Defaults.OpportunityAmount, 50000.0; got != want {
		t.Errorf("got default amount %f want %f", got, want)
	}
}

func TestConfigMissingFields(t *testing.T) {

	writeConfig := func(t *testing.T, contents string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	tests := []struct {
		name     string
		contents string
		wantErr  string
	}{
		{
			name:     "no database path",
			contents: "salesforce:\n  client_id: abc\n",
			wantErr:  "database_path is missing",
		},
		{
			name:     "no client id",
			contents: "database_path: ./x.db\n",
			wantErr:  "salesforce.client_id is missing",
		},
		{
			name: "no login domain",
			contents: `database_path: ./x.db
salesforce:
  client_id: abc
  client_secret: def
`,
			wantErr: "salesforce.login_domain is missing",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.contents))
			if err == nil {
				t.Fatal("expected an error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got error %q want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigCallbackFallbacks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `database_path: ./x.db
salesforce:
  login_domain: login.salesforce.com
  client_id: abc
  client_secret: def
  token_file_path: ./token.json
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := cfg.Salesforce.OAuth2Config.RedirectURL, "http://localhost:8080/sf-callback"; got != want {
		t.Errorf("got redirect url %q want %q", got, want)
	}
}
