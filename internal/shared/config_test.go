package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.API.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q", config.API.BaseURL)
	}
	if config.API.SearchLimit != 5 {
		t.Errorf("SearchLimit = %d, want 5", config.API.SearchLimit)
	}
	if config.Assembler.Workers != 4 {
		t.Errorf("Workers = %d, want 4", config.Assembler.Workers)
	}
	if config.Assembler.RateLimit != 5.0 {
		t.Errorf("RateLimit = %v, want 5.0", config.Assembler.RateLimit)
	}
	if config.Database.Path == "" {
		t.Error("expected default database path")
	}
	if config.Credentials.Path == "" {
		t.Error("expected default credential path")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[credentials]
path = "/tmp/cred.json"
client_id = "cid"
client_secret = "secret"

[api]
base_url = "http://example.test:9000"
timeout_seconds = 10
search_limit = 3

[assembler]
workers = 2
rate_limit = 1.5

[database]
path = "/tmp/test.db"
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if config.API.BaseURL != "http://example.test:9000" {
			t.Errorf("BaseURL = %q", config.API.BaseURL)
		}
		if config.Credentials.ClientID != "cid" {
			t.Errorf("ClientID = %q", config.Credentials.ClientID)
		}
		if config.Assembler.RateLimit != 1.5 {
			t.Errorf("RateLimit = %v", config.Assembler.RateLimit)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("[credentials\npath="), 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfig(path); err == nil {
			t.Error("expected error for malformed TOML")
		}
	})
}

func TestCreateConfigFile(t *testing.T) {
	t.Run("creates template", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("CreateConfigFile failed: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("created config does not parse: %v", err)
		}
		if config.API.BaseURL == "" {
			t.Error("created config missing defaults")
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("existing"), 0644); err != nil {
			t.Fatal(err)
		}

		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error when file exists")
		}
	})
}
