package config

import (
	"testing"

	"github.com/spf13/pflag"
)

// TestPrecedence checks flags > environment > config file > defaults.
func TestPrecedence(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  host: file-host
database:
  url: sqlite:///from-file.db
`)

	t.Run("secret in config file rejected", func(t *testing.T) {
		bad := writeConfig(t, `
server:
  port: 8080
  hmac_secret: "should_be_rejected"
`)
		_, err := LoadConfig(bad, nil)
		if err == nil {
			t.Fatal("LoadConfig() error = nil, want secret rejection")
		}
		want := "HMAC secrets not allowed in config files (use FK_HMAC_SECRET environment variable)"
		if err.Error() != want {
			t.Fatalf("LoadConfig() error = %q, want %q", err, want)
		}
	})

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := LoadConfig(path, nil)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Server.Port != 9090 {
			t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
		}
		if cfg.Database.URL != "sqlite:///from-file.db" {
			t.Errorf("Database.URL = %s, want file value", cfg.Database.URL)
		}
	})

	t.Run("environment over file", func(t *testing.T) {
		t.Setenv("FK_SERVER_PORT", "8080")

		cfg, err := LoadConfig(path, nil)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Server.Port != 8080 {
			t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Host != "file-host" {
			t.Errorf("Server.Host = %s, want file-host", cfg.Server.Host)
		}
	})

	t.Run("changed flags over environment", func(t *testing.T) {
		t.Setenv("FK_SERVER_PORT", "8080")
		t.Setenv("FK_DATABASE_URL", "sqlite:///from-env.db")

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.Int("port", 0, "")
		flags.String("db-url", "", "")
		if err := flags.Parse([]string{"--port", "7070"}); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadConfig(path, flags)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Server.Port != 7070 {
			t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
		}
		// Unchanged flags leave lower layers alone.
		if cfg.Database.URL != "sqlite:///from-env.db" {
			t.Errorf("Database.URL = %s, want env value", cfg.Database.URL)
		}
	})
}
