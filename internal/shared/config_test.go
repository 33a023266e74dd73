package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./monthly.db" {
			t.Errorf("expected database path ./monthly.db, got %s", config.Database.Path)
		}

		if config.Sync.NameFormat != DefaultNameFormat {
			t.Errorf("expected name format %q, got %q", DefaultNameFormat, config.Sync.NameFormat)
		}

		if config.Schedule.Spec != "@every 1h" {
			t.Errorf("expected schedule @every 1h, got %s", config.Schedule.Spec)
		}

		if config.Credentials.Spotify.ClientID != "" {
			t.Errorf("expected placeholder client_id to be cleared, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Credentials.Spotify.RedirectURI != "http://localhost:3000/callback" {
			t.Errorf("unexpected default redirect uri %s", config.Credentials.Spotify.RedirectURI)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Sync.NameFormat != DefaultConfig().Sync.NameFormat {
			t.Errorf("created config name format doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"

[sync]
name_format = "January 2006"
since = "2024-01-01"
headless = true
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Sync.NameFormat != "January 2006" {
			t.Errorf("expected name format January 2006, got %s", config.Sync.NameFormat)
		}
		if !config.Sync.Headless {
			t.Error("expected headless to be true")
		}
		if config.Credentials.Spotify.RedirectURI != "http://localhost:3000/callback" {
			t.Errorf("expected default redirect uri to survive, got %s", config.Credentials.Spotify.RedirectURI)
		}
		if config.Database.Path != "./monthly.db" {
			t.Errorf("expected default database path to survive, got %s", config.Database.Path)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		env := map[string]string{
			EnvClientID:     "env_id",
			EnvClientSecret: "env_secret",
		}
		config := DefaultConfig()
		config.ApplyEnv(func(k string) string { return env[k] })

		if config.Credentials.Spotify.ClientID != "env_id" {
			t.Errorf("expected env client id, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Credentials.Spotify.ClientSecret != "env_secret" {
			t.Errorf("expected env client secret, got %s", config.Credentials.Spotify.ClientSecret)
		}
		if config.Credentials.Spotify.RedirectURI != "http://localhost:3000/callback" {
			t.Errorf("unset REDIRECT_URI should keep default, got %s", config.Credentials.Spotify.RedirectURI)
		}
	})

	t.Run("LoadEnv", func(t *testing.T) {
		envPath := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envPath, []byte("MONTHLY_TEST_DOTENV=from_file\n"), 0600); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Setenv("MONTHLY_TEST_DOTENV", "")
		os.Unsetenv("MONTHLY_TEST_DOTENV")

		if err := LoadEnv(envPath, filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Fatalf("LoadEnv() error = %v", err)
		}
		if got := os.Getenv("MONTHLY_TEST_DOTENV"); got != "from_file" {
			t.Errorf("expected value from .env, got %q", got)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name    string
			mutate  func(*Config)
			wantErr error
		}{
			{name: "valid", mutate: func(c *Config) {}},
			{name: "missing client id", mutate: func(c *Config) { c.Credentials.Spotify.ClientID = "" }, wantErr: ErrMissingCredentials},
			{name: "missing client secret", mutate: func(c *Config) { c.Credentials.Spotify.ClientSecret = "" }, wantErr: ErrMissingCredentials},
			{name: "empty format", mutate: func(c *Config) { c.Sync.NameFormat = " " }, wantErr: ErrInvalidConfig},
			{name: "bad since", mutate: func(c *Config) { c.Sync.Since = "last tuesday" }, wantErr: ErrInvalidConfig},
			{name: "bad redirect", mutate: func(c *Config) { c.Credentials.Spotify.RedirectURI = "callback" }, wantErr: ErrInvalidConfig},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				config.Credentials.Spotify.ClientID = "id"
				config.Credentials.Spotify.ClientSecret = "secret"
				tt.mutate(config)

				err := config.Validate()
				if tt.wantErr == nil && err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			})
		}
	})

	t.Run("CallbackAddr", func(t *testing.T) {
		addr, path, err := SpotifyConfig{RedirectURI: "http://127.0.0.1:8888/auth/cb"}.CallbackAddr()
		if err != nil {
			t.Fatalf("CallbackAddr() error = %v", err)
		}
		if addr != "127.0.0.1:8888" || path != "/auth/cb" {
			t.Errorf("got addr=%s path=%s", addr, path)
		}

		addr, path, _ = SpotifyConfig{RedirectURI: "http://localhost"}.CallbackAddr()
		if addr != "localhost:80" || path != "/" {
			t.Errorf("expected default port and root path, got addr=%s path=%s", addr, path)
		}
	})
}

func TestParseSince(t *testing.T) {
	now := time.Date(2024, time.March, 17, 15, 4, 5, 0, time.UTC)

	tc := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{name: "empty uses start of month", value: "", want: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{name: "date only", value: "2024-01-01", want: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339 normalized to utc", value: "2024-01-15T10:00:00+02:00", want: time.Date(2024, time.January, 15, 8, 0, 0, 0, time.UTC)},
		{name: "garbage", value: "yesterday", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSince(tt.value, now)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tt.value) {
					t.Errorf("error should mention the value, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSince() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseSince() = %v, want %v", got, tt.want)
			}
		})
	}
}
