package shared

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables holding the Spotify application secrets.
const (
	EnvClientID     = "CLIENT_ID"
	EnvClientSecret = "CLIENT_SECRET"
	EnvRedirectURI  = "REDIRECT_URI"
)

// DefaultNameFormat renders a month key such as "Jan '24".
const DefaultNameFormat = "Jan '06"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Sync        SyncConfig        `toml:"sync"`
	Schedule    ScheduleConfig    `toml:"schedule"`
	Database    DatabaseConfig    `toml:"database"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// SyncConfig controls how liked tracks are grouped and which ones count as new.
type SyncConfig struct {
	NameFormat string `toml:"name_format"`
	Since      string `toml:"since"`
	Headless   bool   `toml:"headless"`
}

// ScheduleConfig controls periodic runs.
type ScheduleConfig struct {
	Spec string `toml:"spec"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// Map returns the credentials in the form expected by services.NewSpotifyService.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
	}
}

// CallbackAddr returns the host:port and path the local OAuth callback server listens on,
// derived from the redirect URI.
func (s SpotifyConfig) CallbackAddr() (addr, path string, err error) {
	u, err := url.Parse(s.RedirectURI)
	if err != nil {
		return "", "", fmt.Errorf("%w: redirect_uri: %v", ErrInvalidConfig, err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("%w: redirect_uri %q has no host", ErrInvalidConfig, s.RedirectURI)
	}

	addr = u.Host
	if u.Port() == "" {
		addr = u.Host + ":80"
	}
	path = u.Path
	if path == "" {
		path = "/"
	}
	return addr, path, nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values absent from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
//
// The placeholder credentials are cleared so that a missing secret is detected by [Config.Validate].
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.Credentials.Spotify.ClientID = ""
	config.Credentials.Spotify.ClientSecret = ""
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads .env files into the process environment without overriding variables that are already set.
//
// Missing files are ignored.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overlays the Spotify secrets found through getenv onto the config.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(EnvClientID); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := getenv(EnvClientSecret); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v := getenv(EnvRedirectURI); v != "" {
		c.Credentials.Spotify.RedirectURI = v
	}
}

// Validate checks that the secrets and sync settings are usable.
func (c *Config) Validate() error {
	if c.Credentials.Spotify.ClientID == "" {
		return fmt.Errorf("%w: %s is not set", ErrMissingCredentials, EnvClientID)
	}
	if c.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: %s is not set", ErrMissingCredentials, EnvClientSecret)
	}
	if strings.TrimSpace(c.Sync.NameFormat) == "" {
		return fmt.Errorf("%w: name_format is empty", ErrInvalidConfig)
	}
	if _, _, err := c.Credentials.Spotify.CallbackAddr(); err != nil {
		return err
	}
	if _, err := ParseSince(c.Sync.Since, time.Now()); err != nil {
		return err
	}
	return nil
}

// StartOfMonth returns midnight UTC on the first day of the month containing t.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ParseSince parses the initial watermark. Accepted forms are RFC 3339 and YYYY-MM-DD (midnight UTC).
// An empty value yields [StartOfMonth] of now.
func ParseSince(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return StartOfMonth(now), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: since %q: want RFC 3339 or YYYY-MM-DD", ErrInvalidConfig, value)
	}
	return t, nil
}
