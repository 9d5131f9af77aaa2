package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// MaxBatchSize is the most items Spotify accepts in a single playlist add call.
const MaxBatchSize = 100

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Playlist    PlaylistConfig    `toml:"playlist"`
	Input       InputConfig       `toml:"input"`
	Pacing      PacingConfig      `toml:"pacing"`
	Server      ServerConfig      `toml:"server"`
	Metrics     MetricsConfig     `toml:"metrics"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials and the most recent OAuth token.
type SpotifyConfig struct {
	ClientID     string    `toml:"client_id"`
	ClientSecret string    `toml:"client_secret"`
	RedirectURI  string    `toml:"redirect_uri"`
	AccessToken  string    `toml:"access_token"`
	RefreshToken string    `toml:"refresh_token"`
	TokenType    string    `toml:"token_type"`
	Expiry       time.Time `toml:"expiry,omitempty"`
}

// PlaylistConfig holds the defaults for the playlist created by an import run.
type PlaylistConfig struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Public      bool   `toml:"public"`
}

// InputConfig locates the source table and names its columns.
type InputConfig struct {
	Path         string `toml:"path"`
	ArtistColumn string `toml:"artist_column"`
	SongColumn   string `toml:"song_column"`
}

// PacingConfig controls request pacing against the Spotify API.
type PacingConfig struct {
	SearchDelay Duration `toml:"search_delay"`
	AppendDelay Duration `toml:"append_delay"`
	SearchLimit int      `toml:"search_limit"`
	BatchSize   int      `toml:"batch_size"`
	RateLimit   float64  `toml:"rate_limit"`
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// MetricsConfig configures the Prometheus textfile written after each run.
type MetricsConfig struct {
	Textfile string `toml:"textfile"`
}

// Duration wraps [time.Duration] so it can be written as "1s" or "250ms" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q: %v", ErrInvalidConfig, string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Map returns the credentials in the form accepted by services.NewSpotifyService.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
	}
}

// Token returns the stored OAuth token, or nil when no access token has been saved.
func (s SpotifyConfig) Token() *oauth2.Token {
	if s.AccessToken == "" && s.RefreshToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		Expiry:       s.Expiry,
	}
}

// Update stores the given token, keeping the previous refresh token if the new one omits it.
func (s *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("%w: nil token", ErrInvalidArgument)
	}
	s.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	s.TokenType = token.TokenType
	s.Expiry = token.Expiry
	return nil
}

// Validate reports configuration that would make an import run impossible.
func (c *Config) Validate() error {
	if c.Pacing.SearchLimit < 1 {
		return fmt.Errorf("%w: pacing.search_limit must be at least 1", ErrInvalidConfig)
	}
	if c.Pacing.BatchSize < 1 || c.Pacing.BatchSize > MaxBatchSize {
		return fmt.Errorf("%w: pacing.batch_size must be between 1 and %d", ErrInvalidConfig, MaxBatchSize)
	}
	if c.Pacing.SearchDelay.Duration < 0 || c.Pacing.AppendDelay.Duration < 0 {
		return fmt.Errorf("%w: pacing delays cannot be negative", ErrInvalidConfig)
	}
	if c.Pacing.RateLimit < 0 {
		return fmt.Errorf("%w: pacing.rate_limit cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values from [DefaultConfig].
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

// SaveConfig writes the configuration to path as TOML, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// SaveToken writes token into the config file at path, leaving every other key as it is on disk.
//
// Values applied in memory by [ApplyEnv] are never written; a missing file starts from [DefaultConfig].
func SaveToken(path string, token *oauth2.Token) error {
	config := DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if config, err = LoadConfig(path); err != nil {
			return err
		}
	}

	if err := config.Credentials.Spotify.Update(token); err != nil {
		return err
	}
	return SaveConfig(path, config)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
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

// LoadEnv reads .env files into the process environment. Missing files are ignored.
func LoadEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// ApplyEnv overrides Spotify credentials with SPOTIFY_* environment variables when set.
func ApplyEnv(config *Config) {
	overrides := []struct {
		key    string
		target *string
	}{
		{"SPOTIFY_CLIENT_ID", &config.Credentials.Spotify.ClientID},
		{"SPOTIFY_CLIENT_SECRET", &config.Credentials.Spotify.ClientSecret},
		{"SPOTIFY_REDIRECT_URI", &config.Credentials.Spotify.RedirectURI},
		{"SPOTIFY_ACCESS_TOKEN", &config.Credentials.Spotify.AccessToken},
		{"SPOTIFY_REFRESH_TOKEN", &config.Credentials.Spotify.RefreshToken},
	}

	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.key)); v != "" {
			*o.target = v
		}
	}
}
