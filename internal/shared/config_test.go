package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Pacing.SearchDelay.Duration != time.Second {
			t.Errorf("expected search delay 1s, got %v", config.Pacing.SearchDelay)
		}

		if config.Pacing.AppendDelay.Duration != time.Second {
			t.Errorf("expected append delay 1s, got %v", config.Pacing.AppendDelay)
		}

		if config.Pacing.SearchLimit != 3 {
			t.Errorf("expected search limit 3, got %d", config.Pacing.SearchLimit)
		}

		if config.Pacing.BatchSize != MaxBatchSize {
			t.Errorf("expected batch size %d, got %d", MaxBatchSize, config.Pacing.BatchSize)
		}

		if config.Playlist.Public {
			t.Error("expected playlists to default to private")
		}

		if config.Input.ArtistColumn != "artist" || config.Input.SongColumn != "song" {
			t.Errorf("unexpected input columns %q/%q", config.Input.ArtistColumn, config.Input.SongColumn)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("expected default config to be valid, got %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Playlist.Name != DefaultConfig().Playlist.Name {
			t.Errorf("created config playlist name doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[playlist]
name = "Road Trip"
public = true

[pacing]
search_delay = "250ms"
batch_size = 50

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Playlist.Name != "Road Trip" || !config.Playlist.Public {
			t.Errorf("unexpected playlist config %+v", config.Playlist)
		}

		if config.Pacing.SearchDelay.Duration != 250*time.Millisecond {
			t.Errorf("expected search delay 250ms, got %v", config.Pacing.SearchDelay)
		}

		if config.Pacing.BatchSize != 50 {
			t.Errorf("expected batch size 50, got %d", config.Pacing.BatchSize)
		}

		if config.Pacing.SearchLimit != 3 {
			t.Errorf("expected unset search limit to keep default 3, got %d", config.Pacing.SearchLimit)
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}
	})

	t.Run("LoadConfig rejects bad durations", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[pacing]\nsearch_delay = \"soon\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected error for unparseable duration")
		}
	})

	t.Run("SaveConfig round trips tokens", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()

		expiry := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		if err := config.Credentials.Spotify.Update(&oauth2.Token{
			AccessToken:  "access",
			RefreshToken: "refresh",
			TokenType:    "Bearer",
			Expiry:       expiry,
		}); err != nil {
			t.Fatalf("failed to update token: %v", err)
		}

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}

		token := loaded.Credentials.Spotify.Token()
		if token == nil {
			t.Fatal("expected token after save")
		}
		if token.AccessToken != "access" || token.RefreshToken != "refresh" {
			t.Errorf("unexpected token %+v", token)
		}
		if !token.Expiry.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, token.Expiry)
		}
		if loaded.Pacing.AppendDelay.Duration != time.Second {
			t.Errorf("expected append delay to survive save, got %v", loaded.Pacing.AppendDelay)
		}
	})

	t.Run("SaveToken keeps environment overrides off disk", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		onDisk := DefaultConfig()
		onDisk.Credentials.Spotify.ClientID = "file_id"
		onDisk.Credentials.Spotify.ClientSecret = ""
		if err := SaveConfig(configPath, onDisk); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		t.Setenv("SPOTIFY_CLIENT_ID", "env_id")
		t.Setenv("SPOTIFY_CLIENT_SECRET", "env_secret")
		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		ApplyEnv(config)

		if err := SaveToken(configPath, &oauth2.Token{AccessToken: "access", RefreshToken: "refresh"}); err != nil {
			t.Fatalf("failed to save token: %v", err)
		}

		data, err := os.ReadFile(configPath)
		if err != nil {
			t.Fatalf("failed to read config: %v", err)
		}
		if strings.Contains(string(data), "env_secret") || strings.Contains(string(data), "env_id") {
			t.Errorf("environment credentials written to disk:\n%s", data)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}
		spotify := loaded.Credentials.Spotify
		if spotify.ClientID != "file_id" || spotify.ClientSecret != "" {
			t.Errorf("expected file credentials unchanged, got %q/%q", spotify.ClientID, spotify.ClientSecret)
		}
		if spotify.AccessToken != "access" || spotify.RefreshToken != "refresh" {
			t.Errorf("expected token saved, got %q/%q", spotify.AccessToken, spotify.RefreshToken)
		}
	})

	t.Run("SaveToken creates a missing file from defaults", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := SaveToken(configPath, &oauth2.Token{AccessToken: "access"}); err != nil {
			t.Fatalf("failed to save token: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if loaded.Credentials.Spotify.AccessToken != "access" {
			t.Errorf("expected access token saved, got %q", loaded.Credentials.Spotify.AccessToken)
		}
		if loaded.Pacing.BatchSize != MaxBatchSize {
			t.Errorf("expected defaults kept, got batch size %d", loaded.Pacing.BatchSize)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tt := []struct {
			name   string
			mutate func(*Config)
		}{
			{name: "zero search limit", mutate: func(c *Config) { c.Pacing.SearchLimit = 0 }},
			{name: "batch over limit", mutate: func(c *Config) { c.Pacing.BatchSize = MaxBatchSize + 1 }},
			{name: "zero batch", mutate: func(c *Config) { c.Pacing.BatchSize = 0 }},
			{name: "negative delay", mutate: func(c *Config) { c.Pacing.AppendDelay.Duration = -time.Second }},
			{name: "negative rate", mutate: func(c *Config) { c.Pacing.RateLimit = -1 }},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				config := DefaultConfig()
				tc.mutate(config)
				if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})
}

func TestSpotifyConfig(t *testing.T) {
	t.Run("Token is nil without stored tokens", func(t *testing.T) {
		var s SpotifyConfig
		if s.Token() != nil {
			t.Error("expected nil token")
		}
	})

	t.Run("Update keeps refresh token when omitted", func(t *testing.T) {
		s := SpotifyConfig{RefreshToken: "keep-me"}
		if err := s.Update(&oauth2.Token{AccessToken: "new"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.RefreshToken != "keep-me" {
			t.Errorf("expected refresh token to be kept, got %q", s.RefreshToken)
		}
		if s.AccessToken != "new" {
			t.Errorf("expected access token to be replaced, got %q", s.AccessToken)
		}
	})

	t.Run("Update rejects nil", func(t *testing.T) {
		var s SpotifyConfig
		if err := s.Update(nil); err == nil {
			t.Error("expected error for nil token")
		}
	})
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "env_id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "  env_secret  ")
	t.Setenv("SPOTIFY_REDIRECT_URI", "")

	config := DefaultConfig()
	original := config.Credentials.Spotify.RedirectURI
	ApplyEnv(config)

	if config.Credentials.Spotify.ClientID != "env_id" {
		t.Errorf("expected client id from env, got %s", config.Credentials.Spotify.ClientID)
	}
	if config.Credentials.Spotify.ClientSecret != "env_secret" {
		t.Errorf("expected trimmed secret from env, got %q", config.Credentials.Spotify.ClientSecret)
	}
	if config.Credentials.Spotify.RedirectURI != original {
		t.Errorf("expected empty env var to keep config value, got %s", config.Credentials.Spotify.RedirectURI)
	}
}

func TestLoadEnv(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envPath, []byte("CSVLIST_TEST_VALUE=from-dotenv\n"), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("CSVLIST_TEST_VALUE", "")
	os.Unsetenv("CSVLIST_TEST_VALUE")

	LoadEnv(envPath, filepath.Join(t.TempDir(), "missing.env"))

	if got := os.Getenv("CSVLIST_TEST_VALUE"); got != "from-dotenv" {
		t.Errorf("expected value from .env, got %q", got)
	}
}
