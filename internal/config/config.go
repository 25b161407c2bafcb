package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultAPIBaseURL is the public disease.sh deployment.
const DefaultAPIBaseURL = "https://disease.sh"

// Config holds application configuration
type Config struct {
	APIBaseURL     string
	Port           string
	DataDir        string // GeoIP database directory
	RequestTimeout time.Duration
	HistoryDays    int
	SessionTTL     time.Duration
	MaxSessions    int
	SecureCookies  bool
	TrustedOrigins []string
}

// Load loads configuration from multiple sources with priority:
// 1. Command flags (set via LoadWithOverrides)
// 2. Config file (~/.config/covidboard/covidboard.toml or ./covidboard.toml)
// 3. Environment variables
func Load() (*Config, error) {
	v := newBaseViper()
	_ = v.ReadInConfig()
	return buildConfig(v, "", "", ""), nil
}

// LoadWithOverrides loads config and applies flag overrides
func LoadWithOverrides(apiBaseURL, port, dataDir string) (*Config, error) {
	v := newBaseViper()
	_ = v.ReadInConfig()
	return buildConfig(v, apiBaseURL, port, dataDir), nil
}

func newBaseViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("covidboard")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome != "" {
		v.AddConfigPath(filepath.Join(configHome, "covidboard"))
	}

	return v
}

func buildConfig(v *viper.Viper, overrideAPIBaseURL, overridePort, overrideDataDir string) *Config {
	cfg := &Config{
		APIBaseURL:     DefaultAPIBaseURL,
		Port:           "3000",
		DataDir:        "./data",
		RequestTimeout: 10 * time.Second,
		HistoryDays:    120,
		SessionTTL:     30 * time.Minute,
		MaxSessions:    10000,
		SecureCookies:  false,
		TrustedOrigins: []string{"localhost"},
	}

	// Config file values
	if v.IsSet("api_base_url") {
		cfg.APIBaseURL = v.GetString("api_base_url")
	}
	if v.IsSet("port") {
		cfg.Port = v.GetString("port")
	}
	if v.IsSet("data_dir") {
		cfg.DataDir = v.GetString("data_dir")
	}
	if v.IsSet("request_timeout") {
		if d := v.GetDuration("request_timeout"); d > 0 {
			cfg.RequestTimeout = d
		}
	}
	if v.IsSet("history_days") {
		if days := v.GetInt("history_days"); days > 0 {
			cfg.HistoryDays = days
		}
	}
	if v.IsSet("session_ttl") {
		if d := v.GetDuration("session_ttl"); d > 0 {
			cfg.SessionTTL = d
		}
	}
	if v.IsSet("max_sessions") {
		if n := v.GetInt("max_sessions"); n > 0 {
			cfg.MaxSessions = n
		}
	}
	if v.IsSet("secure_cookies") {
		cfg.SecureCookies = v.GetBool("secure_cookies")
	}
	if v.IsSet("trusted_origins") {
		cfg.TrustedOrigins = parseTrustedOrigins(v.GetString("trusted_origins"))
	}

	// Environment fallback (only if not configured)
	if !v.IsSet("api_base_url") {
		if env := os.Getenv("API_BASE_URL"); env != "" {
			cfg.APIBaseURL = env
		}
	}
	if !v.IsSet("port") {
		if env := os.Getenv("PORT"); env != "" {
			cfg.Port = env
		}
	}
	if !v.IsSet("data_dir") {
		if env := os.Getenv("DATA_DIR"); env != "" {
			cfg.DataDir = env
		}
	}
	if !v.IsSet("request_timeout") {
		if d, err := time.ParseDuration(os.Getenv("REQUEST_TIMEOUT")); err == nil && d > 0 {
			cfg.RequestTimeout = d
		}
	}
	if !v.IsSet("history_days") {
		if days, err := strconv.Atoi(os.Getenv("HISTORY_DAYS")); err == nil && days > 0 {
			cfg.HistoryDays = days
		}
	}
	if !v.IsSet("session_ttl") {
		if d, err := time.ParseDuration(os.Getenv("SESSION_TTL")); err == nil && d > 0 {
			cfg.SessionTTL = d
		}
	}
	if !v.IsSet("max_sessions") {
		if n, err := strconv.Atoi(os.Getenv("MAX_SESSIONS")); err == nil && n > 0 {
			cfg.MaxSessions = n
		}
	}
	if !v.IsSet("secure_cookies") {
		if env := os.Getenv("SECURE_COOKIES"); env != "" {
			cfg.SecureCookies = env == "true"
		}
	}
	if !v.IsSet("trusted_origins") {
		if env := os.Getenv("TRUSTED_ORIGINS"); env != "" {
			cfg.TrustedOrigins = parseTrustedOrigins(env)
		}
	}

	// Flags win
	if overrideAPIBaseURL != "" {
		cfg.APIBaseURL = overrideAPIBaseURL
	}
	if overridePort != "" {
		cfg.Port = overridePort
	}
	if overrideDataDir != "" {
		cfg.DataDir = overrideDataDir
	}

	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	return cfg
}

// parseTrustedOrigins parses a comma-separated string into a slice of trimmed, lowercased origins
func parseTrustedOrigins(originsStr string) []string {
	if originsStr == "" {
		return []string{}
	}

	parts := strings.Split(originsStr, ",")
	origins := make([]string, 0, len(parts))

	for _, part := range parts {
		origin, err := SanitizeTrustedDomain(part)
		if err != nil {
			continue
		}
		origins = append(origins, origin)
	}

	return origins
}
