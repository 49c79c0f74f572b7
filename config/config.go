package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds all configuration for the front-door service.
// Tags use mapstructure for Viper unmarshalling; every key is also bound to
// the environment variable of the same name.
type ServerConfig struct {
	HTTPPort  string `mapstructure:"HTTP_PORT"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`

	// APIURL is the base URL of the remote authentication API.
	APIURL string `mapstructure:"API_URL"`
	// PBracketsSSOURI is the companion application's SSO base URI, the
	// default post-login redirect target.
	PBracketsSSOURI string `mapstructure:"PBRACKETS_SSO_URI"`
	// TournamentsURI is the optional second downstream domain. When set,
	// login performs a health check against it and, if healthy, hands the
	// session off to "{TournamentsURI}/session".
	TournamentsURI string `mapstructure:"PICKLEBALL_TOURNAMENTS_URI"`

	// HTTPClientTimeoutSec bounds every outbound backend call. A timeout is
	// treated the same as a non-success status.
	HTTPClientTimeoutSec int `mapstructure:"HTTP_CLIENT_TIMEOUT_SEC"`

	// SessionSecret keys the cookie sealing. Must be non-empty; any string
	// works, it is stretched to a fixed-size key before use.
	SessionSecret  string `mapstructure:"SESSION_SECRET"`
	SessionTTLHour int    `mapstructure:"SESSION_TTL_HOUR"`
	CookieSecure   bool   `mapstructure:"COOKIE_SECURE"`

	// SecretCacheBackend selects where validated email secrets are
	// memoized: "memory" (ttlcache) or "redis".
	SecretCacheBackend string `mapstructure:"SECRET_CACHE_BACKEND"`
	SecretCacheTTLMin  int    `mapstructure:"SECRET_CACHE_TTL_MIN"`
	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	RedisPassword      string `mapstructure:"REDIS_PASSWORD"`
}

// HTTPClientTimeout returns the outbound call deadline as a duration.
func (c *ServerConfig) HTTPClientTimeout() time.Duration {
	return time.Duration(c.HTTPClientTimeoutSec) * time.Second
}

// SessionTTL returns the session cookie lifetime as a duration.
func (c *ServerConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHour) * time.Hour
}

// SecretCacheTTL returns the email-secret memo lifetime as a duration.
func (c *ServerConfig) SecretCacheTTL() time.Duration {
	return time.Duration(c.SecretCacheTTLMin) * time.Minute
}

// Validate rejects configurations the server cannot run with.
func (c *ServerConfig) Validate() error {
	if c.APIURL == "" {
		return errors.New("API_URL must be set")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET must be set")
	}
	if c.SecretCacheBackend != "memory" && c.SecretCacheBackend != "redis" {
		return fmt.Errorf("unknown SECRET_CACHE_BACKEND %q", c.SecretCacheBackend)
	}
	if c.SecretCacheBackend == "redis" && c.RedisAddr == "" {
		return errors.New("REDIS_ADDR must be set when SECRET_CACHE_BACKEND is redis")
	}
	return nil
}

// LoadConfig reads configuration from file, environment variables, and
// defaults.
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/sso-oauth/")
	v.AddConfigPath("$HOME/.sso-oauth")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("API_URL", "")
	v.SetDefault("PBRACKETS_SSO_URI", "")
	v.SetDefault("PICKLEBALL_TOURNAMENTS_URI", "")
	v.SetDefault("HTTP_CLIENT_TIMEOUT_SEC", 10)
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_TTL_HOUR", 24)
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("SECRET_CACHE_BACKEND", "memory")
	v.SetDefault("SECRET_CACHE_TTL_MIN", 15)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, we run on env vars and defaults.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}
