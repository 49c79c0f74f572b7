package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	ssoapi "github.com/emontalvo610/sso-oauth/api/echo"
	"github.com/emontalvo610/sso-oauth/backend"
	"github.com/emontalvo610/sso-oauth/cache"
	redcache "github.com/emontalvo610/sso-oauth/cache/redis"
	"github.com/emontalvo610/sso-oauth/config"
	"github.com/emontalvo610/sso-oauth/services"
	"github.com/emontalvo610/sso-oauth/session"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	initLogger(cfg)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log.Info().
		Str("http_port", cfg.HTTPPort).
		Str("api_url", cfg.APIURL).
		Str("companion_uri", cfg.PBracketsSSOURI).
		Str("tournaments_uri", cfg.TournamentsURI).
		Str("secret_cache", cfg.SecretCacheBackend).
		Msg("Configuration loaded")

	secrets := buildSecretCache(cfg)
	defer func() { _ = secrets.Close() }()

	apiClient := backend.NewClient(backend.Config{
		BaseURL:     cfg.APIURL,
		Timeout:     cfg.HTTPClientTimeout(),
		SecretCache: secrets,
	})

	sessions, err := session.NewStore(cfg.SessionSecret, cfg.SessionTTL(), cfg.CookieSecure)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize session store")
	}

	loginService := services.NewLoginService(apiClient, sessions, cfg.PBracketsSSOURI, cfg.TournamentsURI)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(requestLogger())

	ssoapi.NewSSOAPI(loginService, apiClient, sessions).RegisterRoutes(e)

	go func() {
		if err := e.Start(":" + cfg.HTTPPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()
	log.Info().Str("port", cfg.HTTPPort).Msg("SSO front door listening")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	log.Info().Msg("Server stopped")
}

func initLogger(cfg *config.ServerConfig) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

//nolint:ireturn
func buildSecretCache(cfg *config.ServerConfig) cache.SecretCache {
	if cfg.SecretCacheBackend == "redis" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		log.Info().Str("addr", cfg.RedisAddr).Msg("Using redis secret cache")
		return redcache.NewSecretCache(client, "sso", cfg.SecretCacheTTL())
	}
	return cache.NewMemorySecretCache(cfg.SecretCacheTTL())
}

// requestLogger logs each request through the global zerolog logger.
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			event := log.Info()
			if err != nil {
				event = log.Error().Err(err)
			}
			event.
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("HTTP request")
			return err
		}
	}
}
