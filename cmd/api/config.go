package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"tinyspots/internal/auth"
	"tinyspots/internal/connmode"
	"tinyspots/internal/ratelimiter"
	"tinyspots/internal/remote"

	"go.uber.org/zap"
)

type config struct {
	addr        string
	env         string
	remote      remoteConfig
	sync        syncConfig
	auth        authConfig
	rateLimiter ratelimiter.Config
}

type remoteConfig struct {
	url            string
	key            string
	mode           string
	keyKind        remote.KeyKind
	connectTimeout time.Duration
	maxConns       int32
	maxIdleTime    time.Duration
}

type syncConfig struct {
	refetchAfterInsert bool
	refreshInterval    time.Duration
}

type authConfig struct {
	demoEmail     string
	token         tokenConfig
	loginAttempts int
	loginWindow   time.Duration
}

type tokenConfig struct {
	secret string
	exp    time.Duration
	iss    string
}

func loadConfig(logger *zap.SugaredLogger) config {
	env := envReader{logger: logger}

	return config{
		addr: getString("ADDR", ":8080"),
		env:  getString("ENV", "development"),
		remote: remoteConfig{
			url:            os.Getenv("REMOTE_URL"),
			key:            os.Getenv("REMOTE_KEY"),
			mode:           getString("REMOTE_MODE", connmode.RequestAuto),
			keyKind:        remote.ParseKeyKind(os.Getenv("REMOTE_KEY_KIND")),
			connectTimeout: env.Duration("REMOTE_CONNECT_TIMEOUT", connmode.DefaultTimeout),
			maxConns:       int32(env.Int("DB_MAX_CONNS", 10)),
			maxIdleTime:    env.Duration("DB_MAX_IDLE_TIME", 15*time.Minute),
		},
		sync: syncConfig{
			refetchAfterInsert: env.Bool("REFETCH_AFTER_INSERT", false),
			refreshInterval:    env.Duration("REFRESH_INTERVAL", 0),
		},
		auth: authConfig{
			demoEmail: getString("DEMO_EMAIL", auth.DefaultDemoEmail),
			token: tokenConfig{
				secret: os.Getenv("AUTH_TOKEN_SECRET"),
				exp:    env.Duration("AUTH_TOKEN_EXP", time.Hour*24*3), // 3 days
				iss:    "tinyspots",
			},
			loginAttempts: env.Int("LOGIN_ATTEMPTS", 5),
			loginWindow:   env.Duration("LOGIN_WINDOW", 15*time.Minute),
		},
		rateLimiter: ratelimiter.Config{
			RequestsPerTimeFrame: env.Int("RATELIMITER_REQUESTS_COUNT", 200),
			TimeFrame:            5 * time.Second,
			Enabled:              env.Bool("RATE_LIMITER_ENABLED", false),
		},
	}
}

func getString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// envReader parses typed values, logging and falling back to the default on
// anything it cannot parse.
type envReader struct {
	logger *zap.SugaredLogger
}

func (e envReader) Int(key string, fallback int) int {
	val, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(val) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		e.logger.Warnw("invalid integer, using default", "key", key, "value", val, "default", fallback)
		return fallback
	}
	return parsed
}

func (e envReader) Bool(key string, fallback bool) bool {
	val, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(val) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		e.logger.Warnw("invalid boolean, using default", "key", key, "value", val, "default", fallback)
		return fallback
	}
	return parsed
}

func (e envReader) Duration(key string, fallback time.Duration) time.Duration {
	val, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(val) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(val))
	if err != nil {
		e.logger.Warnw("invalid duration, using default", "key", key, "value", val, "default", fallback)
		return fallback
	}
	return parsed
}
