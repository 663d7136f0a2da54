package main

import (
	"context"
	"expvar"
	"fmt"
	"os"
	"runtime"
	"strings"

	"tinyspots/internal/auth"
	"tinyspots/internal/connmode"
	"tinyspots/internal/coordinator"
	"tinyspots/internal/db"
	"tinyspots/internal/ratelimiter"
	"tinyspots/internal/remote"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a colored console logger at the given level.
func NewLogger(level string) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), lvl)

	return zap.New(core).Sugar(), nil
}

var version = "0.4.0"

func main() {
	// a missing .env is fine; the process environment still applies
	envErr := godotenv.Load()

	logger, err := NewLogger(getString("LOG_LEVEL", "info"))
	if err != nil {
		fmt.Println("Error creating logger:", err)
		logger, _ = NewLogger("info")
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Infow(".env not loaded, using process environment", "error", envErr)
	}

	cfg := loadConfig(logger)
	if cfg.auth.token.secret == "" {
		cfg.auth.token.secret = uuid.NewString()
		logger.Warnw("AUTH_TOKEN_SECRET not set, tokens will not survive a restart")
	}

	ctx := context.Background()

	selection := connmode.NewSelector(logger).Select(ctx, connmode.Options{
		Endpoint:   cfg.remote.url,
		Credential: cfg.remote.key,
		Mode:       cfg.remote.mode,
		Timeout:    cfg.remote.connectTimeout,
		Pool: db.PoolConfig{
			MaxConns:        cfg.remote.maxConns,
			MaxConnIdleTime: cfg.remote.maxIdleTime,
		},
	})

	var gateway remote.Gateway
	if selection.Mode == connmode.Connected {
		defer selection.Pool.Close()
		gateway = remote.NewClient(selection.Pool, cfg.remote.keyKind, logger)
		logger.Info("database connection pool established")
	}

	coord := coordinator.New(gateway, logger, coordinator.Options{
		Auth: auth.Config{
			DemoEmail:     cfg.auth.demoEmail,
			LoginAttempts: cfg.auth.loginAttempts,
			LoginWindow:   cfg.auth.loginWindow,
		},
		RefetchAfterInsert: cfg.sync.refetchAfterInsert,
		RefreshInterval:    cfg.sync.refreshInterval,
	})

	if coord.Refresh(ctx) {
		logger.Infow("showing built-in vendors", "mode", coord.Mode())
	}

	app := &application{
		config:      cfg,
		logger:      logger,
		coordinator: coord,
		authenticator: auth.NewJWTAuthenticator(
			cfg.auth.token.secret,
			cfg.auth.token.iss,
			cfg.auth.token.exp,
		),
		rateLimiter: ratelimiter.NewFixedWindowLimiter(
			cfg.rateLimiter.RequestsPerTimeFrame,
			cfg.rateLimiter.TimeFrame,
		),
	}

	//Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.NewString("mode").Set(string(coord.Mode()))
	expvar.Publish("vendors", expvar.Func(func() any {
		return len(coord.Vendors(""))
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
