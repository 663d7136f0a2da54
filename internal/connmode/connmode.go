// Package connmode decides at startup whether the app talks to the remote
// store (connected) or keeps everything in memory (detached). Selection
// never fails: every problem resolves to detached.
package connmode

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"tinyspots/internal/apperr"
	"tinyspots/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Mode string

const (
	Connected Mode = "connected"
	Detached  Mode = "detached"
)

// Requested modes, read from configuration.
const (
	RequestAuto      = "auto"
	RequestConnected = "connected"
	RequestDetached  = "detached"
)

const (
	placeholderEndpoint = "YOUR_URL_GOES_HERE"
	DefaultTimeout      = 5 * time.Second
)

var errNoEndpoint = errors.New("no remote endpoint configured")

type Options struct {
	Endpoint   string
	Credential string
	Mode       string
	Timeout    time.Duration
	Pool       db.PoolConfig
}

type Result struct {
	Mode   Mode
	Pool   *pgxpool.Pool // nil when detached
	Reason string        // why detached was chosen
}

type connectFunc func(context.Context, *pgxpool.Config, db.PoolConfig) (*pgxpool.Pool, error)

type Selector struct {
	logger  *zap.SugaredLogger
	connect connectFunc
}

func NewSelector(logger *zap.SugaredLogger) *Selector {
	return &Selector{logger: logger, connect: db.New}
}

// Select resolves the connection mode. It returns within opts.Timeout (plus
// endpoint parsing) and recovers from any panic in the driver.
func (s *Selector) Select(ctx context.Context, opts Options) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = s.detached(opts, "client initialisation panicked", fmt.Errorf("%v", r))
		}
	}()

	switch strings.ToLower(strings.TrimSpace(opts.Mode)) {
	case RequestDetached:
		s.logger.Infow("remote store disabled by configuration")
		return Result{Mode: Detached, Reason: "detached mode requested"}
	case "", RequestAuto, RequestConnected:
	default:
		s.logger.Warnw("unknown remote mode, probing as auto", "mode", opts.Mode)
	}

	endpoint, err := NormalizeEndpoint(opts.Endpoint)
	if err != nil {
		return s.detached(opts, "invalid endpoint", err)
	}

	config, err := pgxpool.ParseConfig(endpoint)
	if err != nil {
		return s.detached(opts, "invalid endpoint", err)
	}
	if opts.Credential != "" {
		config.ConnConfig.Password = opts.Credential
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := s.connect(ctx, config, opts.Pool)
	if err != nil {
		return s.detached(opts, "remote store unreachable", err)
	}

	s.logger.Infow("remote store reachable", "host", config.ConnConfig.Host, "database", config.ConnConfig.Database)
	return Result{Mode: Connected, Pool: pool}
}

func (s *Selector) detached(opts Options, reason string, err error) Result {
	if strings.EqualFold(strings.TrimSpace(opts.Mode), RequestConnected) {
		s.logger.Warnw("connected mode requested but unavailable", "reason", reason, "error", err)
	}
	apperr.Fallback(s.logger, reason, err)
	return Result{Mode: Detached, Reason: reason}
}

// NormalizeEndpoint accepts a postgres URL, adding the scheme when missing.
// Empty input and the placeholder endpoint are rejected.
func NormalizeEndpoint(raw string) (string, error) {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" || endpoint == placeholderEndpoint {
		return "", errNoEndpoint
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "postgres://" + endpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "postgres", "postgresql":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("endpoint %q has no host", raw)
	}
	return endpoint, nil
}
