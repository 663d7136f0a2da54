// Package coordinator is the single entry point the app uses to read and
// change vendors, reviews, favorites and the session.
//
// Every write follows the same steps: validate, apply locally, stop if
// detached, call the remote store, reconcile on success. A remote failure is
// returned as *apperr.RemoteError and the local change is kept.
package coordinator

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"tinyspots/internal/apperr"
	"tinyspots/internal/auth"
	"tinyspots/internal/catalog"
	"tinyspots/internal/connmode"
	"tinyspots/internal/favorites"
	"tinyspots/internal/remote"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// provisionalPrefix marks ids minted locally that the remote store has not
// confirmed yet.
const provisionalPrefix = "local-"

type Options struct {
	Auth auth.Config

	// RefetchAfterInsert reloads the whole catalog after a vendor insert
	// instead of swapping in the returned row.
	RefetchAfterInsert bool

	// RefreshInterval enables a periodic catalog refresh while connected.
	RefreshInterval time.Duration

	// OnRemoteError is called for failures of background writes.
	OnRemoteError func(op string, err error)

	// Now defaults to time.Now; used to date reviews.
	Now func() time.Time
}

type Coordinator struct {
	gateway   remote.Gateway
	catalog   *catalog.Store
	favorites *favorites.Manager
	session   *auth.Session
	logger    *zap.SugaredLogger
	opts      Options

	mu      sync.Mutex // serialises local applies
	loading atomic.Bool
	wg      sync.WaitGroup
}

// New builds a coordinator. A nil gateway means detached: everything stays
// in memory.
func New(gw remote.Gateway, logger *zap.SugaredLogger, opts Options) *Coordinator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Coordinator{
		gateway:   gw,
		catalog:   catalog.New(),
		favorites: favorites.New(),
		session:   auth.NewSession(gw, opts.Auth, logger),
		logger:    logger,
		opts:      opts,
	}
}

func (c *Coordinator) Mode() connmode.Mode {
	if c.gateway == nil {
		return connmode.Detached
	}
	return connmode.Connected
}

func (c *Coordinator) connected() bool {
	return c.gateway != nil
}

// Loading reports whether a catalog fetch is in flight.
func (c *Coordinator) Loading() bool {
	return c.loading.Load()
}

// Wait blocks until every background write has finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// background runs a remote write nobody waits on. Failures are logged and
// handed to OnRemoteError.
func (c *Coordinator) background(ctx context.Context, op string, fn func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := fn(ctx); err != nil {
			c.remoteFailed(op, err)
		}
	}()
}

func (c *Coordinator) remoteFailed(op string, err error) {
	c.logger.Errorw("remote write failed, keeping local state", "op", op, "error", err)
	if c.opts.OnRemoteError != nil {
		c.opts.OnRemoteError(op, err)
	}
}

func provisionalID() string {
	return provisionalPrefix + uuid.NewString()
}

// IsProvisional reports whether id was minted locally and never confirmed.
func IsProvisional(id string) bool {
	return strings.HasPrefix(id, provisionalPrefix)
}

func requireID(field, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", apperr.Invalid(field, "is required")
	}
	return id, nil
}
