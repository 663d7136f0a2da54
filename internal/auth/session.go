// Package auth holds the app's single user session, the signup password
// policy, and the bearer tokens the HTTP adapter hands out.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"tinyspots/internal/apperr"
	"tinyspots/internal/domain/users"
	"tinyspots/internal/ratelimiter"
	"tinyspots/internal/remote"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type State string

const (
	Anonymous      State = "anonymous"
	Authenticating State = "authenticating"
	Authenticated  State = "authenticated"
)

const (
	DefaultDemoEmail = "test@test.com"
	DemoUserID       = "demo-1"
)

// DemoUser is the canned identity used when there is no remote store or the
// demo email signs in.
func DemoUser() users.User {
	return users.User{
		ID:        DemoUserID,
		Name:      "Alex Explorer",
		Email:     "alex@tinyspots.com",
		Pronouns:  users.DefaultPronouns,
		AvatarURL: users.AvatarFor("Felix"),
		Favorites: []string{},
	}
}

type Config struct {
	DemoEmail     string
	LoginAttempts int // per email and window; 0 disables throttling
	LoginWindow   time.Duration
}

type SignupInput struct {
	Name     string `json:"name" validate:"notblank,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

// Session is the one signed-in identity of the running app. A nil gateway
// means the app is detached and every identity is local.
type Session struct {
	mu          sync.RWMutex
	state       State
	user        users.User
	lastFailure string

	gateway   remote.Gateway
	demoEmail string
	throttle  *ratelimiter.FixedWindowRateLimiter
	logger    *zap.SugaredLogger
}

func NewSession(gw remote.Gateway, cfg Config, logger *zap.SugaredLogger) *Session {
	s := &Session{
		state:     Anonymous,
		gateway:   gw,
		demoEmail: users.NormalizeEmail(cfg.DemoEmail),
		logger:    logger,
	}
	if s.demoEmail == "" {
		s.demoEmail = DefaultDemoEmail
	}
	if cfg.LoginAttempts > 0 && cfg.LoginWindow > 0 {
		s.throttle = ratelimiter.NewFixedWindowLimiter(cfg.LoginAttempts, cfg.LoginWindow)
	}
	return s
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Current returns the signed-in user.
func (s *Session) Current() (users.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != Authenticated {
		return users.User{}, false
	}
	return s.user.Clone(), true
}

// LastFailure is the reason of the most recent failed login or signup.
func (s *Session) LastFailure() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFailure
}

func (s *Session) begin() {
	s.mu.Lock()
	s.state = Authenticating
	s.mu.Unlock()
}

func (s *Session) succeed(u users.User) users.User {
	if u.Favorites == nil {
		u.Favorites = []string{}
	}
	s.mu.Lock()
	s.state = Authenticated
	s.user = u.Clone()
	s.lastFailure = ""
	s.mu.Unlock()
	return u
}

func (s *Session) fail(err error) error {
	s.mu.Lock()
	s.state = Anonymous
	s.user = users.User{}
	s.lastFailure = err.Error()
	s.mu.Unlock()
	return err
}

// Login signs in with email and password. The demo email, or a detached
// session, yields the demo identity without a remote call.
func (s *Session) Login(ctx context.Context, email, password string) (users.User, error) {
	in := loginInput{Email: users.NormalizeEmail(email), Password: password}
	if err := apperr.Check(in); err != nil {
		return users.User{}, err
	}

	if s.gateway == nil || in.Email == s.demoEmail {
		s.logger.Infow("signing in demo user", "email", in.Email)
		return s.succeed(DemoUser()), nil
	}

	if s.throttle != nil {
		if ok, retry := s.throttle.Allow(in.Email); !ok {
			s.logger.Warnw("login throttled", "email", in.Email, "retry_after", retry)
			return users.User{}, s.fail(apperr.Unauthorized("too many login attempts, try again in "+retry.Round(time.Second).String(), nil))
		}
	}

	s.begin()
	u, err := s.gateway.FindUserByCredentials(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			return users.User{}, s.fail(apperr.Unauthorized("invalid email or password", err))
		}
		return users.User{}, s.fail(apperr.Remote("login", err))
	}

	if s.throttle != nil {
		s.throttle.Reset(in.Email)
	}
	s.logger.Infow("user signed in", "user_id", u.ID)
	return s.succeed(u), nil
}

// Signup validates the form, then registers a new user. Detached sessions
// create a local identity.
func (s *Session) Signup(ctx context.Context, in SignupInput) (users.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = users.NormalizeEmail(in.Email)
	if err := apperr.Check(in); err != nil {
		return users.User{}, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return users.User{}, err
	}

	u := users.User{
		Name:      in.Name,
		Email:     in.Email,
		Pronouns:  users.DefaultPronouns,
		AvatarURL: users.AvatarFor(""),
		Favorites: []string{},
	}

	if s.gateway == nil {
		u.ID = uuid.NewString()
		s.logger.Infow("created local user", "user_id", u.ID)
		return s.succeed(u), nil
	}

	s.begin()
	taken, err := s.gateway.EmailTaken(ctx, in.Email)
	if err != nil {
		return users.User{}, s.fail(apperr.Remote("signup", err))
	}
	if taken {
		return users.User{}, s.fail(apperr.Unauthorized("email already registered", users.ErrDuplicateEmail))
	}

	if err := u.Password.Set(in.Password); err != nil {
		return users.User{}, s.fail(err)
	}

	created, err := s.gateway.InsertUser(ctx, u)
	if err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			return users.User{}, s.fail(apperr.Unauthorized("email already registered", err))
		}
		return users.User{}, s.fail(apperr.Remote("signup", err))
	}

	s.logger.Infow("user registered", "user_id", created.ID)
	return s.succeed(created), nil
}

func (s *Session) Logout() {
	s.mu.Lock()
	s.state = Anonymous
	s.user = users.User{}
	s.mu.Unlock()
}

type profileInput struct {
	Name     string `json:"name" validate:"notblank,max=100"`
	Pronouns string `json:"pronouns" validate:"max=40"`
}

// UpdateProfile changes the local name and pronouns. Empty pronouns fall back
// to the default.
func (s *Session) UpdateProfile(name, pronouns string) (users.User, error) {
	in := profileInput{Name: strings.TrimSpace(name), Pronouns: strings.TrimSpace(pronouns)}
	if err := apperr.Check(in); err != nil {
		return users.User{}, err
	}
	if in.Pronouns == "" {
		in.Pronouns = users.DefaultPronouns
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Authenticated {
		return users.User{}, apperr.Unauthorized("not signed in", nil)
	}
	s.user.Name = in.Name
	s.user.Pronouns = in.Pronouns
	return s.user.Clone(), nil
}

// SetFavorites stores ids on the signed-in user.
func (s *Session) SetFavorites(ids []string) (users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Authenticated {
		return users.User{}, apperr.Unauthorized("not signed in", nil)
	}
	s.user.Favorites = append([]string{}, ids...)
	return s.user.Clone(), nil
}
