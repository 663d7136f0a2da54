package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tinyspots/internal/apperr"
	"tinyspots/internal/domain/users"
	"tinyspots/internal/remote/remotetest"

	"go.uber.org/zap"
)

var nop = zap.NewNop().Sugar()

func newGateway(t *testing.T) *remotetest.Fake {
	t.Helper()
	gw := remotetest.New()
	err := gw.AddUser(users.User{
		ID:        "7",
		Name:      "Meera",
		Email:     "meera@example.com",
		Pronouns:  "she/her",
		Favorites: []string{"1", "3"},
	}, "Chai@2024")
	if err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	return gw
}

func TestLoginDetachedYieldsDemoUser(t *testing.T) {
	s := NewSession(nil, Config{}, nop)
	u, err := s.Login(context.Background(), "anyone@example.com", "whatever")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.ID != DemoUserID || u.Name != "Alex Explorer" || len(u.Favorites) != 0 {
		t.Errorf("user = %+v", u)
	}
	if s.State() != Authenticated {
		t.Errorf("state = %s", s.State())
	}
}

func TestLoginDemoEmailSkipsGateway(t *testing.T) {
	gw := newGateway(t)
	s := NewSession(gw, Config{}, nop)
	u, err := s.Login(context.Background(), "Test@Test.com", "x")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.ID != DemoUserID {
		t.Errorf("id = %q", u.ID)
	}
	if gw.TotalCalls() != 0 {
		t.Errorf("gateway called %d times", gw.TotalCalls())
	}
}

func TestLoginConnected(t *testing.T) {
	gw := newGateway(t)
	s := NewSession(gw, Config{}, nop)

	u, err := s.Login(context.Background(), " MEERA@example.com ", "Chai@2024")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.ID != "7" || len(u.Favorites) != 2 {
		t.Errorf("user = %+v", u)
	}
	cur, ok := s.Current()
	if !ok || cur.Email != "meera@example.com" {
		t.Errorf("current = %+v, %v", cur, ok)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	gw := newGateway(t)
	s := NewSession(gw, Config{}, nop)

	_, err := s.Login(context.Background(), "meera@example.com", "wrong")
	if !apperr.IsAuth(err) {
		t.Fatalf("err = %v, want AuthError", err)
	}
	if s.State() != Anonymous || s.LastFailure() == "" {
		t.Errorf("state = %s, last failure = %q", s.State(), s.LastFailure())
	}
	if _, ok := s.Current(); ok {
		t.Error("failed login left a current user")
	}
}

func TestLoginRemoteFailure(t *testing.T) {
	gw := newGateway(t)
	gw.FindUserErr = errors.New("connection reset")
	s := NewSession(gw, Config{}, nop)

	_, err := s.Login(context.Background(), "meera@example.com", "Chai@2024")
	if !apperr.IsRemote(err) {
		t.Fatalf("err = %v, want RemoteError", err)
	}
	if s.State() != Anonymous {
		t.Errorf("state = %s", s.State())
	}
}

func TestLoginValidation(t *testing.T) {
	gw := newGateway(t)
	s := NewSession(gw, Config{}, nop)
	_, err := s.Login(context.Background(), "not-an-email", "pw")
	if !apperr.IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if gw.TotalCalls() != 0 {
		t.Error("validation failure reached the gateway")
	}
}

func TestLoginThrottle(t *testing.T) {
	gw := newGateway(t)
	s := NewSession(gw, Config{LoginAttempts: 2, LoginWindow: time.Minute}, nop)
	ctx := context.Background()

	s.Login(ctx, "meera@example.com", "bad1")
	s.Login(ctx, "meera@example.com", "bad2")
	_, err := s.Login(ctx, "meera@example.com", "Chai@2024")
	if !apperr.IsAuth(err) {
		t.Fatalf("third attempt err = %v, want AuthError", err)
	}
	if n := gw.Calls("FindUserByCredentials"); n != 2 {
		t.Errorf("gateway calls = %d, want 2", n)
	}
}

func TestDemoLoginIsNeverThrottled(t *testing.T) {
	cfg := Config{LoginAttempts: 2, LoginWindow: time.Hour}
	for _, s := range []*Session{NewSession(nil, cfg, nop), NewSession(newGateway(t), cfg, nop)} {
		for i := 0; i < 5; i++ {
			u, err := s.Login(context.Background(), DefaultDemoEmail, "x")
			if err != nil || u.ID != DemoUserID {
				t.Fatalf("attempt %d: %+v, %v", i+1, u, err)
			}
		}
	}
}

func TestDetachedLoginIsNeverThrottled(t *testing.T) {
	s := NewSession(nil, Config{LoginAttempts: 1, LoginWindow: time.Hour}, nop)
	for i := 0; i < 3; i++ {
		if _, err := s.Login(context.Background(), "ravi@example.com", "pw"); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
}

func TestSignupValidation(t *testing.T) {
	gw := newGateway(t)
	s := NewSession(gw, Config{}, nop)

	tests := []struct {
		name  string
		in    SignupInput
		field string
	}{
		{"blank name", SignupInput{Name: " ", Email: "a@b.co", Password: "Abcdef1!"}, "name"},
		{"bad email", SignupInput{Name: "A", Email: "nope", Password: "Abcdef1!"}, "email"},
		{"weak password", SignupInput{Name: "A", Email: "a@b.co", Password: "abcdefgh"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Signup(context.Background(), tt.in)
			var ve *apperr.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("err = %v, want ValidationError on %s", err, tt.field)
			}
		})
	}
	if gw.TotalCalls() != 0 {
		t.Error("validation failure reached the gateway")
	}
}

func TestSignupConnected(t *testing.T) {
	gw := newGateway(t)
	s := NewSession(gw, Config{}, nop)

	u, err := s.Signup(context.Background(), SignupInput{Name: "Ravi", Email: "Ravi@Example.com", Password: "Street#Food9"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if u.ID == "" || u.Pronouns != users.DefaultPronouns || u.AvatarURL == "" {
		t.Errorf("user = %+v", u)
	}
	stored, ok := gw.User("ravi@example.com")
	if !ok {
		t.Fatal("user not stored remotely")
	}
	if stored.Password.Compare("Street#Food9") != nil {
		t.Error("stored password does not match")
	}
	if s.State() != Authenticated {
		t.Errorf("state = %s", s.State())
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	gw := newGateway(t)
	s := NewSession(gw, Config{}, nop)

	_, err := s.Signup(context.Background(), SignupInput{Name: "M", Email: "meera@example.com", Password: "Another#1x"})
	if !apperr.IsAuth(err) || !errors.Is(err, users.ErrDuplicateEmail) {
		t.Fatalf("err = %v, want duplicate email AuthError", err)
	}
	if gw.Calls("InsertUser") != 0 {
		t.Error("insert attempted after pre-check found the email")
	}

	gw.EmailTakenOverride = true
	_, err = s.Signup(context.Background(), SignupInput{Name: "M", Email: "meera@example.com", Password: "Another#1x"})
	if !apperr.IsAuth(err) {
		t.Fatalf("racing insert err = %v, want AuthError", err)
	}
	if s.State() != Anonymous {
		t.Errorf("state = %s", s.State())
	}
}

func TestSignupDetached(t *testing.T) {
	s := NewSession(nil, Config{}, nop)
	u, err := s.Signup(context.Background(), SignupInput{Name: "Local", Email: "local@example.com", Password: "Local#User1"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if u.ID == "" || u.ID == DemoUserID {
		t.Errorf("id = %q", u.ID)
	}
}

func TestProfileAndFavoritesNeedUser(t *testing.T) {
	s := NewSession(nil, Config{}, nop)
	if _, err := s.UpdateProfile("Alex", ""); !apperr.IsAuth(err) {
		t.Errorf("UpdateProfile err = %v", err)
	}
	if _, err := s.SetFavorites([]string{"1"}); !apperr.IsAuth(err) {
		t.Errorf("SetFavorites err = %v", err)
	}

	s.Login(context.Background(), "a@b.co", "x")
	u, err := s.UpdateProfile("Alex E.", "")
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if u.Name != "Alex E." || u.Pronouns != users.DefaultPronouns {
		t.Errorf("user = %+v", u)
	}
	if _, err := s.UpdateProfile("  ", "he/him"); !apperr.IsValidation(err) {
		t.Errorf("blank name err = %v", err)
	}

	s.Logout()
	if s.State() != Anonymous {
		t.Errorf("state after logout = %s", s.State())
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		pw string
		ok bool
	}{
		{"Abcdef1!", true},
		{"Street#Food9", true},
		{"Ab1!", false},
		{"abcdef1!", false},
		{"ABCDEF1!", false},
		{"Abcdefg!", false},
		{"Abcdefg1", false},
		{"Abcdef1?", false},
		{"Ab1!" + strings.Repeat("x", 68), true},
		{"Ab1!" + strings.Repeat("x", 69), false},
		{"Ab1!" + strings.Repeat("é", 40), false},
	}
	for _, tt := range tests {
		err := ValidatePassword(tt.pw)
		if (err == nil) != tt.ok {
			t.Errorf("ValidatePassword(%q) = %v", tt.pw, err)
		}
	}
}

func TestJWTAuthenticator(t *testing.T) {
	a := NewJWTAuthenticator("secret", "tinyspots", time.Hour)
	tok, err := a.GenerateToken("demo-1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	parsed, err := a.ValidateToken(tok)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if sub, err := Subject(parsed); err != nil || sub != "demo-1" {
		t.Errorf("Subject = %q, %v", sub, err)
	}

	other := NewJWTAuthenticator("other", "tinyspots", time.Hour)
	if _, err := other.ValidateToken(tok); err == nil {
		t.Error("token accepted with wrong secret")
	}

	expired := NewJWTAuthenticator("secret", "tinyspots", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := expired.ValidateToken(tok); err == nil {
		t.Error("expired token accepted")
	}
}
