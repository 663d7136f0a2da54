package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrDuplicateEmail     = errors.New("a user with that email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const DefaultPronouns = "they/them"

type User struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Pronouns  string   `json:"pronouns"`
	AvatarURL string   `json:"avatar_url"`
	Favorites []string `json:"favorites"`
	Password  password `json:"-"` // Hide password
}

// Clone returns a copy that shares no slice with u.
func (u User) Clone() User {
	u.Favorites = append([]string{}, u.Favorites...)
	return u
}

// AvatarFor returns a generated avatar URL for seed; an empty seed gets a
// random one.
func AvatarFor(seed string) string {
	if seed == "" {
		seed = uuid.NewString()
	}
	return fmt.Sprintf("https://api.dicebear.com/7.x/adventurer/svg?seed=%s", seed)
}

// password holds the bcrypt hash; the plain text never leaves this struct.
type password struct {
	text *string
	hash []byte
}

func (p *password) Set(text string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(text), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	p.text = &text
	p.hash = hash

	return nil
}

func (p *password) Compare(text string) error {
	return bcrypt.CompareHashAndPassword(p.hash, []byte(text))
}

// IsSet reports whether a hash is present.
func (p *password) IsSet() bool {
	return len(p.hash) > 0
}

type Store interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, key any, patch map[string]any) error
}
