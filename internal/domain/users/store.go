package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tinyspots/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

var QueryTimeoutDuration = time.Second * 5

const uniqueViolation = "23505"

// columns a patch may touch; email and password are not among them
var updatableFields = map[string]bool{
	"name":       true,
	"pronouns":   true,
	"avatar_url": true,
	"favorites":  true,
}

type Repository struct {
	db db.Querier
}

func NewRepository(q db.Querier) Store {
	return &Repository{db: q}
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id::text, name, email, password, pronouns, avatar_url,
		       COALESCE(favorites::text[], '{}')
		FROM users
		WHERE email = $1
	`
	var (
		user             User
		hash             string
		pronouns, avatar pgtype.Text
	)
	err := r.db.QueryRow(ctx, query, NormalizeEmail(email)).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&hash,
		&pronouns,
		&avatar,
		&user.Favorites,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	user.Password.hash = []byte(hash)
	user.Pronouns = pronouns.String
	if user.Pronouns == "" {
		user.Pronouns = DefaultPronouns
	}
	user.AvatarURL = avatar.String
	return &user, nil
}

// EmailExists is the pre-check before Create. It is not transactional with
// the insert; the unique constraint is the final arbiter.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
	if err := r.db.QueryRow(ctx, query, NormalizeEmail(email)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// Create inserts user and fills in its generated id. The password must
// already be hashed with Password.Set.
func (r *Repository) Create(ctx context.Context, user *User) error {
	if !user.Password.IsSet() {
		return fmt.Errorf("refusing to store user %q without a password hash", user.Email)
	}

	query := `
	  INSERT INTO users (name, email, password, pronouns, avatar_url, favorites)
	  VALUES ($1, $2, $3, $4, $5, $6)
	  RETURNING id::text
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	favorites := user.Favorites
	if favorites == nil {
		favorites = []string{}
	}
	user.Email = NormalizeEmail(user.Email)

	err := r.db.QueryRow(
		ctx, query, user.Name, user.Email, string(user.Password.hash), user.Pronouns, user.AvatarURL, favorites,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "users_email_key" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Update applies patch to the user identified by key.
func (r *Repository) Update(ctx context.Context, key any, patch map[string]any) error {
	query, args, err := db.BuildUpdate("users", updatableFields, patch, key)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// NormalizeEmail is the form emails are stored and compared in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
