// Package remote is the gateway to the remote relational store. Every call
// can fail on its own; failures leave as *apperr.RemoteError except the two
// credential outcomes callers must tell apart (users.ErrInvalidCredentials
// and users.ErrDuplicateEmail).
package remote

import (
	"context"

	"tinyspots/internal/domain/reviews"
	"tinyspots/internal/domain/users"
	"tinyspots/internal/domain/vendors"
)

type EntityKind string

const (
	VendorsKind EntityKind = "vendors"
	UsersKind   EntityKind = "users"
)

// Patch maps column names to new values.
type Patch map[string]any

type Gateway interface {
	ListVendors(ctx context.Context) ([]vendors.Vendor, error)
	InsertVendor(ctx context.Context, v vendors.Vendor) (vendors.Vendor, error)
	InsertReview(ctx context.Context, vendorID string, r reviews.Review) (reviews.Review, error)
	UpdateEntity(ctx context.Context, kind EntityKind, id string, patch Patch) error
	FindUserByCredentials(ctx context.Context, email, password string) (users.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	InsertUser(ctx context.Context, u users.User) (users.User, error)
}
