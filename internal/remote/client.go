package remote

import (
	"context"
	"errors"
	"fmt"

	"tinyspots/internal/apperr"
	"tinyspots/internal/db"
	"tinyspots/internal/domain/reviews"
	"tinyspots/internal/domain/users"
	"tinyspots/internal/domain/vendors"

	"go.uber.org/zap"
)

// Client implements Gateway over the three table repositories.
type Client struct {
	Vendors vendors.Store
	Reviews reviews.Store
	Users   users.Store

	keys   KeyKind
	logger *zap.SugaredLogger
}

func NewClient(q db.Querier, keys KeyKind, logger *zap.SugaredLogger) *Client {
	return &Client{
		Vendors: vendors.NewRepository(q),
		Reviews: reviews.NewRepository(q),
		Users:   users.NewRepository(q),
		keys:    keys,
		logger:  logger,
	}
}

// ListVendors reads every vendor and attaches its reviews, newest first.
// A malformed vendor row fails the whole read. A failed review read only
// costs the reviews; the vendors still come back.
func (c *Client) ListVendors(ctx context.Context) ([]vendors.Vendor, error) {
	rows, err := c.Vendors.List(ctx)
	if err != nil {
		return nil, apperr.Remote("list vendors", err)
	}

	out := make([]vendors.Vendor, 0, len(rows))
	index := make(map[string]int, len(rows))
	for _, row := range rows {
		v, err := vendors.DecodeRow(row)
		if err != nil {
			return nil, apperr.Remote("list vendors", err)
		}
		index[v.ID] = len(out)
		out = append(out, v)
	}

	all, err := c.Reviews.ListAll(ctx)
	if err != nil {
		c.logger.Warnw("vendors loaded without reviews", "error", err)
		return out, nil
	}
	for _, r := range all {
		i, ok := index[r.VendorID]
		if !ok {
			continue
		}
		out[i].Reviews = append(out[i].Reviews, r)
	}
	return out, nil
}

func (c *Client) InsertVendor(ctx context.Context, v vendors.Vendor) (vendors.Vendor, error) {
	row, err := c.Vendors.Insert(ctx, v)
	if err != nil {
		return vendors.Vendor{}, apperr.Remote("insert vendor", err)
	}
	stored, err := vendors.DecodeRow(row)
	if err != nil {
		return vendors.Vendor{}, apperr.Remote("insert vendor", err)
	}
	return stored, nil
}

// InsertReview converts vendorID to the vendors table's key type before the
// insert; a mismatch would otherwise be rejected by the store.
func (c *Client) InsertReview(ctx context.Context, vendorID string, r reviews.Review) (reviews.Review, error) {
	key, err := NativeKey(c.keys, vendorID)
	if err != nil {
		return reviews.Review{}, apperr.Remote("insert review", err)
	}
	stored, err := c.Reviews.Insert(ctx, key, r)
	if err != nil {
		return reviews.Review{}, apperr.Remote("insert review", err)
	}
	return stored, nil
}

func (c *Client) UpdateEntity(ctx context.Context, kind EntityKind, id string, patch Patch) error {
	op := fmt.Sprintf("update %s", kind)
	key, err := NativeKey(c.keys, id)
	if err != nil {
		return apperr.Remote(op, err)
	}
	switch kind {
	case VendorsKind:
		err = c.Vendors.Update(ctx, key, patch)
	case UsersKind:
		err = c.Users.Update(ctx, key, patch)
	default:
		err = fmt.Errorf("unknown entity kind %q", kind)
	}
	return apperr.Remote(op, err)
}

// FindUserByCredentials looks the user up by email and checks the password
// against the stored bcrypt hash.
func (c *Client) FindUserByCredentials(ctx context.Context, email, password string) (users.User, error) {
	u, err := c.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return users.User{}, users.ErrInvalidCredentials
		}
		return users.User{}, apperr.Remote("find user", err)
	}
	if err := u.Password.Compare(password); err != nil {
		return users.User{}, users.ErrInvalidCredentials
	}
	return u.Clone(), nil
}

func (c *Client) EmailTaken(ctx context.Context, email string) (bool, error) {
	taken, err := c.Users.EmailExists(ctx, email)
	if err != nil {
		return false, apperr.Remote("check email", err)
	}
	return taken, nil
}

func (c *Client) InsertUser(ctx context.Context, u users.User) (users.User, error) {
	if err := c.Users.Create(ctx, &u); err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			return users.User{}, err
		}
		return users.User{}, apperr.Remote("insert user", err)
	}
	return u.Clone(), nil
}
