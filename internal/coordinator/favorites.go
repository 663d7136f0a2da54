package coordinator

import (
	"context"

	"tinyspots/internal/apperr"
	"tinyspots/internal/auth"
	"tinyspots/internal/domain/vendors"
	"tinyspots/internal/remote"
)

// ToggleFavorite flips vendorID in the signed-in user's favorites and
// reports whether it is a favorite now.
func (c *Coordinator) ToggleFavorite(ctx context.Context, vendorID string) (bool, error) {
	vendorID, err := requireID("vendor_id", vendorID)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	user, ok := c.session.Current()
	if !ok {
		c.mu.Unlock()
		return false, apperr.Unauthorized("sign in to save favorites", nil)
	}
	now, ids := c.favorites.Toggle(vendorID)
	if _, err := c.session.SetFavorites(ids); err != nil {
		c.mu.Unlock()
		return now, err
	}
	c.mu.Unlock()

	if c.connected() && syncsRemotely(user.ID) {
		c.background(ctx, "update favorites", func(ctx context.Context) error {
			return c.gateway.UpdateEntity(ctx, remote.UsersKind, user.ID, remote.Patch{"favorites": ids})
		})
	}
	return now, nil
}

func (c *Coordinator) FavoriteCount() int {
	return c.favorites.Len()
}

func (c *Coordinator) Favorites() []string {
	return c.favorites.IDs()
}

// FavoriteVendors resolves the favorite ids against the catalog, in catalog
// order.
func (c *Coordinator) FavoriteVendors() []vendors.Vendor {
	return c.catalog.ByIDs(c.favorites.IDs())
}

func (c *Coordinator) IsFavorite(vendorID string) bool {
	return c.favorites.Contains(vendorID)
}

// syncsRemotely is false for identities that only exist in this process.
func syncsRemotely(userID string) bool {
	return userID != "" && userID != auth.DemoUserID
}
