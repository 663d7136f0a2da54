package coordinator

import (
	"context"

	"tinyspots/internal/apperr"
	"tinyspots/internal/domain/reviews"
	"tinyspots/internal/domain/vendors"
	"tinyspots/internal/params"
)

// Refresh reloads the catalog from the remote store. It falls back to the
// seed data when detached, when the fetch fails, or when the store is
// empty, and reports whether it did.
func (c *Coordinator) Refresh(ctx context.Context) bool {
	c.loading.Store(true)
	defer c.loading.Store(false)

	if !c.connected() {
		apperr.Fallback(c.logger, "no remote store", nil)
		return c.load(nil)
	}

	list, err := c.gateway.ListVendors(ctx)
	if err != nil {
		apperr.Fallback(c.logger, "vendor fetch failed", err)
		return c.load(nil)
	}
	if len(list) == 0 {
		apperr.Fallback(c.logger, "remote store has no vendors", nil)
		return c.load(nil)
	}

	c.logger.Infow("catalog refreshed", "vendors", len(list))
	return c.load(list)
}

func (c *Coordinator) load(list []vendors.Vendor) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.catalog.Load(list)
}

// AddVendor validates d, shows the vendor at the top of the list under a
// provisional id, then inserts it remotely.
func (c *Coordinator) AddVendor(ctx context.Context, d vendors.Draft) (vendors.Vendor, error) {
	if err := apperr.Check(d); err != nil {
		return vendors.Vendor{}, err
	}

	v := d.Vendor(provisionalID(), vendors.RandomCoordinates())

	c.mu.Lock()
	c.catalog.Prepend(v)
	c.mu.Unlock()

	if !c.connected() {
		return v, nil
	}

	saved, err := c.gateway.InsertVendor(ctx, v)
	if err != nil {
		c.logger.Errorw("vendor insert failed, keeping local entry", "vendor_id", v.ID, "error", err)
		return v, apperr.Remote("add vendor", err)
	}

	if c.opts.RefetchAfterInsert {
		list, err := c.gateway.ListVendors(ctx)
		if err == nil && len(list) > 0 {
			c.mu.Lock()
			c.catalog.Replace(list)
			c.mu.Unlock()
			return saved, nil
		}
		c.logger.Warnw("refetch after insert failed, reconciling locally", "error", err)
	}

	// reviews added while the insert was in flight stay with the vendor
	canonical := saved.Clone()
	c.mu.Lock()
	if cur, ok := c.catalog.Get(v.ID); ok && len(cur.Reviews) > 0 {
		canonical.Reviews = cur.Reviews
		canonical.Rating = cur.Rating
	}
	if canonical.Reviews == nil {
		canonical.Reviews = []reviews.Review{}
	}
	swapped := c.catalog.Swap(v.ID, canonical)
	c.mu.Unlock()

	c.logger.Infow("vendor added", "vendor_id", saved.ID, "provisional_id", v.ID, "swapped", swapped)
	return canonical, nil
}

// Vendors lists the catalog filtered by category.
// VendorCount is the number of vendors in the local catalog.
func (c *Coordinator) VendorCount() int {
	return c.catalog.Len()
}

func (c *Coordinator) Vendors(category vendors.Category) []vendors.Vendor {
	return c.catalog.Filter(category)
}

func (c *Coordinator) VendorPage(q params.VendorQuery) ([]vendors.Vendor, params.Pagination) {
	return c.catalog.Page(q.Category, q.Pagination)
}

func (c *Coordinator) Vendor(id string) (vendors.Vendor, bool) {
	return c.catalog.Get(id)
}
