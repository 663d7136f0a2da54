package coordinator

import (
	"context"
	"time"
)

// Run refreshes the catalog every RefreshInterval until ctx is done. It
// returns at once when detached or when no interval is set. A failed
// periodic fetch keeps the current catalog.
func (c *Coordinator) Run(ctx context.Context) {
	if !c.connected() || c.opts.RefreshInterval <= 0 {
		return
	}

	ticker := time.NewTicker(c.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sync(ctx)
		}
	}
}

func (c *Coordinator) sync(ctx context.Context) {
	c.loading.Store(true)
	defer c.loading.Store(false)

	list, err := c.gateway.ListVendors(ctx)
	if err != nil {
		c.logger.Errorf("Error refreshing vendors: %v", err)
		return
	}
	if len(list) == 0 {
		c.logger.Warnw("remote store returned no vendors, keeping current catalog")
		return
	}

	c.mu.Lock()
	c.catalog.Replace(list)
	c.mu.Unlock()
	c.logger.Infof("Refreshed %d vendors at %s", len(list), time.Now().Format(time.RFC1123))
}
