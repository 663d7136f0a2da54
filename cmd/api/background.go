package main

import (
	"context"
	"time"
)

func (app *application) startBackground(ctx context.Context) {
	go app.coordinator.Run(ctx)
	app.sweepRateLimiterEvery(ctx, time.Minute)
}

// sweepRateLimiterEvery drops expired rate limit windows so idle clients do
// not pile up.
func (app *application) sweepRateLimiterEvery(ctx context.Context, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				app.rateLimiter.Sweep()
			}
		}
	}()
}
