package coordinator

import (
	"context"
	"errors"
	"strings"
	"time"

	"tinyspots/internal/apperr"
	"tinyspots/internal/domain/reviews"
	"tinyspots/internal/domain/users"
	"tinyspots/internal/domain/vendors"
	"tinyspots/internal/rating"
	"tinyspots/internal/remote"
)

var errUnsyncedVendor = errors.New("vendor has not been saved remotely yet")

// AddReview records a review for vendorID and moves the vendor's rating
// toward it. The new rating is computed from the local rating and review
// count. When connected the review is inserted remotely and the rating is
// persisted in the background.
func (c *Coordinator) AddReview(ctx context.Context, vendorID string, d reviews.Draft) (vendors.Vendor, error) {
	vendorID, err := requireID("vendor_id", vendorID)
	if err != nil {
		return vendors.Vendor{}, err
	}
	if err := apperr.Check(d); err != nil {
		return vendors.Vendor{}, err
	}

	author, avatar := reviews.AnonymousAuthor, users.AvatarFor("")
	if u, ok := c.session.Current(); ok {
		author, avatar = u.Name, u.AvatarURL
	}

	review := reviews.Review{
		ID:        provisionalID(),
		VendorID:  vendorID,
		Author:    author,
		AvatarURL: avatar,
		Comment:   strings.TrimSpace(d.Comment),
		Rating:    d.Rating,
		Date:      today(c.opts.Now()),
	}

	var newRating float64
	c.mu.Lock()
	found := c.catalog.Update(vendorID, func(v *vendors.Vendor) {
		newRating = rating.Recompute(v.Rating, v.ReviewCount(), d.Rating)
		v.Reviews = append([]reviews.Review{review}, v.Reviews...)
		v.Rating = newRating
	})
	updated, _ := c.catalog.Get(vendorID)
	c.mu.Unlock()

	if !found {
		return vendors.Vendor{}, &apperr.ValidationError{Field: "vendor_id", Reason: "unknown vendor", Err: vendors.ErrNotFound}
	}

	if !c.connected() {
		return updated, nil
	}
	if IsProvisional(vendorID) {
		return updated, apperr.Remote("add review", errUnsyncedVendor)
	}

	saved, err := c.gateway.InsertReview(ctx, vendorID, review)
	if err != nil {
		c.logger.Errorw("review insert failed, keeping local review", "vendor_id", vendorID, "error", err)
		return updated, apperr.Remote("add review", err)
	}

	c.mu.Lock()
	c.catalog.Update(vendorID, func(v *vendors.Vendor) {
		for i := range v.Reviews {
			if v.Reviews[i].ID != review.ID {
				continue
			}
			if saved.ID != "" {
				v.Reviews[i].ID = saved.ID
			}
			if !saved.Date.IsZero() {
				v.Reviews[i].Date = saved.Date
			}
		}
	})
	updated, _ = c.catalog.Get(vendorID)
	c.mu.Unlock()

	c.background(ctx, "update vendor rating", func(ctx context.Context) error {
		return c.gateway.UpdateEntity(ctx, remote.VendorsKind, vendorID, remote.Patch{"rating": newRating})
	})

	return updated, nil
}

// today truncates t to its UTC calendar date.
func today(t time.Time) time.Time {
	d, _ := time.Parse(reviews.DateLayout, t.UTC().Format(reviews.DateLayout))
	return d
}
