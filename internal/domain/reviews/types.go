package reviews

import (
	"context"
	"time"
)

// DateLayout is the ISO-8601 calendar date stored in reviews.date.
const DateLayout = "2006-01-02"

const AnonymousAuthor = "Anonymous"

// Review is immutable once created. Reviews are never edited or deleted.
type Review struct {
	ID        string    `json:"id"`
	VendorID  string    `json:"vendor_id,omitempty"`
	Author    string    `json:"user"`
	AvatarURL string    `json:"avatar"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"` // 1-5
	Date      time.Time `json:"date"`
}

// Draft is what a user submits before the review exists.
type Draft struct {
	Comment string `json:"comment" validate:"notblank,max=500"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
}

type Store interface {
	ListAll(ctx context.Context) ([]Review, error)
	Insert(ctx context.Context, vendorKey any, review Review) (Review, error)
}
