package vendors

import (
	"errors"
	"fmt"
	"strings"

	"tinyspots/internal/domain/reviews"
)

var (
	ErrMalformedRow   = errors.New("malformed vendor row")
	ErrVendorNotFound = errors.New("vendor not found")
)

// Row mirrors a vendors table row; every column but id may be NULL.
type Row struct {
	ID          *string
	Name        *string
	Category    *string
	Description *string
	ImageURL    *string
	Rating      *float64
	Location    *string
	Timings     *string
	Lat         *float64
	Lng         *float64
}

// DecodeRow turns a raw row into a Vendor. Rows without an id or a name are
// rejected; every other missing column gets its default. Missing coordinates
// are drawn at random, so they move between reads until persisted.
func DecodeRow(r Row) (Vendor, error) {
	id := str(r.ID)
	if id == "" {
		return Vendor{}, fmt.Errorf("%w: missing id", ErrMalformedRow)
	}
	name := str(r.Name)
	if name == "" {
		return Vendor{}, fmt.Errorf("%w: vendor %s missing name", ErrMalformedRow, id)
	}

	v := Vendor{
		ID:          id,
		Name:        name,
		Category:    Others,
		ImageURL:    PlaceholderImage,
		Rating:      DefaultRating,
		Description: str(r.Description),
		Location:    DefaultLocation,
		Timings:     DefaultTimings,
		Reviews:     []reviews.Review{},
	}
	if c := str(r.Category); c != "" {
		v.Category = ParseCategory(c)
	}
	if img := str(r.ImageURL); img != "" {
		v.ImageURL = img
	}
	if r.Rating != nil {
		v.Rating = *r.Rating
	}
	if loc := str(r.Location); loc != "" {
		v.Location = loc
	}
	if t := str(r.Timings); t != "" {
		v.Timings = t
	}

	if r.Lat != nil {
		v.Coordinates.X = *r.Lat
	} else {
		v.Coordinates.X = RandomX()
	}
	if r.Lng != nil {
		v.Coordinates.Y = *r.Lng
	} else {
		v.Coordinates.Y = RandomY()
	}
	return v, nil
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
