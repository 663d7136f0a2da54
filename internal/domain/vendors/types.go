package vendors

import (
	"context"
	"errors"
	"math/rand"
	"strings"

	"tinyspots/internal/domain/reviews"
)

var ErrNotFound = errors.New("vendor not found")

type Category string

const (
	Food   Category = "Food"
	Chai   Category = "Chai"
	Thrift Category = "Thrift"
	Shop   Category = "Shop"
	Others Category = "Others"

	// All is a filter value, never stored on a vendor.
	All Category = "All"
)

var Categories = []Category{Food, Chai, Thrift, Shop, Others}

// ParseCategory maps s onto a known category, case-insensitively. Anything
// unknown becomes Others.
func ParseCategory(s string) Category {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c
		}
	}
	return Others
}

// Defaults applied to drafts and to remote rows missing optional columns.
const (
	DefaultRating    = 4.5
	DefaultTimings   = "9am - 9pm"
	DefaultLocation  = "Unknown Location"
	PlaceholderImage = "https://images.unsplash.com/photo-1555939594-58d7cb561ad1"
)

// Coordinates are map percentages, 0-100 on both axes.
type Coordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RandomX and RandomY draw a map position inside [10,90] x [15,85].
func RandomX() float64 { return rand.Float64()*80 + 10 }
func RandomY() float64 { return rand.Float64()*70 + 15 }

func RandomCoordinates() Coordinates {
	return Coordinates{X: RandomX(), Y: RandomY()}
}

type Vendor struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Category    Category         `json:"category"`
	ImageURL    string           `json:"image_url"`
	Rating      float64          `json:"rating"`
	Description string           `json:"description"`
	Location    string           `json:"location"`
	Timings     string           `json:"timings"`
	Coordinates Coordinates      `json:"coordinates"`
	Reviews     []reviews.Review `json:"reviews"` // newest first
}

func (v Vendor) ReviewCount() int { return len(v.Reviews) }

// Clone returns a copy that shares no slice with v.
func (v Vendor) Clone() Vendor {
	if v.Reviews != nil {
		v.Reviews = append([]reviews.Review(nil), v.Reviews...)
	}
	return v
}

// Draft is the user-submitted form for a new vendor.
type Draft struct {
	Name        string   `json:"name" validate:"notblank,max=120"`
	Category    Category `json:"category" validate:"required,oneof=Food Chai Thrift Shop Others"`
	Description string   `json:"description" validate:"max=1000"`
	Location    string   `json:"location" validate:"notblank,max=200"`
	Timings     string   `json:"timings" validate:"max=60"`
	ImageURL    string   `json:"image_url" validate:"notblank"`
}

// Vendor builds the local vendor for d with the documented defaults.
func (d Draft) Vendor(id string, at Coordinates) Vendor {
	timings := strings.TrimSpace(d.Timings)
	if timings == "" {
		timings = DefaultTimings
	}
	return Vendor{
		ID:          id,
		Name:        strings.TrimSpace(d.Name),
		Category:    d.Category,
		ImageURL:    strings.TrimSpace(d.ImageURL),
		Rating:      DefaultRating,
		Description: strings.TrimSpace(d.Description),
		Location:    strings.TrimSpace(d.Location),
		Timings:     timings,
		Coordinates: at,
		Reviews:     []reviews.Review{},
	}
}

type Store interface {
	List(ctx context.Context) ([]Row, error)
	Insert(ctx context.Context, v Vendor) (Row, error)
	Update(ctx context.Context, key any, patch map[string]any) error
}
