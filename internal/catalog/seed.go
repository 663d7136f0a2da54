package catalog

import (
	"time"

	"tinyspots/internal/domain/reviews"
	"tinyspots/internal/domain/vendors"
)

// Seed returns a fresh copy of the built-in vendors shown when the remote
// store is absent or empty.
func Seed() []vendors.Vendor {
	return []vendors.Vendor{
		{
			ID:          "1",
			Name:        "Raju's Chai Station",
			Category:    vendors.Chai,
			ImageURL:    "https://images.unsplash.com/photo-1561336313-0bd5e0b27ec8?q=80&w=2070&auto=format&fit=crop",
			Rating:      4.8,
			Description: "The best masala chai in the city. Served in traditional clay cups with a side of spicy bun maska.",
			Location:    "Corner of 4th St & Main",
			Timings:     "6am - 8pm",
			Coordinates: vendors.Coordinates{X: 25, Y: 30},
			Reviews: []reviews.Review{
				{
					ID:        "r1",
					VendorID:  "1",
					Author:    "Priya",
					AvatarURL: "https://api.dicebear.com/7.x/adventurer/svg?seed=Priya",
					Comment:   "Perfect cutting chai on a rainy evening.",
					Rating:    5,
					Date:      time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
				},
			},
		},
		{
			ID:          "2",
			Name:        "Second Hand Stories",
			Category:    vendors.Thrift,
			ImageURL:    "https://images.unsplash.com/photo-1441986300917-64674bd600d8",
			Rating:      4.5,
			Description: "Pre-loved jackets, vintage tees and a shelf of paperbacks that changes every week.",
			Location:    "Flea Lane, Stall 12",
			Timings:     "11am - 7pm",
			Coordinates: vendors.Coordinates{X: 62, Y: 48},
			Reviews:     []reviews.Review{},
		},
		{
			ID:          "3",
			Name:        "Momo Corner",
			Category:    vendors.Food,
			ImageURL:    vendors.PlaceholderImage,
			Rating:      4.6,
			Description: "Steamed and fried momos with a fiery tomato chutney.",
			Location:    "Outside City Library",
			Timings:     vendors.DefaultTimings,
			Coordinates: vendors.Coordinates{X: 44, Y: 72},
			Reviews:     []reviews.Review{},
		},
	}
}
