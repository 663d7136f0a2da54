// Package rating recomputes a vendor's average rating when a review arrives.
package rating

import "math"

const (
	Min = 0.0
	Max = 5.0
)

// Round1 rounds v to one decimal place, half away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Recompute folds newRating into an average currently held as current over
// count reviews: round1((current*count + newRating) / (count+1)).
//
// The sum is kept in whole tenths so exact halves round up instead of
// landing on whichever side float division puts them. The caller passes its
// local view of current and count; nothing is re-read from the remote store
// first.
func Recompute(current float64, count int, newRating int) float64 {
	if count < 0 {
		count = 0
	}
	tenths := int(math.Round(clamp(current) * 10))
	num := tenths*count + 10*newRating
	den := count + 1
	if num < 0 {
		return Min
	}
	rounded := (2*num + den) / (2 * den)
	return clamp(float64(rounded) / 10)
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < Min:
		return Min
	case v > Max:
		return Max
	default:
		return v
	}
}
