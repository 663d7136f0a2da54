package params

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultLimit = 15
	maxLimit     = 30
)

// URL: /v1/vendors?category=Chai&page=2&limit=10
// → ParseVendorQuery() → VendorQuery{Category:"Chai", Pagination{Limit:10, Page:2, Offset:10}}
// → catalog filter, then slice [Offset:Offset+Limit]
// → ComputeMeta(total) fills TotalPages, HasNext, etc.
type Pagination struct {
	Limit      int  `json:"limit"`  // items per page
	Offset     int  `json:"offset"` // first item index
	Page       int  `json:"page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// ParsePagination parses ?limit=...&page=... safely. Keys are case sensitive.
func ParsePagination(q url.Values) Pagination {
	p := Pagination{
		Limit: defaultLimit,
		Page:  1,
	}

	if limitStr := strings.TrimSpace(q.Get("limit")); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			switch {
			case limit <= 0:
				p.Limit = defaultLimit
			case limit > maxLimit:
				p.Limit = maxLimit
			default:
				p.Limit = limit
			}
		}
	}

	if pageStr := strings.TrimSpace(q.Get("page")); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			p.Page = page
		}
	}

	p.Offset = (p.Page - 1) * p.Limit
	return p
}

// ComputeMeta updates pagination after the total is known.
func (p *Pagination) ComputeMeta(total int) {
	p.Total = total
	if p.Limit > 0 {
		p.TotalPages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	p.HasPrev = p.Page > 1
	p.HasNext = (p.Page * p.Limit) < total
}

// Bounds returns the [start, end) slice indexes of this page within total
// items, clamped so slicing never panics.
func (p Pagination) Bounds(total int) (int, int) {
	start := min(max(p.Offset, 0), total)
	end := min(start+p.Limit, total)
	return start, end
}
