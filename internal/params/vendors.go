package params

import (
	"net/url"
	"strings"

	"tinyspots/internal/domain/vendors"
)

type VendorQuery struct {
	Category   vendors.Category
	Pagination Pagination
}

// ParseVendorQuery reads ?category=&page=&limit=. A missing or unknown
// category means All.
func ParseVendorQuery(q url.Values) VendorQuery {
	vq := VendorQuery{
		Category:   vendors.All,
		Pagination: ParsePagination(q),
	}

	raw := strings.TrimSpace(q.Get("category"))
	for _, c := range vendors.Categories {
		if strings.EqualFold(raw, string(c)) {
			vq.Category = c
			break
		}
	}
	return vq
}
