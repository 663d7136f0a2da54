// Package catalog keeps the in-memory vendor list the app renders. The list
// is an immutable snapshot replaced wholesale on every change, so readers
// never observe a half-applied update.
package catalog

import (
	"sync"
	"sync/atomic"

	"tinyspots/internal/domain/vendors"
	"tinyspots/internal/params"
)

type Store struct {
	mu       sync.Mutex // serialises writers
	snapshot atomic.Pointer[[]vendors.Vendor]
}

func New() *Store {
	s := &Store{}
	empty := []vendors.Vendor{}
	s.snapshot.Store(&empty)
	return s
}

func (s *Store) load() []vendors.Vendor {
	return *s.snapshot.Load()
}

// Snapshot returns a deep copy of the current list in display order.
func (s *Store) Snapshot() []vendors.Vendor {
	return cloneAll(s.load())
}

func (s *Store) Len() int {
	return len(s.load())
}

func (s *Store) Get(id string) (vendors.Vendor, bool) {
	for _, v := range s.load() {
		if v.ID == id {
			return v.Clone(), true
		}
	}
	return vendors.Vendor{}, false
}

// Replace swaps the whole list for list.
func (s *Store) Replace(list []vendors.Vendor) {
	next := cloneAll(list)
	s.mu.Lock()
	s.snapshot.Store(&next)
	s.mu.Unlock()
}

// Load replaces the list with list, or with the seed data when list is empty.
// It reports whether the seed was used.
func (s *Store) Load(list []vendors.Vendor) bool {
	if len(list) == 0 {
		s.Replace(Seed())
		return true
	}
	s.Replace(list)
	return false
}

// Prepend puts v at the front of the list.
func (s *Store) Prepend(v vendors.Vendor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.load()
	next := make([]vendors.Vendor, 0, len(cur)+1)
	next = append(next, v.Clone())
	next = append(next, cur...)
	s.snapshot.Store(&next)
}

// Update applies fn to a copy of the vendor with id and publishes the result.
// It reports false when no such vendor exists.
func (s *Store) Update(id string, fn func(*vendors.Vendor)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.load()
	for i := range cur {
		if cur[i].ID != id {
			continue
		}
		next := append([]vendors.Vendor(nil), cur...)
		v := cur[i].Clone()
		fn(&v)
		next[i] = v
		s.snapshot.Store(&next)
		return true
	}
	return false
}

// Swap replaces the vendor with oldID by v in place, keeping its position.
// Used to trade a provisional local entry for the canonical remote row.
func (s *Store) Swap(oldID string, v vendors.Vendor) bool {
	return s.Update(oldID, func(cur *vendors.Vendor) {
		*cur = v.Clone()
	})
}

// Filter returns the vendors of category in display order. All or an empty
// category returns everything.
func (s *Store) Filter(category vendors.Category) []vendors.Vendor {
	if category == "" || category == vendors.All {
		return s.Snapshot()
	}
	cur := s.load()
	out := []vendors.Vendor{}
	for _, v := range cur {
		if v.Category == category {
			out = append(out, v.Clone())
		}
	}
	return out
}

// ByIDs returns the vendors whose id is in ids, in catalog order. Ids that
// match nothing are skipped.
func (s *Store) ByIDs(ids []string) []vendors.Vendor {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := []vendors.Vendor{}
	for _, v := range s.load() {
		if _, ok := want[v.ID]; ok {
			out = append(out, v.Clone())
		}
	}
	return out
}

// Page filters by category and cuts out the requested page, filling in the
// pagination metadata.
func (s *Store) Page(category vendors.Category, p params.Pagination) ([]vendors.Vendor, params.Pagination) {
	all := s.Filter(category)
	p.ComputeMeta(len(all))
	start, end := p.Bounds(len(all))
	return all[start:end], p
}

func cloneAll(list []vendors.Vendor) []vendors.Vendor {
	out := make([]vendors.Vendor, len(list))
	for i, v := range list {
		out[i] = v.Clone()
	}
	return out
}
