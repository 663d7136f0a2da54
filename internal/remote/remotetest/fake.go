// Package remotetest provides an in-memory remote.Gateway for tests.
package remotetest

import (
	"context"
	"strconv"
	"sync"

	"tinyspots/internal/apperr"
	"tinyspots/internal/domain/reviews"
	"tinyspots/internal/domain/users"
	"tinyspots/internal/domain/vendors"
	"tinyspots/internal/remote"
)

type Update struct {
	Kind  remote.EntityKind
	ID    string
	Patch remote.Patch
}

// Fake keeps vendors and users in memory. Setting one of the *Err fields
// makes the matching call fail with that error wrapped as a remote error.
type Fake struct {
	mu sync.Mutex

	vendors []vendors.Vendor
	users   map[string]users.User // by email
	updates []Update
	calls   map[string]int
	nextID  int

	ListErr         error
	InsertVendorErr error
	InsertReviewErr error
	UpdateErr       error
	FindUserErr     error
	EmailErr        error
	InsertUserErr   error

	// EmailTakenOverride forces EmailTaken to report false, so tests can hit
	// the duplicate path of InsertUser.
	EmailTakenOverride bool

	// UpdateGate, when set, is received from before UpdateEntity returns.
	UpdateGate chan struct{}
}

var _ remote.Gateway = (*Fake)(nil)

func New(list ...vendors.Vendor) *Fake {
	f := &Fake{
		users:  map[string]users.User{},
		calls:  map[string]int{},
		nextID: 100,
	}
	for _, v := range list {
		f.vendors = append(f.vendors, v.Clone())
	}
	return f
}

// AddUser stores u with a bcrypt hash of password.
func (f *Fake) AddUser(u users.User, password string) error {
	if err := u.Password.Set(password); err != nil {
		return err
	}
	f.mu.Lock()
	f.users[u.Email] = u.Clone()
	f.mu.Unlock()
	return nil
}

// Calls reports how many times op was invoked.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// TotalCalls reports how many gateway calls were made.
func (f *Fake) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *Fake) Updates() []Update {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Update(nil), f.updates...)
}

func (f *Fake) Stored() []vendors.Vendor {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]vendors.Vendor, len(f.vendors))
	for i, v := range f.vendors {
		out[i] = v.Clone()
	}
	return out
}

func (f *Fake) User(email string) (users.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	return u.Clone(), ok
}

func (f *Fake) id() string {
	f.nextID++
	return strconv.Itoa(f.nextID)
}

func (f *Fake) ListVendors(context.Context) ([]vendors.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ListVendors"]++
	if f.ListErr != nil {
		return nil, apperr.Remote("list vendors", f.ListErr)
	}
	out := make([]vendors.Vendor, len(f.vendors))
	for i, v := range f.vendors {
		out[i] = v.Clone()
	}
	return out, nil
}

func (f *Fake) InsertVendor(_ context.Context, v vendors.Vendor) (vendors.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["InsertVendor"]++
	if f.InsertVendorErr != nil {
		return vendors.Vendor{}, apperr.Remote("insert vendor", f.InsertVendorErr)
	}
	v = v.Clone()
	v.ID = f.id()
	v.Reviews = []reviews.Review{}
	f.vendors = append([]vendors.Vendor{v}, f.vendors...)
	return v.Clone(), nil
}

func (f *Fake) InsertReview(_ context.Context, vendorID string, r reviews.Review) (reviews.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["InsertReview"]++
	if f.InsertReviewErr != nil {
		return reviews.Review{}, apperr.Remote("insert review", f.InsertReviewErr)
	}
	r.ID = f.id()
	r.VendorID = vendorID
	for i := range f.vendors {
		if f.vendors[i].ID == vendorID {
			f.vendors[i].Reviews = append([]reviews.Review{r}, f.vendors[i].Reviews...)
		}
	}
	return r, nil
}

func (f *Fake) UpdateEntity(_ context.Context, kind remote.EntityKind, id string, patch remote.Patch) error {
	if f.UpdateGate != nil {
		<-f.UpdateGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["UpdateEntity"]++
	if f.UpdateErr != nil {
		return apperr.Remote("update "+string(kind), f.UpdateErr)
	}
	f.updates = append(f.updates, Update{Kind: kind, ID: id, Patch: patch})
	if kind == remote.VendorsKind {
		for i := range f.vendors {
			if f.vendors[i].ID != id {
				continue
			}
			if r, ok := patch["rating"].(float64); ok {
				f.vendors[i].Rating = r
			}
		}
	}
	return nil
}

func (f *Fake) FindUserByCredentials(_ context.Context, email, password string) (users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["FindUserByCredentials"]++
	if f.FindUserErr != nil {
		return users.User{}, apperr.Remote("find user", f.FindUserErr)
	}
	u, ok := f.users[email]
	if !ok || u.Password.Compare(password) != nil {
		return users.User{}, users.ErrInvalidCredentials
	}
	return u.Clone(), nil
}

func (f *Fake) EmailTaken(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["EmailTaken"]++
	if f.EmailErr != nil {
		return false, apperr.Remote("check email", f.EmailErr)
	}
	if f.EmailTakenOverride {
		return false, nil
	}
	_, ok := f.users[email]
	return ok, nil
}

func (f *Fake) InsertUser(_ context.Context, u users.User) (users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["InsertUser"]++
	if f.InsertUserErr != nil {
		return users.User{}, apperr.Remote("insert user", f.InsertUserErr)
	}
	if _, ok := f.users[u.Email]; ok {
		return users.User{}, users.ErrDuplicateEmail
	}
	u.ID = "u" + f.id()
	if u.Favorites == nil {
		u.Favorites = []string{}
	}
	f.users[u.Email] = u.Clone()
	return u.Clone(), nil
}
