package coordinator

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"tinyspots/internal/apperr"
	"tinyspots/internal/auth"
	"tinyspots/internal/connmode"
	"tinyspots/internal/domain/reviews"
	"tinyspots/internal/domain/users"
	"tinyspots/internal/domain/vendors"
	"tinyspots/internal/remote"
	"tinyspots/internal/remote/remotetest"

	"go.uber.org/zap"
)

var (
	nop    = zap.NewNop().Sugar()
	fixedT = time.Date(2024, 6, 3, 18, 45, 0, 0, time.UTC)
)

func opts() Options {
	return Options{Now: func() time.Time { return fixedT }}
}

func remoteVendor(id string, rating float64, priorReviews int) vendors.Vendor {
	v := vendors.Vendor{
		ID:       id,
		Name:     "Vendor " + id,
		Category: vendors.Food,
		Rating:   rating,
		Location: "Market Road",
		Timings:  vendors.DefaultTimings,
		Reviews:  []reviews.Review{},
	}
	for i := 0; i < priorReviews; i++ {
		v.Reviews = append(v.Reviews, reviews.Review{ID: id + "-r" + string(rune('a'+i)), Rating: 5})
	}
	return v
}

func validDraft() vendors.Draft {
	return vendors.Draft{
		Name:     "Dosa Cart",
		Category: vendors.Food,
		Location: "Station Road",
		ImageURL: "https://example.com/dosa.jpg",
	}
}

func newConnected(t *testing.T, list ...vendors.Vendor) (*Coordinator, *remotetest.Fake) {
	t.Helper()
	gw := remotetest.New(list...)
	c := New(gw, nop, opts())
	c.Refresh(context.Background())
	return c, gw
}

func TestModes(t *testing.T) {
	if m := New(nil, nop, opts()).Mode(); m != connmode.Detached {
		t.Errorf("nil gateway mode = %s", m)
	}
	if m := New(remotetest.New(), nop, opts()).Mode(); m != connmode.Connected {
		t.Errorf("gateway mode = %s", m)
	}
}

func TestRefreshFallsBackToSeed(t *testing.T) {
	t.Run("detached", func(t *testing.T) {
		c := New(nil, nop, opts())
		if !c.Refresh(context.Background()) || len(c.Vendors(vendors.All)) == 0 {
			t.Fatal("detached refresh should load the seed")
		}
	})

	t.Run("fetch error", func(t *testing.T) {
		gw := remotetest.New(remoteVendor("5", 4, 0))
		gw.ListErr = errors.New("permission denied")
		c := New(gw, nop, opts())
		if !c.Refresh(context.Background()) || len(c.Vendors(vendors.All)) == 0 {
			t.Fatal("failed refresh should load the seed")
		}
	})

	t.Run("empty store", func(t *testing.T) {
		c := New(remotetest.New(), nop, opts())
		if !c.Refresh(context.Background()) || len(c.Vendors(vendors.All)) == 0 {
			t.Fatal("empty refresh should load the seed")
		}
	})

	t.Run("success replaces", func(t *testing.T) {
		c, _ := newConnected(t, remoteVendor("5", 4, 0), remoteVendor("6", 4, 0))
		got := c.Vendors(vendors.All)
		if len(got) != 2 || got[0].ID != "5" {
			t.Fatalf("catalog = %+v", got)
		}
		if c.Loading() {
			t.Error("still loading after refresh")
		}
	})
}

func TestAddVendorDetached(t *testing.T) {
	c := New(nil, nop, opts())
	c.Refresh(context.Background())
	before := len(c.Vendors(vendors.All))

	v, err := c.AddVendor(context.Background(), validDraft())
	if err != nil {
		t.Fatalf("AddVendor: %v", err)
	}
	list := c.Vendors(vendors.All)
	if len(list) != before+1 || list[0].ID != v.ID {
		t.Fatal("new vendor is not at the top of the list")
	}
	if v.Rating != vendors.DefaultRating || v.Timings != vendors.DefaultTimings {
		t.Errorf("defaults not applied: %+v", v)
	}
	if v.Coordinates.X < 10 || v.Coordinates.X > 90 || v.Coordinates.Y < 15 || v.Coordinates.Y > 85 {
		t.Errorf("coordinates out of range: %+v", v.Coordinates)
	}
}

func TestAddVendorMissingLocation(t *testing.T) {
	c := New(nil, nop, opts())
	c.Refresh(context.Background())
	before := c.Vendors(vendors.All)

	d := validDraft()
	d.Location = "  "
	_, err := c.AddVendor(context.Background(), d)

	var ve *apperr.ValidationError
	if !errors.As(err, &ve) || ve.Field != "location" {
		t.Fatalf("err = %v, want ValidationError on location", err)
	}
	if after := c.Vendors(vendors.All); len(after) != len(before) {
		t.Error("catalog changed after a rejected draft")
	}
}

func TestAddVendorConnectedSwapsCanonicalRow(t *testing.T) {
	c, gw := newConnected(t, remoteVendor("5", 4, 0))

	v, err := c.AddVendor(context.Background(), validDraft())
	if err != nil {
		t.Fatalf("AddVendor: %v", err)
	}
	if IsProvisional(v.ID) {
		t.Errorf("returned provisional id %q", v.ID)
	}
	list := c.Vendors(vendors.All)
	if len(list) != 2 || list[0].ID != v.ID || c.VendorCount() != 2 {
		t.Errorf("catalog = %v", list)
	}
	if got, ok := c.Vendor(v.ID); !ok || got.Name != v.Name {
		t.Errorf("canonical vendor not in catalog: %+v", got)
	}
	stored := gw.Stored()
	if stored[0].Coordinates != v.Coordinates {
		t.Error("coordinates were not persisted on insert")
	}
}

func TestAddVendorRefetchAfterInsert(t *testing.T) {
	gw := remotetest.New(remoteVendor("5", 4, 0))
	o := opts()
	o.RefetchAfterInsert = true
	c := New(gw, nop, o)
	c.Refresh(context.Background())

	if _, err := c.AddVendor(context.Background(), validDraft()); err != nil {
		t.Fatalf("AddVendor: %v", err)
	}
	if n := gw.Calls("ListVendors"); n != 2 {
		t.Errorf("ListVendors calls = %d, want 2", n)
	}
	for _, v := range c.Vendors(vendors.All) {
		if IsProvisional(v.ID) {
			t.Errorf("provisional vendor %q survived the refetch", v.ID)
		}
	}
}

func TestAddVendorRemoteFailureKeepsLocal(t *testing.T) {
	c, gw := newConnected(t, remoteVendor("5", 4, 0))
	gw.InsertVendorErr = errors.New("unique violation")

	v, err := c.AddVendor(context.Background(), validDraft())
	if !apperr.IsRemote(err) {
		t.Fatalf("err = %v, want RemoteError", err)
	}
	if _, ok := c.Vendor(v.ID); !ok {
		t.Error("optimistic vendor was rolled back")
	}
}

func TestAddReviewRatingScenarios(t *testing.T) {
	tests := []struct {
		rating float64
		prior  int
		add    int
		want   float64
	}{
		{4.0, 1, 5, 4.5},
		{4.8, 2, 5, 4.9},
		{4.5, 0, 1, 1.0},
	}
	for _, tt := range tests {
		c, gw := newConnected(t, remoteVendor("5", tt.rating, tt.prior))
		v, err := c.AddReview(context.Background(), "5", reviews.Draft{Comment: "Great", Rating: tt.add})
		if err != nil {
			t.Fatalf("AddReview: %v", err)
		}
		if v.Rating != tt.want {
			t.Errorf("rating %.1f with %d reviews + %d = %.2f, want %.1f", tt.rating, tt.prior, tt.add, v.Rating, tt.want)
		}
		if v.ReviewCount() != tt.prior+1 || v.Reviews[0].Comment != "Great" {
			t.Errorf("review not prepended: %+v", v.Reviews)
		}

		c.Wait()
		updates := gw.Updates()
		if len(updates) != 1 || updates[0].Kind != remote.VendorsKind || updates[0].Patch["rating"] != tt.want {
			t.Errorf("updates = %+v", updates)
		}
	}
}

func TestAddReviewAuthorAndDate(t *testing.T) {
	c, _ := newConnected(t, remoteVendor("5", 4, 0))

	v, _ := c.AddReview(context.Background(), "5", reviews.Draft{Comment: "ok", Rating: 3})
	r := v.Reviews[0]
	if r.Author != reviews.AnonymousAuthor {
		t.Errorf("author = %q", r.Author)
	}
	if want := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC); !r.Date.Equal(want) {
		t.Errorf("date = %s, want %s", r.Date, want)
	}
	if IsProvisional(r.ID) {
		t.Errorf("review id %q not reconciled", r.ID)
	}

	c.Login(context.Background(), auth.DefaultDemoEmail, "x")
	v, _ = c.AddReview(context.Background(), "5", reviews.Draft{Comment: "again", Rating: 4})
	if v.Reviews[0].Author != "Alex Explorer" {
		t.Errorf("author = %q", v.Reviews[0].Author)
	}
	c.Wait()
}

func TestAddReviewValidation(t *testing.T) {
	c, gw := newConnected(t, remoteVendor("5", 4, 0))

	cases := []struct {
		vendorID string
		draft    reviews.Draft
		field    string
	}{
		{"5", reviews.Draft{Comment: " ", Rating: 4}, "comment"},
		{"5", reviews.Draft{Comment: "hi", Rating: 0}, "rating"},
		{"5", reviews.Draft{Comment: "hi", Rating: 6}, "rating"},
		{"", reviews.Draft{Comment: "hi", Rating: 4}, "vendor_id"},
		{"404", reviews.Draft{Comment: "hi", Rating: 4}, "vendor_id"},
	}
	for _, tc := range cases {
		_, err := c.AddReview(context.Background(), tc.vendorID, tc.draft)
		var ve *apperr.ValidationError
		if !errors.As(err, &ve) || ve.Field != tc.field {
			t.Errorf("AddReview(%q, %+v) err = %v, want ValidationError on %s", tc.vendorID, tc.draft, err, tc.field)
		}
	}
	if _, err := c.AddReview(context.Background(), "404", reviews.Draft{Comment: "hi", Rating: 4}); !errors.Is(err, vendors.ErrNotFound) {
		t.Errorf("unknown vendor err = %v, want vendors.ErrNotFound", err)
	}
	if v, _ := c.Vendor("5"); v.ReviewCount() != 0 || v.Rating != 4 {
		t.Error("rejected review changed the vendor")
	}
	if gw.Calls("InsertReview") != 0 {
		t.Error("rejected review reached the gateway")
	}
}

func TestAddReviewRemoteFailureKeepsLocal(t *testing.T) {
	c, gw := newConnected(t, remoteVendor("5", 4.0, 1))
	gw.InsertReviewErr = errors.New("foreign key violation")

	v, err := c.AddReview(context.Background(), "5", reviews.Draft{Comment: "tasty", Rating: 5})
	if !apperr.IsRemote(err) {
		t.Fatalf("err = %v, want RemoteError", err)
	}
	if v.Rating != 4.5 || v.ReviewCount() != 2 {
		t.Errorf("returned vendor = %+v", v)
	}
	if got, _ := c.Vendor("5"); got.Rating != 4.5 || got.ReviewCount() != 2 {
		t.Error("optimistic review was rolled back")
	}
	c.Wait()
	if len(gw.Updates()) != 0 {
		t.Error("rating persisted after a failed review insert")
	}
}

func TestAddReviewOnUnsyncedVendor(t *testing.T) {
	c, gw := newConnected(t, remoteVendor("5", 4, 0))
	gw.InsertVendorErr = errors.New("offline")
	v, _ := c.AddVendor(context.Background(), validDraft())

	_, err := c.AddReview(context.Background(), v.ID, reviews.Draft{Comment: "first", Rating: 5})
	if !apperr.IsRemote(err) {
		t.Fatalf("err = %v, want RemoteError", err)
	}
	if gw.Calls("InsertReview") != 0 {
		t.Error("review for a provisional vendor reached the gateway")
	}
	if got, _ := c.Vendor(v.ID); got.ReviewCount() != 1 {
		t.Error("local review missing")
	}
}

func TestAddReviewDetached(t *testing.T) {
	c := New(nil, nop, opts())
	c.Refresh(context.Background())

	v, err := c.AddReview(context.Background(), "1", reviews.Draft{Comment: "Lovely chai", Rating: 5})
	if err != nil {
		t.Fatalf("AddReview: %v", err)
	}
	if v.Reviews[0].Comment != "Lovely chai" {
		t.Error("review not prepended")
	}
}

func TestToggleFavoriteRequiresUser(t *testing.T) {
	c := New(nil, nop, opts())
	if _, err := c.ToggleFavorite(context.Background(), "1"); !apperr.IsAuth(err) {
		t.Fatalf("err = %v, want AuthError", err)
	}
	if len(c.Favorites()) != 0 {
		t.Error("favorites changed without a user")
	}
}

func TestToggleFavoriteRoundTrip(t *testing.T) {
	c := New(nil, nop, opts())
	c.Refresh(context.Background())
	c.Login(context.Background(), "someone@example.com", "pw")

	now, err := c.ToggleFavorite(context.Background(), "v1")
	if err != nil || !now || !slices.Equal(c.Favorites(), []string{"v1"}) {
		t.Fatalf("first toggle = %v, %v, %v", now, err, c.Favorites())
	}
	now, _ = c.ToggleFavorite(context.Background(), "v1")
	if now || len(c.Favorites()) != 0 {
		t.Fatalf("second toggle = %v, %v", now, c.Favorites())
	}

	c.ToggleFavorite(context.Background(), "1")
	if fv := c.FavoriteVendors(); len(fv) != 1 || fv[0].ID != "1" {
		t.Errorf("FavoriteVendors = %+v", fv)
	}
	if u, _ := c.CurrentUser(); !slices.Equal(u.Favorites, []string{"1"}) {
		t.Errorf("user favorites = %v", u.Favorites)
	}
}

func TestToggleFavoriteConnected(t *testing.T) {
	c, gw := newConnected(t, remoteVendor("5", 4, 0))
	if err := gw.AddUser(users.User{ID: "7", Name: "Meera", Email: "meera@example.com", Favorites: []string{"5"}}, "Chai@2024"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Login(context.Background(), "meera@example.com", "Chai@2024"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !c.IsFavorite("5") {
		t.Fatal("stored favorites not loaded on login")
	}

	var mu sync.Mutex
	var failures []string
	gw.UpdateErr = errors.New("row level security")
	c.opts.OnRemoteError = func(op string, err error) {
		mu.Lock()
		failures = append(failures, op)
		mu.Unlock()
	}

	now, err := c.ToggleFavorite(context.Background(), "5")
	if err != nil || now {
		t.Fatalf("toggle = %v, %v", now, err)
	}
	c.Wait()

	if c.IsFavorite("5") {
		t.Error("failed sync reverted the toggle")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(failures) != 1 || failures[0] != "update favorites" {
		t.Errorf("failures = %v", failures)
	}
}

func TestFavoritesNotSyncedForDemoUser(t *testing.T) {
	c, gw := newConnected(t, remoteVendor("5", 4, 0))
	c.Login(context.Background(), auth.DefaultDemoEmail, "x")
	c.ToggleFavorite(context.Background(), "5")
	c.Wait()
	if gw.Calls("UpdateEntity") != 0 {
		t.Error("demo favorites were written remotely")
	}
}

func TestRejectedLoginKeepsFavorites(t *testing.T) {
	c, gw := newConnected(t, remoteVendor("5", 4, 0), remoteVendor("6", 4, 0))
	gw.AddUser(users.User{ID: "7", Name: "Meera", Email: "meera@example.com", Favorites: []string{"5"}}, "Chai@2024")
	ctx := context.Background()
	if _, err := c.Login(ctx, "meera@example.com", "Chai@2024"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := c.Login(ctx, "", ""); !apperr.IsValidation(err) {
		t.Fatalf("blank login err = %v, want ValidationError", err)
	}
	if _, ok := c.CurrentUser(); !ok {
		t.Fatal("blank login signed the user out")
	}
	if !slices.Equal(c.Favorites(), []string{"5"}) || c.FavoriteCount() != 1 {
		t.Fatalf("favorites after blank login = %v", c.Favorites())
	}

	c.ToggleFavorite(ctx, "6")
	c.Wait()
	updates := gw.Updates()
	if len(updates) != 1 {
		t.Fatalf("updates = %+v", updates)
	}
	if got, _ := updates[0].Patch["favorites"].([]string); !slices.Equal(got, []string{"5", "6"}) {
		t.Errorf("synced favorites = %v, want [5 6]", updates[0].Patch["favorites"])
	}
}

func TestFailedLoginClearsFavorites(t *testing.T) {
	c, gw := newConnected(t, remoteVendor("5", 4, 0))
	gw.AddUser(users.User{ID: "7", Name: "Meera", Email: "meera@example.com", Favorites: []string{"5"}}, "Chai@2024")
	ctx := context.Background()
	c.Login(ctx, "meera@example.com", "Chai@2024")

	if _, err := c.Login(ctx, "meera@example.com", "wrong"); !apperr.IsAuth(err) {
		t.Fatalf("err = %v, want AuthError", err)
	}
	if _, ok := c.CurrentUser(); ok || len(c.Favorites()) != 0 {
		t.Errorf("signed out session kept favorites %v", c.Favorites())
	}
}

func TestLoginDemoEmailInBothModes(t *testing.T) {
	for _, gw := range []remote.Gateway{nil, remotetest.New()} {
		c := New(gw, nop, opts())
		u, err := c.Login(context.Background(), auth.DefaultDemoEmail, "anything")
		if err != nil || u.ID != auth.DemoUserID {
			t.Errorf("mode %s: login = %+v, %v", c.Mode(), u, err)
		}
	}
}

func TestLogoutClearsFavorites(t *testing.T) {
	c := New(nil, nop, opts())
	c.Login(context.Background(), "a@b.co", "x")
	c.ToggleFavorite(context.Background(), "1")
	c.Logout()
	if len(c.Favorites()) != 0 || c.SessionState() != auth.Anonymous {
		t.Error("logout left session state behind")
	}
}

func TestUpdateProfileConnected(t *testing.T) {
	c, gw := newConnected(t, remoteVendor("5", 4, 0))
	gw.AddUser(users.User{ID: "7", Name: "Meera", Email: "meera@example.com"}, "Chai@2024")
	c.Login(context.Background(), "meera@example.com", "Chai@2024")

	u, err := c.UpdateProfile(context.Background(), "Meera K", "she/her")
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if u.Name != "Meera K" || u.Pronouns != "she/her" {
		t.Errorf("user = %+v", u)
	}
	c.Wait()
	updates := gw.Updates()
	if len(updates) != 1 || updates[0].Kind != remote.UsersKind || updates[0].ID != "7" || updates[0].Patch["name"] != "Meera K" {
		t.Errorf("updates = %+v", updates)
	}
}

func TestBackgroundWriteOutlivesCaller(t *testing.T) {
	c, gw := newConnected(t, remoteVendor("5", 4, 0))
	gw.UpdateGate = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := c.AddReview(ctx, "5", reviews.Draft{Comment: "ok", Rating: 4}); err != nil {
		t.Fatalf("AddReview: %v", err)
	}
	cancel()
	close(gw.UpdateGate)
	c.Wait()

	if len(gw.Updates()) != 1 {
		t.Error("rating update did not complete after caller cancelled")
	}
}

func TestRunRefreshesPeriodically(t *testing.T) {
	gw := remotetest.New(remoteVendor("5", 4, 0))
	o := opts()
	o.RefreshInterval = 5 * time.Millisecond
	c := New(gw, nop, o)
	c.Refresh(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	deadline := time.After(time.Second)
	for gw.Calls("ListVendors") < 3 {
		select {
		case <-deadline:
			t.Fatal("periodic refresh did not run")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestRunFailureKeepsCatalog(t *testing.T) {
	c, gw := newConnected(t, remoteVendor("5", 4, 0))
	gw.ListErr = errors.New("timeout")
	c.sync(context.Background())
	if v := c.Vendors(vendors.All); len(v) != 1 || v[0].ID != "5" {
		t.Errorf("catalog = %+v", v)
	}
}
