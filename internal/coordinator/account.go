package coordinator

import (
	"context"

	"tinyspots/internal/auth"
	"tinyspots/internal/domain/users"
	"tinyspots/internal/remote"
)

func (c *Coordinator) Login(ctx context.Context, email, password string) (users.User, error) {
	u, err := c.session.Login(ctx, email, password)
	if err != nil {
		// a rejected form leaves the session, and its favorites, as they were
		if _, ok := c.session.Current(); !ok {
			c.resetFavorites(nil)
		}
		return u, err
	}
	c.resetFavorites(u.Favorites)
	return u, nil
}

func (c *Coordinator) Signup(ctx context.Context, in auth.SignupInput) (users.User, error) {
	u, err := c.session.Signup(ctx, in)
	if err != nil {
		return u, err
	}
	c.resetFavorites(u.Favorites)
	return u, nil
}

func (c *Coordinator) Logout() {
	c.session.Logout()
	c.resetFavorites(nil)
	c.logger.Infow("user signed out")
}

func (c *Coordinator) resetFavorites(ids []string) {
	c.mu.Lock()
	c.favorites.Reset(ids)
	c.mu.Unlock()
}

// UpdateProfile changes the signed-in user's name and pronouns locally and,
// when connected, in the background remotely.
func (c *Coordinator) UpdateProfile(ctx context.Context, name, pronouns string) (users.User, error) {
	c.mu.Lock()
	u, err := c.session.UpdateProfile(name, pronouns)
	c.mu.Unlock()
	if err != nil {
		return users.User{}, err
	}

	if c.connected() && syncsRemotely(u.ID) {
		c.background(ctx, "update profile", func(ctx context.Context) error {
			return c.gateway.UpdateEntity(ctx, remote.UsersKind, u.ID, remote.Patch{
				"name":     u.Name,
				"pronouns": u.Pronouns,
			})
		})
	}
	return u, nil
}

func (c *Coordinator) CurrentUser() (users.User, bool) {
	return c.session.Current()
}

func (c *Coordinator) SessionState() auth.State {
	return c.session.State()
}

func (c *Coordinator) LastAuthFailure() string {
	return c.session.LastFailure()
}
