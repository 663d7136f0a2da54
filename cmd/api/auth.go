package main

import (
	"net/http"

	"tinyspots/internal/auth"
	"tinyspots/internal/domain/users"
)

type CreateUserTokenPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserWithToken struct {
	User  users.User `json:"user"`
	Token string     `json:"token"`
}

// loginHandler serves POST /v1/authentication/login. The demo email always
// signs in, whatever the password.
func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateUserTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.coordinator.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	app.respondWithToken(w, r, http.StatusOK, user)
}

func (app *application) signupHandler(w http.ResponseWriter, r *http.Request) {
	var payload auth.SignupInput
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.coordinator.Signup(r.Context(), payload)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	app.respondWithToken(w, r, http.StatusCreated, user)
}

func (app *application) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user users.User) {
	token, err := app.authenticator.GenerateToken(user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, status, UserWithToken{User: user, Token: token}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	app.coordinator.Logout()
	w.WriteHeader(http.StatusNoContent)
}
