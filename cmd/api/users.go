package main

import (
	"net/http"

	"tinyspots/internal/domain/users"
)

type userKey string

const userCtx userKey = "user"

func getUserFromContext(r *http.Request) *users.User {
	if user, ok := r.Context().Value(userCtx).(*users.User); ok {
		return user
	}
	return nil
}

func (app *application) getCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	if err := app.jsonResponse(w, http.StatusOK, user); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateProfilePayload struct {
	Name     string `json:"name"`
	Pronouns string `json:"pronouns"`
}

// updateProfileHandler serves PATCH /v1/users/me. Only name and pronouns can
// change.
func (app *application) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	var payload UpdateProfilePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.coordinator.UpdateProfile(r.Context(), payload.Name, payload.Pronouns)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, user); err != nil {
		app.internalServerError(w, r, err)
	}
}
