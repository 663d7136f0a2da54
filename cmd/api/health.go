package main

import "net/http"

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"status":  "ok",
		"env":     app.config.env,
		"version": version,
		"mode":    app.coordinator.Mode(),
		"loading": app.coordinator.Loading(),
		"vendors": app.coordinator.VendorCount(),
	}

	if err := app.jsonResponse(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}

type sessionResponse struct {
	State       string `json:"state"`
	Mode        string `json:"mode"`
	User        any    `json:"user"`
	Favorites   int    `json:"favorites"`
	LastFailure string `json:"last_failure,omitempty"`
}

// sessionHandler reports who is signed in, if anyone.
func (app *application) sessionHandler(w http.ResponseWriter, r *http.Request) {
	resp := sessionResponse{
		State:       string(app.coordinator.SessionState()),
		Mode:        string(app.coordinator.Mode()),
		LastFailure: app.coordinator.LastAuthFailure(),
		Favorites:   app.coordinator.FavoriteCount(),
	}
	if u, ok := app.coordinator.CurrentUser(); ok {
		resp.User = u
	}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
