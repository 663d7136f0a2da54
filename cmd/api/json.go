package main

import (
	"encoding/json"
	"net/http"

	"tinyspots/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// it parses body into Go struct.
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1_048_578 //1mb
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(data)
}

func writeJSONError(w http.ResponseWriter, status int, message string) error {
	type envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Status  int    `json:"status"`
	}

	return writeJSON(w, status, &envelope{
		Success: false,
		Message: message,
		Status:  status,
	})
}

func (app *application) jsonResponse(w http.ResponseWriter, status int, data any) error {
	type envelope struct {
		Data any `json:"data"`
	}
	return writeJSON(w, status, &envelope{Data: data})
}

// optimisticResponse answers a write whose local change already stands. A
// remote failure is reported next to the data instead of failing the request.
func (app *application) optimisticResponse(w http.ResponseWriter, r *http.Request, status int, data any, err error) {
	if err != nil && !apperr.IsRemote(err) {
		app.errorResponse(w, r, err)
		return
	}

	type envelope struct {
		Data      any    `json:"data"`
		SyncError string `json:"sync_error,omitempty"`
	}
	env := envelope{Data: data}
	if err != nil {
		app.logger.Warnw("write kept locally", "method", r.Method, "path", r.URL.Path, "error", err.Error())
		env.SyncError = err.Error()
	}

	if err := writeJSON(w, status, &env); err != nil {
		app.internalServerError(w, r, err)
	}
}
