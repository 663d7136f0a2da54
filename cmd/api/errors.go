package main

import (
	"errors"
	"net/http"

	"tinyspots/internal/apperr"
	"tinyspots/internal/domain/users"
	"tinyspots/internal/domain/vendors"
)

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusInternalServerError, "the server encountered a problem")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("not found error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusNotFound, "not found")
}

func (app *application) conflictResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("conflict response", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusConflict, err.Error())
}

func (app *application) unauthorizedErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusUnauthorized, err.Error())
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter string) {
	app.logger.Warnw("rate limit exceeded", "method", r.Method, "path", r.URL.Path)

	w.Header().Set("Retry-After", retryAfter)

	writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded, retry after: "+retryAfter)
}

// errorResponse maps the error taxonomy onto status codes.
func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, vendors.ErrNotFound):
		app.notFoundResponse(w, r, err)
	case apperr.IsValidation(err):
		app.badRequestResponse(w, r, err)
	case errors.Is(err, users.ErrDuplicateEmail):
		app.conflictResponse(w, r, err)
	case apperr.IsAuth(err):
		app.unauthorizedErrorResponse(w, r, err)
	case apperr.IsRemote(err):
		app.logger.Errorw("remote store error", "method", r.Method, "path", r.URL.Path, "error", err.Error())
		writeJSONError(w, http.StatusBadGateway, err.Error())
	default:
		app.internalServerError(w, r, err)
	}
}
