package main

import (
	"net/http"

	"tinyspots/internal/domain/reviews"

	"github.com/go-chi/chi/v5"
)

// createReviewHandler serves POST /v1/vendors/{vendorID}/reviews and returns
// the vendor with its new rating.
func (app *application) createReviewHandler(w http.ResponseWriter, r *http.Request) {
	var payload reviews.Draft
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v, err := app.coordinator.AddReview(r.Context(), chi.URLParam(r, "vendorID"), payload)
	app.optimisticResponse(w, r, http.StatusCreated, v, err)
}
