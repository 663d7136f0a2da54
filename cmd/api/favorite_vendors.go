package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type favoriteResponse struct {
	VendorID  string   `json:"vendor_id"`
	Favorite  bool     `json:"favorite"`
	Favorites []string `json:"favorites"`
}

// toggleFavoriteHandler flips a vendor in the signed-in user's favorites.
func (app *application) toggleFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	vendorID := chi.URLParam(r, "vendorID")

	now, err := app.coordinator.ToggleFavorite(r.Context(), vendorID)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	resp := favoriteResponse{
		VendorID:  vendorID,
		Favorite:  now,
		Favorites: app.coordinator.Favorites(),
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) listFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonResponse(w, http.StatusOK, app.coordinator.FavoriteVendors()); err != nil {
		app.internalServerError(w, r, err)
	}
}
