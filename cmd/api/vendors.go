package main

import (
	"fmt"
	"net/http"

	"tinyspots/internal/domain/vendors"
	"tinyspots/internal/params"

	"github.com/go-chi/chi/v5"
)

type vendorListResponse struct {
	Vendors    []vendors.Vendor  `json:"vendors"`
	Category   vendors.Category  `json:"category"`
	Pagination params.Pagination `json:"pagination"`
}

// listVendorsHandler serves GET /v1/vendors?category=Chai&page=1&limit=15
func (app *application) listVendorsHandler(w http.ResponseWriter, r *http.Request) {
	q := params.ParseVendorQuery(r.URL.Query())
	list, meta := app.coordinator.VendorPage(q)

	resp := vendorListResponse{
		Vendors:    list,
		Category:   q.Category,
		Pagination: meta,
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getVendorHandler(w http.ResponseWriter, r *http.Request) {
	vendorID := chi.URLParam(r, "vendorID")
	v, ok := app.coordinator.Vendor(vendorID)
	if !ok {
		app.notFoundResponse(w, r, fmt.Errorf("vendor %q not found", vendorID))
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, v); err != nil {
		app.internalServerError(w, r, err)
	}
}

// createVendorHandler adds a vendor. The vendor is listed right away even
// if the remote insert fails; that failure comes back as sync_error.
func (app *application) createVendorHandler(w http.ResponseWriter, r *http.Request) {
	var payload vendors.Draft
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v, err := app.coordinator.AddVendor(r.Context(), payload)
	app.optimisticResponse(w, r, http.StatusCreated, v, err)
}

func (app *application) refreshVendorsHandler(w http.ResponseWriter, r *http.Request) {
	usedSeed := app.coordinator.Refresh(r.Context())

	data := map[string]any{
		"vendors":   len(app.coordinator.Vendors(vendors.All)),
		"used_seed": usedSeed,
		"mode":      app.coordinator.Mode(),
	}
	if err := app.jsonResponse(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}
