package vendors

import (
	"context"
	"fmt"

	"tinyspots/internal/db"
)

const vendorColumns = `id::text, name, category, description, image_url, rating::float8, location, timings, lat, lng`

// columns a patch may touch
var updatableFields = map[string]bool{
	"name":        true,
	"category":    true,
	"description": true,
	"image_url":   true,
	"rating":      true,
	"location":    true,
	"timings":     true,
	"lat":         true,
	"lng":         true,
}

type Repository struct {
	db db.Querier
}

func NewRepository(q db.Querier) Store {
	return &Repository{db: q}
}

// List returns every vendor row, most recently inserted first.
func (r *Repository) List(ctx context.Context) ([]Row, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors ORDER BY id DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying vendors: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(
			&row.ID,
			&row.Name,
			&row.Category,
			&row.Description,
			&row.ImageURL,
			&row.Rating,
			&row.Location,
			&row.Timings,
			&row.Lat,
			&row.Lng,
		); err != nil {
			return nil, fmt.Errorf("error scanning vendor row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Insert creates a vendor and returns the stored row with its generated id.
// The coordinates are persisted so the vendor keeps its map position.
func (r *Repository) Insert(ctx context.Context, v Vendor) (Row, error) {
	query := `
    INSERT INTO vendors (
      name, category, description, image_url, rating,
      location, timings, lat, lng
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    RETURNING ` + vendorColumns

	var row Row
	err := r.db.QueryRow(ctx, query,
		v.Name,
		string(v.Category),
		v.Description,
		v.ImageURL,
		v.Rating,
		v.Location,
		v.Timings,
		v.Coordinates.X,
		v.Coordinates.Y,
	).Scan(
		&row.ID,
		&row.Name,
		&row.Category,
		&row.Description,
		&row.ImageURL,
		&row.Rating,
		&row.Location,
		&row.Timings,
		&row.Lat,
		&row.Lng,
	)
	if err != nil {
		return Row{}, fmt.Errorf("error inserting vendor: %w", err)
	}
	return row, nil
}

// Update applies patch to the vendor identified by key.
func (r *Repository) Update(ctx context.Context, key any, patch map[string]any) error {
	query, args, err := db.BuildUpdate("vendors", updatableFields, patch, key)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update vendor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVendorNotFound
	}
	return nil
}
