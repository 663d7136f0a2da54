package reviews

import (
	"context"
	"fmt"

	"tinyspots/internal/db"

	"github.com/jackc/pgx/v5/pgtype"
)

type Repository struct {
	db db.Querier
}

func NewRepository(q db.Querier) Store {
	return &Repository{db: q}
}

// ListAll returns every review, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]Review, error) {
	query := `
        SELECT id::text, vendor_id::text, user_name, user_avatar, comment, rating, date
        FROM reviews
        ORDER BY date DESC, id DESC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var (
			review         Review
			author, avatar pgtype.Text
			date           pgtype.Date
		)
		if err := rows.Scan(
			&review.ID,
			&review.VendorID,
			&author,
			&avatar,
			&review.Comment,
			&review.Rating,
			&date,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		review.Author = AnonymousAuthor
		if author.Valid && author.String != "" {
			review.Author = author.String
		}
		review.AvatarURL = avatar.String
		if date.Valid {
			review.Date = date.Time
		}
		out = append(out, review)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Insert stores review against vendorKey, which must already be in the
// vendors table's native key type. The stored row comes back with its id.
func (r *Repository) Insert(ctx context.Context, vendorKey any, review Review) (Review, error) {
	query := `
        INSERT INTO reviews (vendor_id, user_name, user_avatar, comment, rating, date)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id::text, vendor_id::text, date
    `
	var date pgtype.Date
	err := r.db.QueryRow(ctx, query,
		vendorKey,
		review.Author,
		review.AvatarURL,
		review.Comment,
		review.Rating,
		pgtype.Date{Time: review.Date, Valid: true},
	).Scan(&review.ID, &review.VendorID, &date)
	if err != nil {
		return Review{}, fmt.Errorf("failed to insert review: %w", err)
	}
	if date.Valid {
		review.Date = date.Time
	}
	return review, nil
}
