package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/andhika-rp/bioskop-booking/internal/model"
)

// StudioRepo provides read access to studios.  The booking core never
// writes studios; capacity is treated as immutable once showtimes
// reference it.
type StudioRepo struct {
	db *sql.DB
}

// NewStudioRepo constructs a StudioRepo with the given DB handle.
func NewStudioRepo(db *sql.DB) *StudioRepo {
	return &StudioRepo{db: db}
}

// GetByID retrieves a studio by its id.
func (r *StudioRepo) GetByID(ctx context.Context, id string) (*model.Studio, error) {
	const q = `SELECT id, name, capacity FROM studios WHERE id = ?`
	var s model.Studio
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Name, &s.Capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudioNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListAll returns every studio ordered by name.
func (r *StudioRepo) ListAll(ctx context.Context) ([]model.Studio, error) {
	const q = `SELECT id, name, capacity FROM studios ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Studio
	for rows.Next() {
		var s model.Studio
		if err := rows.Scan(&s.ID, &s.Name, &s.Capacity); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
