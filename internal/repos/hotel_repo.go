package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"hoteldesk/internal/domain"
)

type HotelRepo struct{ db *sqlx.DB }

func NewHotelRepo(db *sqlx.DB) *HotelRepo { return &HotelRepo{db: db} }

func (r *HotelRepo) List(ctx context.Context) ([]domain.Hotel, error) {
	out := []domain.Hotel{}
	if err := r.db.SelectContext(ctx, &out, `SELECT id, name, description FROM hotels ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list hotels: %w", err)
	}
	return out, nil
}

func (r *HotelRepo) Create(ctx context.Context, name, description string) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, r.db.Rebind(`
		INSERT INTO hotels(name, description)
		VALUES(?, ?)
		RETURNING id`), name, description)
	if err != nil {
		return 0, fmt.Errorf("insert hotel: %w", err)
	}
	return id, nil
}

// Update overwrites name and description; it returns the number of rows changed (0 if id is absent).
func (r *HotelRepo) Update(ctx context.Context, id int64, name, description string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE hotels SET name = ?, description = ? WHERE id = ?`), name, description, id)
	if err != nil {
		return 0, fmt.Errorf("update hotel %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Delete removes the row if present and returns the number of rows removed.
func (r *HotelRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM hotels WHERE id = ?`), id)
	if err != nil {
		return 0, fmt.Errorf("delete hotel %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
