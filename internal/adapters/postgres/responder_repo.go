package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/domain"
)

// ResponderRepo implements ports.ResponderRepository with pgx.
type ResponderRepo struct {
	db *DB
}

// NewResponderRepo creates a new ResponderRepo.
func NewResponderRepo(db *DB) *ResponderRepo {
	return &ResponderRepo{db: db}
}

// ListActive returns the active roster ordered by ID so distance ties resolve
// the same way on every node.
func (r *ResponderRepo) ListActive(ctx context.Context) ([]domain.Responder, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, contact, lat, lon, active, created_at
		FROM responders
		WHERE active
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responders []domain.Responder
	for rows.Next() {
		var resp domain.Responder
		if err := rows.Scan(
			&resp.ID, &resp.Name, &resp.Contact,
			&resp.Location.Lat, &resp.Location.Lon,
			&resp.Active, &resp.CreatedAt,
		); err != nil {
			return nil, err
		}
		responders = append(responders, resp)
	}
	return responders, rows.Err()
}

// GetByID returns a responder by ID.
func (r *ResponderRepo) GetByID(ctx context.Context, id string) (*domain.Responder, error) {
	var resp domain.Responder
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, contact, lat, lon, active, created_at
		FROM responders WHERE id = $1
	`, id).Scan(
		&resp.ID, &resp.Name, &resp.Contact,
		&resp.Location.Lat, &resp.Location.Lon,
		&resp.Active, &resp.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
