package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/domain"
)

// LocationRepo implements ports.LocationRepository with pgx.
type LocationRepo struct {
	db *DB
}

// NewLocationRepo creates a new LocationRepo.
func NewLocationRepo(db *DB) *LocationRepo {
	return &LocationRepo{db: db}
}

// Insert appends one sample to the traveler's time series.
func (r *LocationRepo) Insert(ctx context.Context, s *domain.LocationSample) error {
	ts := s.Time
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO location_samples (traveler_id, lat, lon, time, accuracy, speed_mps, battery)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, s.TravelerID, s.Point.Lat, s.Point.Lon, ts, s.Accuracy, s.SpeedMPS, s.Battery)
	return err
}

// ListByTraveler returns the most recent samples, newest first.
func (r *LocationRepo) ListByTraveler(ctx context.Context, travelerID string, limit int) ([]domain.LocationSample, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, traveler_id, lat, lon, time, accuracy, speed_mps, battery
		FROM location_samples
		WHERE traveler_id = $1
		ORDER BY time DESC
		LIMIT $2
	`, travelerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []domain.LocationSample
	for rows.Next() {
		var s domain.LocationSample
		var accuracy, speed, battery sql.NullFloat64
		if err := rows.Scan(
			&s.ID, &s.TravelerID, &s.Point.Lat, &s.Point.Lon, &s.Time,
			&accuracy, &speed, &battery,
		); err != nil {
			return nil, err
		}
		if accuracy.Valid {
			s.Accuracy = &accuracy.Float64
		}
		if speed.Valid {
			s.SpeedMPS = &speed.Float64
		}
		if battery.Valid {
			s.Battery = &battery.Float64
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}
