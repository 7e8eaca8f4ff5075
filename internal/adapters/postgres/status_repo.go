package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/domain"
)

// statusWriter is the Exec surface shared by *pgxpool.Pool and pgx.Tx.
type statusWriter interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// StatusRepo implements ports.StatusRepository with pgx.
type StatusRepo struct {
	db *DB
}

// NewStatusRepo creates a new StatusRepo.
func NewStatusRepo(db *DB) *StatusRepo {
	return &StatusRepo{db: db}
}

// Get returns the safety status record for one traveler.
func (r *StatusRepo) Get(ctx context.Context, travelerID string) (*domain.TravelerSafetyStatus, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT traveler_id, current_status, priority_level,
		       last_lat, last_lon, last_location_at, last_accuracy,
		       COALESCE(assigned_responder, ''), missed_checkins,
		       expected_checkin_at, status_changed_at, created_at, updated_at
		FROM traveler_safety_status WHERE traveler_id = $1
	`, travelerID)

	s, err := scanStatus(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return s, err
}

func scanStatus(row pgx.Row) (*domain.TravelerSafetyStatus, error) {
	var s domain.TravelerSafetyStatus
	var lat, lon, accuracy sql.NullFloat64
	var locAt, expected sql.NullTime
	if err := row.Scan(
		&s.TravelerID, &s.CurrentStatus, &s.PriorityLevel,
		&lat, &lon, &locAt, &accuracy,
		&s.AssignedResponder, &s.MissedCheckins,
		&expected, &s.StatusChangedAt, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lat.Valid && lon.Valid && locAt.Valid {
		loc := &domain.LastLocation{
			Point: domain.GeoPoint{Lat: lat.Float64, Lon: lon.Float64},
			Time:  locAt.Time,
		}
		if accuracy.Valid {
			loc.Accuracy = &accuracy.Float64
		}
		s.LastLocation = loc
	}
	if expected.Valid {
		t := expected.Time
		s.ExpectedCheckinAt = &t
	}
	return &s, nil
}

func upsertStatus(ctx context.Context, w statusWriter, s *domain.TravelerSafetyStatus) error {
	var lat, lon, accuracy any
	var locAt any
	if s.LastLocation != nil {
		lat, lon, locAt = s.LastLocation.Point.Lat, s.LastLocation.Point.Lon, s.LastLocation.Time
		if s.LastLocation.Accuracy != nil {
			accuracy = *s.LastLocation.Accuracy
		}
	}

	_, err := w.Exec(ctx, `
		INSERT INTO traveler_safety_status
			(traveler_id, current_status, priority_level,
			 last_lat, last_lon, last_location_at, last_accuracy,
			 assigned_responder, missed_checkins, expected_checkin_at,
			 status_changed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11, $12, $13)
		ON CONFLICT (traveler_id) DO UPDATE
		SET current_status = EXCLUDED.current_status,
		    priority_level = EXCLUDED.priority_level,
		    last_lat = EXCLUDED.last_lat,
		    last_lon = EXCLUDED.last_lon,
		    last_location_at = EXCLUDED.last_location_at,
		    last_accuracy = EXCLUDED.last_accuracy,
		    assigned_responder = EXCLUDED.assigned_responder,
		    missed_checkins = EXCLUDED.missed_checkins,
		    expected_checkin_at = EXCLUDED.expected_checkin_at,
		    status_changed_at = EXCLUDED.status_changed_at,
		    updated_at = EXCLUDED.updated_at
	`, s.TravelerID, s.CurrentStatus, s.PriorityLevel,
		lat, lon, locAt, accuracy,
		s.AssignedResponder, s.MissedCheckins, s.ExpectedCheckinAt,
		s.StatusChangedAt, s.CreatedAt, s.UpdatedAt)
	return err
}

// ListOverdue returns records whose expected check-in has passed. Emergency
// and inactive travelers are left to their own flows.
func (r *StatusRepo) ListOverdue(ctx context.Context, now time.Time, limit int) ([]domain.TravelerSafetyStatus, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT traveler_id, current_status, priority_level,
		       last_lat, last_lon, last_location_at, last_accuracy,
		       COALESCE(assigned_responder, ''), missed_checkins,
		       expected_checkin_at, status_changed_at, created_at, updated_at
		FROM traveler_safety_status
		WHERE expected_checkin_at IS NOT NULL
		  AND expected_checkin_at < $1
		  AND current_status IN ('active', 'missing')
		ORDER BY expected_checkin_at
		LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []domain.TravelerSafetyStatus
	for rows.Next() {
		s, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, *s)
	}
	return statuses, rows.Err()
}
