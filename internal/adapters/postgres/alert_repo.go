package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/domain"
)

// AlertRepo implements ports.AlertRepository with pgx. The log is append-only:
// type, coordinates, and created_at are never updated after insert.
type AlertRepo struct {
	db *DB
}

// NewAlertRepo creates a new AlertRepo.
func NewAlertRepo(db *DB) *AlertRepo {
	return &AlertRepo{db: db}
}

// Append validates and inserts a new alert, returning its generated ID.
func (r *AlertRepo) Append(ctx context.Context, alert *domain.SafetyAlert) (string, error) {
	if err := alert.Validate(); err != nil {
		return "", err
	}
	return appendAlert(ctx, r.db.Pool, alert)
}

// rowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func appendAlert(ctx context.Context, q rowQuerier, a *domain.SafetyAlert) (string, error) {
	var lat, lon any
	if a.Coordinates != nil {
		lat, lon = a.Coordinates.Lat, a.Coordinates.Lon
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO safety_alerts
			(traveler_id, alert_type, lat, lon, severity, status, details,
			 assigned_responder, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
		RETURNING id
	`, a.TravelerID, a.Type, lat, lon, a.Severity, a.Status, a.Details,
		a.AssignedResponder, createdAt).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetByID returns a single alert.
func (r *AlertRepo) GetByID(ctx context.Context, id string) (*domain.SafetyAlert, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT id, traveler_id, alert_type, lat, lon, severity, status,
		       COALESCE(details, ''), COALESCE(assigned_responder, ''),
		       COALESCE(resolution_notes, ''), created_at, resolved_at
		FROM safety_alerts WHERE id = $1
	`, id)

	a, err := scanAlert(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return a, err
}

func scanAlert(row pgx.Row) (*domain.SafetyAlert, error) {
	var a domain.SafetyAlert
	var lat, lon sql.NullFloat64
	var resolvedAt sql.NullTime
	if err := row.Scan(
		&a.ID, &a.TravelerID, &a.Type, &lat, &lon, &a.Severity, &a.Status,
		&a.Details, &a.AssignedResponder, &a.ResolutionNotes,
		&a.CreatedAt, &resolvedAt,
	); err != nil {
		return nil, err
	}
	if lat.Valid && lon.Valid {
		a.Coordinates = &domain.GeoPoint{Lat: lat.Float64, Lon: lon.Float64}
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		a.ResolvedAt = &t
	}
	return &a, nil
}

// ListByTraveler returns a traveler's alerts created at or after since,
// newest first.
func (r *AlertRepo) ListByTraveler(ctx context.Context, travelerID string, since time.Time) ([]domain.SafetyAlert, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, traveler_id, alert_type, lat, lon, severity, status,
		       COALESCE(details, ''), COALESCE(assigned_responder, ''),
		       COALESCE(resolution_notes, ''), created_at, resolved_at
		FROM safety_alerts
		WHERE traveler_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
	`, travelerID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []domain.SafetyAlert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

// CountByTraveler counts every alert ever raised for a traveler.
func (r *AlertRepo) CountByTraveler(ctx context.Context, travelerID string) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT count(*) FROM safety_alerts WHERE traveler_id = $1
	`, travelerID).Scan(&n)
	return n, err
}

// CountPending counts a traveler's unresolved pending alerts.
func (r *AlertRepo) CountPending(ctx context.Context, travelerID string) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT count(*) FROM safety_alerts
		WHERE traveler_id = $1 AND status = 'pending'
	`, travelerID).Scan(&n)
	return n, err
}

// Acknowledge moves a pending alert to acknowledged and assigns a responder.
func (r *AlertRepo) Acknowledge(ctx context.Context, id, responderID string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE safety_alerts
		SET status = 'acknowledged', assigned_responder = NULLIF($2, '')
		WHERE id = $1 AND status = 'pending'
	`, id, responderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.transitionFailure(ctx, id)
	}
	return nil
}

// Resolve terminates an alert from pending or acknowledged state.
func (r *AlertRepo) Resolve(ctx context.Context, id, notes string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE safety_alerts
		SET status = 'resolved', resolution_notes = NULLIF($2, ''), resolved_at = now()
		WHERE id = $1 AND status IN ('pending', 'acknowledged')
	`, id, notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.transitionFailure(ctx, id)
	}
	return nil
}

// transitionFailure distinguishes an unknown alert from an illegal transition
// after a guarded update matched no rows.
func (r *AlertRepo) transitionFailure(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM safety_alerts WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrInvalidTransition
}
