package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/domain"
)

// SafetyTx implements ports.SafetyUnitOfWork: every status read-modify-write
// runs inside one pgx transaction holding a per-traveler lock, so concurrent
// writers from different processes (API, sweeper, escalation worker) can never
// interleave on the same traveler and lose an update.
type SafetyTx struct {
	db *DB
}

// NewSafetyTx creates a new SafetyTx.
func NewSafetyTx(db *DB) *SafetyTx {
	return &SafetyTx{db: db}
}

// MutateStatus loads the traveler's status under a transaction-scoped advisory
// lock, applies fn, and persists the result. The advisory lock covers the case
// where no row exists yet and SELECT FOR UPDATE has nothing to grab. An alert
// returned by fn is appended in the same transaction and its generated ID
// returned.
func (t *SafetyTx) MutateStatus(ctx context.Context, travelerID string, now time.Time, fn func(status *domain.TravelerSafetyStatus) (*domain.SafetyAlert, error)) (string, error) {
	tx, err := t.db.Pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, travelerID,
	); err != nil {
		return "", fmt.Errorf("lock traveler: %w", err)
	}

	row := tx.QueryRow(ctx, `
		SELECT traveler_id, current_status, priority_level,
		       last_lat, last_lon, last_location_at, last_accuracy,
		       COALESCE(assigned_responder, ''), missed_checkins,
		       expected_checkin_at, status_changed_at, created_at, updated_at
		FROM traveler_safety_status WHERE traveler_id = $1 FOR UPDATE
	`, travelerID)
	status, err := scanStatus(row)
	if errors.Is(err, pgx.ErrNoRows) {
		status = domain.NewTravelerSafetyStatus(travelerID, now)
	} else if err != nil {
		return "", fmt.Errorf("load status: %w", err)
	}

	alert, err := fn(status)
	if err != nil {
		return "", err
	}

	var alertID string
	if alert != nil {
		if err := alert.Validate(); err != nil {
			return "", err
		}
		alertID, err = appendAlert(ctx, tx, alert)
		if err != nil {
			return "", fmt.Errorf("append alert: %w", err)
		}
	}

	if err := upsertStatus(ctx, tx, status); err != nil {
		return "", fmt.Errorf("upsert status: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return alertID, nil
}
