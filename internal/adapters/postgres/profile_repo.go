package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/domain"
)

// ProfileRepo implements ports.ProfileRepository. The table belongs to the
// account system; this adapter only ever reads it.
type ProfileRepo struct {
	db *DB
}

// NewProfileRepo creates a new ProfileRepo.
func NewProfileRepo(db *DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Get returns one traveler's contact and opt-in settings.
func (r *ProfileRepo) Get(ctx context.Context, travelerID string) (*domain.TravelerProfile, error) {
	var p domain.TravelerProfile
	err := r.db.Pool.QueryRow(ctx, `
		SELECT traveler_id, name, COALESCE(phone_number, ''),
		       COALESCE(emergency_contact_email, ''),
		       COALESCE(emergency_contact_phone, ''),
		       tracking_enabled
		FROM traveler_profiles WHERE traveler_id = $1
	`, travelerID).Scan(
		&p.TravelerID, &p.Name, &p.PhoneNumber,
		&p.EmergencyContactEmail, &p.EmergencyContactPhone,
		&p.TrackingEnabled,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
