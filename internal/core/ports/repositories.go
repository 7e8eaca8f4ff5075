package ports

import (
	"context"
	"time"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/domain"
)

// StatusRepository reads the one-per-traveler safety status record. All
// writes go through SafetyUnitOfWork so they serialize at the store.
type StatusRepository interface {
	Get(ctx context.Context, travelerID string) (*domain.TravelerSafetyStatus, error)
	// ListOverdue returns statuses whose expected check-in time has passed.
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]domain.TravelerSafetyStatus, error)
}

// AlertRepository persists the append-only safety alert log.
type AlertRepository interface {
	Append(ctx context.Context, alert *domain.SafetyAlert) (string, error)
	GetByID(ctx context.Context, id string) (*domain.SafetyAlert, error)
	ListByTraveler(ctx context.Context, travelerID string, since time.Time) ([]domain.SafetyAlert, error)
	CountByTraveler(ctx context.Context, travelerID string) (int, error)
	CountPending(ctx context.Context, travelerID string) (int, error)
	Acknowledge(ctx context.Context, id, responderID string) error
	Resolve(ctx context.Context, id, notes string) error
}

// SafetyUnitOfWork owns every status write. MutateStatus loads the traveler's
// status record (a fresh default one when none exists), applies fn, and
// persists the result as one atomic unit, serialized against all other writers
// of the same traveler across processes. An alert returned by fn is appended
// in the same unit; either both persist or neither does. The generated alert
// ID is returned when an alert was appended.
type SafetyUnitOfWork interface {
	MutateStatus(ctx context.Context, travelerID string, now time.Time, fn func(status *domain.TravelerSafetyStatus) (*domain.SafetyAlert, error)) (alertID string, err error)
}

// LocationRepository persists the per-traveler location time series.
type LocationRepository interface {
	Insert(ctx context.Context, sample *domain.LocationSample) error
	ListByTraveler(ctx context.Context, travelerID string, limit int) ([]domain.LocationSample, error)
}

// ResponderRepository persists the responder roster.
type ResponderRepository interface {
	ListActive(ctx context.Context) ([]domain.Responder, error)
	GetByID(ctx context.Context, id string) (*domain.Responder, error)
}

// ProfileRepository reads traveler contact and opt-in settings. The records
// are owned by the account system; this core never writes them.
type ProfileRepository interface {
	Get(ctx context.Context, travelerID string) (*domain.TravelerProfile, error)
}
