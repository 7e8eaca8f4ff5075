package ports

import (
	"context"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/domain"
)

// ResponderDirectory answers nearest-responder lookups.
type ResponderDirectory interface {
	// Nearest returns the closest active responder to the point, ties broken
	// by lowest responder ID. Returns domain.ErrNoResponderAvailable when the
	// roster is empty.
	Nearest(ctx context.Context, p domain.GeoPoint) (*domain.ResponderMatch, error)
}

// NotificationDispatcher delivers a single notification. Implementations make
// at most one send attempt per call; deduplication is the caller's job.
type NotificationDispatcher interface {
	Send(ctx context.Context, channel, destination, subject, body string) error
}

// EventPublisher publishes safety events to a message broker.
type EventPublisher interface {
	PublishAlert(ctx context.Context, alert *domain.SafetyAlert) error
	PublishLocation(ctx context.Context, sample *domain.LocationSample) error
	PublishStatusChange(ctx context.Context, status *domain.TravelerSafetyStatus) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// EscalationScheduler starts the unacknowledged-panic escalation process for
// a freshly raised alert. Best-effort from the engine's point of view.
type EscalationScheduler interface {
	ScheduleEscalation(ctx context.Context, alert *domain.SafetyAlert) error
}
