package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/domain"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/ports"
)

// EscalationActivities holds the activity implementations for the escalation
// workflow. All state goes through the same ports the engine uses; status
// writes run through the unit of work so the worker never races the API or
// the sweeper on a traveler's record.
type EscalationActivities struct {
	Alerts     ports.AlertRepository
	UoW        ports.SafetyUnitOfWork
	Responders ports.ResponderDirectory
	Notifier   ports.NotificationDispatcher
}

// GetAlertStatus returns the current handling status of an alert.
func (a *EscalationActivities) GetAlertStatus(ctx context.Context, alertID string) (string, error) {
	alert, err := a.Alerts.GetByID(ctx, alertID)
	if err != nil {
		return "", fmt.Errorf("get alert %s: %w", alertID, err)
	}
	return string(alert.Status), nil
}

// AssignNearestResponder acknowledges the alert with the closest responder
// and returns the responder ID.
func (a *EscalationActivities) AssignNearestResponder(ctx context.Context, travelerID, alertID string, lat, lon float64) (string, error) {
	match, err := a.Responders.Nearest(ctx, domain.GeoPoint{Lat: lat, Lon: lon})
	if err != nil {
		return "", fmt.Errorf("nearest responder: %w", err)
	}

	if err := a.Alerts.Acknowledge(ctx, alertID, match.Responder.ID); err != nil {
		// Someone may have acknowledged concurrently; that still counts.
		if errors.Is(err, domain.ErrInvalidTransition) {
			return match.Responder.ID, nil
		}
		return "", fmt.Errorf("acknowledge alert %s: %w", alertID, err)
	}

	// Best-effort mirror onto the status record.
	now := time.Now().UTC()
	_, _ = a.UoW.MutateStatus(ctx, travelerID, now, func(st *domain.TravelerSafetyStatus) (*domain.SafetyAlert, error) {
		st.AssignedResponder = match.Responder.ID
		st.UpdatedAt = now
		return nil, nil
	})

	return match.Responder.ID, nil
}

// NotifyAuthority sends the escalation notice to the authority channel.
func (a *EscalationActivities) NotifyAuthority(ctx context.Context, input EscalationInput, responderID string) error {
	location := "Location not available"
	if input.HasCoordinates {
		location = fmt.Sprintf("Latitude: %.5f, Longitude: %.5f", input.Lat, input.Lon)
	}
	assigned := "none"
	if responderID != "" {
		assigned = responderID
	}

	subject := "ESCALATED SOS - TravelGuard"
	body := fmt.Sprintf(
		"Panic alert %s for traveler %s is still unacknowledged.\n\nLocation:\n%s\n\nAssigned responder: %s\n",
		input.AlertID, input.TravelerID, location, assigned,
	)
	return a.Notifier.Send(ctx, "email", input.AuthorityEmail, subject, body)
}
