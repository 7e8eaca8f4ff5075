package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/domain"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/ports"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/pkg/metrics"
)

// SafetyConfig tunes the safety engine.
type SafetyConfig struct {
	// MissedCheckinThreshold is the number of consecutive missed check-ins
	// after which a traveler is marked missing.
	MissedCheckinThreshold int
	// CheckinInterval is how far expected_checkin_at is pushed forward after
	// a check-in or a recorded miss.
	CheckinInterval time.Duration
	// NotifyTimeout bounds a single notification send.
	NotifyTimeout time.Duration
}

func (c SafetyConfig) withDefaults() SafetyConfig {
	if c.MissedCheckinThreshold <= 0 {
		c.MissedCheckinThreshold = 3
	}
	if c.CheckinInterval <= 0 {
		c.CheckinInterval = 6 * time.Hour
	}
	if c.NotifyTimeout <= 0 {
		c.NotifyTimeout = 10 * time.Second
	}
	return c
}

// SafetyService owns traveler safety state: it ingests location reports,
// raises and resolves alerts, and dispatches emergency notifications.
// Every status write goes through the unit of work, which serializes
// read-modify-write cycles per traveler at the store, so the API server,
// the check-in sweeper, and the escalation worker can all mutate the same
// record without losing updates.
type SafetyService struct {
	statuses   ports.StatusRepository
	alerts     ports.AlertRepository
	uow        ports.SafetyUnitOfWork
	locations  ports.LocationRepository
	profiles   ports.ProfileRepository
	responders ports.ResponderDirectory
	notifier   ports.NotificationDispatcher
	publisher  ports.EventPublisher
	escalator  ports.EscalationScheduler
	cfg        SafetyConfig
}

// NewSafetyService creates a new SafetyService. publisher and escalator may be
// nil; they are strictly best-effort collaborators.
func NewSafetyService(
	statuses ports.StatusRepository,
	alerts ports.AlertRepository,
	uow ports.SafetyUnitOfWork,
	locations ports.LocationRepository,
	profiles ports.ProfileRepository,
	responders ports.ResponderDirectory,
	notifier ports.NotificationDispatcher,
	publisher ports.EventPublisher,
	escalator ports.EscalationScheduler,
	cfg SafetyConfig,
) *SafetyService {
	return &SafetyService{
		statuses:   statuses,
		alerts:     alerts,
		uow:        uow,
		locations:  locations,
		profiles:   profiles,
		responders: responders,
		notifier:   notifier,
		publisher:  publisher,
		escalator:  escalator,
		cfg:        cfg.withDefaults(),
	}
}

func (s *SafetyService) loadOrCreateStatus(ctx context.Context, travelerID string, now time.Time) (*domain.TravelerSafetyStatus, error) {
	status, err := s.statuses.Get(ctx, travelerID)
	if err == nil {
		return status, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewTravelerSafetyStatus(travelerID, now), nil
	}
	return nil, err
}

// PanicResult is the outcome of a panic trigger. Warnings carry non-fatal
// downstream failures (missed responder lookup, failed notification); the
// safety record itself is already committed.
type PanicResult struct {
	AlertID  string
	Status   *domain.TravelerSafetyStatus
	Nearest  *domain.ResponderMatch
	Warnings []error
}

// TriggerPanic raises a manual SOS. The alert append and the emergency status
// transition commit together before any notification is attempted; a failed
// send is reported as a warning, never rolled back against.
func (s *SafetyService) TriggerPanic(ctx context.Context, travelerID string, point *domain.GeoPoint) (*PanicResult, error) {
	profile, err := s.profiles.Get(ctx, travelerID)
	if err != nil {
		return nil, err
	}
	if point != nil && !point.Valid() {
		return nil, domain.ErrInvalidCoordinate
	}

	now := time.Now().UTC()

	var (
		status *domain.TravelerSafetyStatus
		alert  *domain.SafetyAlert
		coords *domain.GeoPoint
	)
	alertID, err := s.uow.MutateStatus(ctx, travelerID, now, func(st *domain.TravelerSafetyStatus) (*domain.SafetyAlert, error) {
		status = st

		// A panic without a coordinate falls back to the last known position,
		// and to the null island origin when the traveler was never seen.
		coords = point
		if coords == nil {
			if st.LastLocation != nil {
				p := st.LastLocation.Point
				coords = &p
			} else {
				coords = &domain.GeoPoint{}
			}
		}

		alert = &domain.SafetyAlert{
			TravelerID:  travelerID,
			Type:        domain.AlertPanic,
			Severity:    domain.SeverityCritical,
			Status:      domain.AlertPending,
			Details:     fmt.Sprintf("SOS activated by %s", profile.Name),
			Coordinates: coords,
			CreatedAt:   now,
		}
		if err := alert.Validate(); err != nil {
			return nil, err
		}

		st.Transition(domain.StateEmergency, now)
		if point != nil {
			st.LastLocation = &domain.LastLocation{Point: *point, Time: now}
		}
		return alert, nil
	})
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) || errors.Is(err, domain.ErrInvalidCoordinate) {
			return nil, err
		}
		return nil, &domain.PersistenceError{Op: "trigger panic", Err: err}
	}
	alert.ID = alertID

	metrics.PanicsTriggered.Inc()
	metrics.AlertsRaised.WithLabelValues(string(domain.AlertPanic)).Inc()

	res := &PanicResult{AlertID: alertID, Status: status}

	// Everything below is best-effort and runs after the commit so a slow
	// gateway cannot stall the safety record.
	match, err := s.responders.Nearest(ctx, *coords)
	if err != nil {
		res.Warnings = append(res.Warnings, err)
	} else {
		res.Nearest = match
	}

	res.Warnings = append(res.Warnings, s.notifySOS(ctx, profile, point, match, now)...)

	if s.escalator != nil {
		if err := s.escalator.ScheduleEscalation(ctx, alert); err != nil {
			res.Warnings = append(res.Warnings, fmt.Errorf("schedule escalation: %w", err))
		}
	}
	if s.publisher != nil {
		_ = s.publisher.PublishAlert(ctx, alert)
		_ = s.publisher.PublishStatusChange(ctx, status)
	}

	return res, nil
}

// notifySOS sends the SOS message to the traveler's configured emergency
// channel. Exactly one send attempt per panic trigger.
func (s *SafetyService) notifySOS(ctx context.Context, profile *domain.TravelerProfile, point *domain.GeoPoint, match *domain.ResponderMatch, now time.Time) []error {
	channel, destination, ok := profile.EmergencyChannel()
	if !ok {
		return []error{&domain.DeliveryError{
			Channel: "none",
			Err:     fmt.Errorf("no emergency contact configured for traveler %s", profile.TravelerID),
		}}
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.NotifyTimeout)
	defer cancel()

	subject := "SOS ALERT - TravelGuard"
	body := buildSOSBody(profile, point, match, now)
	if err := s.notifier.Send(sendCtx, channel, destination, subject, body); err != nil {
		metrics.NotificationsFailed.WithLabelValues(channel).Inc()
		return []error{&domain.DeliveryError{Channel: channel, Destination: destination, Err: err}}
	}
	metrics.NotificationsSent.WithLabelValues(channel).Inc()
	return nil
}

func buildSOSBody(profile *domain.TravelerProfile, point *domain.GeoPoint, match *domain.ResponderMatch, now time.Time) string {
	location := "Location not available"
	if point != nil {
		location = fmt.Sprintf("Latitude: %.5f, Longitude: %.5f", point.Lat, point.Lon)
	}

	body := fmt.Sprintf(
		"EMERGENCY SOS ALERT\n\nName: %s\nPhone: %s\n\nLocation:\n%s\n\nTime:\n%s\n",
		profile.Name, profile.PhoneNumber, location, now.Format("2006-01-02 15:04 UTC"),
	)
	if match != nil {
		body += fmt.Sprintf(
			"\nNearest Responder:\n%s\nContact: %s\nDistance: %.1f km\n",
			match.Responder.Name, match.Responder.Contact, match.DistanceMeters/1000,
		)
	}
	body += "\nPLEASE RESPOND IMMEDIATELY.\n— TravelGuard Safety System"
	return body
}

// ReportLocation ingests a location sample. Fails with ErrTrackingDisabled
// before touching any state when the traveler has not opted in. A traveler
// who went missing from missed check-ins is moved back to active.
func (s *SafetyService) ReportLocation(ctx context.Context, travelerID string, sample *domain.LocationSample) error {
	profile, err := s.profiles.Get(ctx, travelerID)
	if err != nil {
		return err
	}
	if !profile.TrackingEnabled {
		return domain.ErrTrackingDisabled
	}
	if !sample.Point.Valid() {
		return domain.ErrInvalidCoordinate
	}

	now := time.Now().UTC()
	sample.TravelerID = travelerID
	if sample.Time.IsZero() {
		sample.Time = now
	}

	if err := s.locations.Insert(ctx, sample); err != nil {
		return &domain.PersistenceError{Op: "insert location", Err: err}
	}

	_, err = s.uow.MutateStatus(ctx, travelerID, now, func(st *domain.TravelerSafetyStatus) (*domain.SafetyAlert, error) {
		st.LastLocation = &domain.LastLocation{Point: sample.Point, Time: sample.Time, Accuracy: sample.Accuracy}
		st.UpdatedAt = now

		// A missing state only ever arises from missed check-ins; emergencies
		// are their own state and stay until their alerts are resolved.
		if st.CurrentStatus == domain.StateMissing {
			st.MissedCheckins = 0
			st.Transition(domain.StateActive, now)
		}
		return nil, nil
	})
	if err != nil {
		return &domain.PersistenceError{Op: "update status", Err: err}
	}

	metrics.LocationSamplesIngested.Inc()
	if s.publisher != nil {
		_ = s.publisher.PublishLocation(ctx, sample)
	}
	return nil
}

// MissedCheckinResult reports what a recorded miss did to the traveler.
type MissedCheckinResult struct {
	MissedCheckins int
	Status         *domain.TravelerSafetyStatus
	AlertID        string // set only when the miss crossed the threshold
}

// ReportMissedCheckin increments the missed check-in counter. A traveler at or
// past the configured threshold while active is marked missing with one
// missed_checkin alert; further misses only keep counting. The at-or-past
// comparison matters: the counter can sail beyond the threshold during an
// emergency interlude, and the first miss after the traveler returns to
// active must still mark them missing.
func (s *SafetyService) ReportMissedCheckin(ctx context.Context, travelerID string) (*MissedCheckinResult, error) {
	now := time.Now().UTC()

	var (
		status *domain.TravelerSafetyStatus
		raised *domain.SafetyAlert
	)
	alertID, err := s.uow.MutateStatus(ctx, travelerID, now, func(st *domain.TravelerSafetyStatus) (*domain.SafetyAlert, error) {
		status = st
		st.MissedCheckins++
		st.UpdatedAt = now
		if st.ExpectedCheckinAt != nil {
			next := now.Add(s.cfg.CheckinInterval)
			st.ExpectedCheckinAt = &next
		}

		crossed := st.MissedCheckins >= s.cfg.MissedCheckinThreshold &&
			st.CurrentStatus == domain.StateActive
		if !crossed {
			return nil, nil
		}

		st.Transition(domain.StateMissing, now)

		raised = &domain.SafetyAlert{
			TravelerID: travelerID,
			Type:       domain.AlertMissedCheckin,
			Severity:   domain.SeverityHigh,
			Status:     domain.AlertPending,
			Details:    fmt.Sprintf("%d consecutive check-ins missed", st.MissedCheckins),
			CreatedAt:  now,
		}
		if st.LastLocation != nil {
			p := st.LastLocation.Point
			raised.Coordinates = &p
		}
		return raised, nil
	})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "missed check-in", Err: err}
	}
	metrics.MissedCheckins.Inc()

	if raised == nil {
		return &MissedCheckinResult{MissedCheckins: status.MissedCheckins, Status: status}, nil
	}
	raised.ID = alertID

	metrics.AlertsRaised.WithLabelValues(string(domain.AlertMissedCheckin)).Inc()
	if s.publisher != nil {
		_ = s.publisher.PublishAlert(ctx, raised)
		_ = s.publisher.PublishStatusChange(ctx, status)
	}

	return &MissedCheckinResult{MissedCheckins: status.MissedCheckins, Status: status, AlertID: alertID}, nil
}

// Checkin records a manual check-in: the missed counter resets, a missing
// traveler returns to active, and the next expected check-in moves forward.
func (s *SafetyService) Checkin(ctx context.Context, travelerID string) (*domain.TravelerSafetyStatus, error) {
	now := time.Now().UTC()

	var status *domain.TravelerSafetyStatus
	_, err := s.uow.MutateStatus(ctx, travelerID, now, func(st *domain.TravelerSafetyStatus) (*domain.SafetyAlert, error) {
		status = st
		st.MissedCheckins = 0
		next := now.Add(s.cfg.CheckinInterval)
		st.ExpectedCheckinAt = &next
		st.UpdatedAt = now
		if st.CurrentStatus == domain.StateMissing {
			st.Transition(domain.StateActive, now)
		}
		return nil, nil
	})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "update status", Err: err}
	}
	return status, nil
}

// AcknowledgeAlert moves a pending alert to acknowledged and assigns the
// responder to both the alert and the traveler's status record.
func (s *SafetyService) AcknowledgeAlert(ctx context.Context, alertID, responderID string) error {
	alert, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return err
	}

	if err := s.alerts.Acknowledge(ctx, alertID, responderID); err != nil {
		return err
	}

	_, err = s.uow.MutateStatus(ctx, alert.TravelerID, time.Now().UTC(), func(st *domain.TravelerSafetyStatus) (*domain.SafetyAlert, error) {
		st.AssignedResponder = responderID
		return nil, nil
	})
	if err != nil {
		return &domain.PersistenceError{Op: "assign responder", Err: err}
	}
	return nil
}

// ResolveAlert resolves an alert. Resolving the traveler's last pending alert
// while they are in emergency brings them back to active.
func (s *SafetyService) ResolveAlert(ctx context.Context, alertID, notes string) error {
	alert, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return err
	}

	if err := s.alerts.Resolve(ctx, alertID, notes); err != nil {
		return err
	}

	pending, err := s.alerts.CountPending(ctx, alert.TravelerID)
	if err != nil {
		return &domain.PersistenceError{Op: "count pending alerts", Err: err}
	}
	if pending > 0 {
		return nil
	}

	now := time.Now().UTC()
	var status *domain.TravelerSafetyStatus
	_, err = s.uow.MutateStatus(ctx, alert.TravelerID, now, func(st *domain.TravelerSafetyStatus) (*domain.SafetyAlert, error) {
		if st.CurrentStatus != domain.StateEmergency {
			return nil, nil
		}
		st.Transition(domain.StateActive, now)
		st.PriorityLevel = domain.PriorityNormal
		status = st
		return nil, nil
	})
	if err != nil {
		return &domain.PersistenceError{Op: "update status", Err: err}
	}
	if status != nil && s.publisher != nil {
		_ = s.publisher.PublishStatusChange(ctx, status)
	}
	return nil
}

// Dashboard is the aggregate a traveler's safety page renders from.
type Dashboard struct {
	Status          *domain.TravelerSafetyStatus `json:"status"`
	RecentAlerts    []domain.SafetyAlert         `json:"recent_alerts"`
	RecentLocations []domain.LocationSample      `json:"recent_locations"`
	TotalAlerts     int                          `json:"total_alerts"`
	PendingAlerts   int                          `json:"pending_alerts"`
}

// GetDashboard assembles the current status, recent alerts, and the latest
// location samples for one traveler.
func (s *SafetyService) GetDashboard(ctx context.Context, travelerID string) (*Dashboard, error) {
	status, err := s.loadOrCreateStatus(ctx, travelerID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	alerts, err := s.alerts.ListByTraveler(ctx, travelerID, time.Time{})
	if err != nil {
		return nil, err
	}
	if len(alerts) > 10 {
		alerts = alerts[:10]
	}

	locations, err := s.locations.ListByTraveler(ctx, travelerID, 20)
	if err != nil {
		return nil, err
	}

	total, err := s.alerts.CountByTraveler(ctx, travelerID)
	if err != nil {
		return nil, err
	}
	pending, err := s.alerts.CountPending(ctx, travelerID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Status:          status,
		RecentAlerts:    alerts,
		RecentLocations: locations,
		TotalAlerts:     total,
		PendingAlerts:   pending,
	}, nil
}

// ListAlerts returns a traveler's alerts created at or after since, newest first.
func (s *SafetyService) ListAlerts(ctx context.Context, travelerID string, since time.Time) ([]domain.SafetyAlert, error) {
	return s.alerts.ListByTraveler(ctx, travelerID, since)
}

// ListLocations returns a traveler's most recent samples, newest first.
func (s *SafetyService) ListLocations(ctx context.Context, travelerID string, limit int) ([]domain.LocationSample, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.locations.ListByTraveler(ctx, travelerID, limit)
}
