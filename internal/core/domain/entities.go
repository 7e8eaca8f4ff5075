package domain

import (
	"time"
)

// SafetyState is the lifecycle state of a tracked traveler.
type SafetyState string

const (
	StateActive    SafetyState = "active"
	StateMissing   SafetyState = "missing"
	StateEmergency SafetyState = "emergency"
	StateInactive  SafetyState = "inactive"
)

// Priority is the case-handling priority of a traveler's status record.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// AlertType classifies a safety alert.
type AlertType string

const (
	AlertPanic         AlertType = "panic"
	AlertMissedCheckin AlertType = "missed_checkin"
	AlertGeofenceEntry AlertType = "geofence_entry"
	AlertGeofenceExit  AlertType = "geofence_exit"
	AlertAnomaly       AlertType = "anomaly"
)

// Severity grades an alert.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AlertStatus is the handling state of an alert.
type AlertStatus string

const (
	AlertPending      AlertStatus = "pending"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertResolved     AlertStatus = "resolved"
)

// LastLocation is the most recent known position of a traveler.
type LastLocation struct {
	Point    GeoPoint  `json:"point"`
	Time     time.Time `json:"time"`
	Accuracy *float64  `json:"accuracy,omitempty"` // meters
}

// TravelerSafetyStatus is the single safety record kept per traveler.
// It is mutated only through the safety engine.
type TravelerSafetyStatus struct {
	TravelerID        string        `json:"traveler_id"`
	CurrentStatus     SafetyState   `json:"current_status"`
	PriorityLevel     Priority      `json:"priority_level"`
	LastLocation      *LastLocation `json:"last_location,omitempty"`
	AssignedResponder string        `json:"assigned_responder,omitempty"`
	MissedCheckins    int           `json:"missed_checkins"`
	ExpectedCheckinAt *time.Time    `json:"expected_checkin_at,omitempty"`
	StatusChangedAt   time.Time     `json:"status_changed_at"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// NewTravelerSafetyStatus returns the default record created on first contact.
func NewTravelerSafetyStatus(travelerID string, now time.Time) *TravelerSafetyStatus {
	return &TravelerSafetyStatus{
		TravelerID:      travelerID,
		CurrentStatus:   StateActive,
		PriorityLevel:   PriorityNormal,
		StatusChangedAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Transition moves the record to a new state, stamping status_changed_at.
// Entering emergency always forces critical priority; leaving any other way
// keeps the priority untouched so a caller can set it explicitly afterwards.
func (s *TravelerSafetyStatus) Transition(to SafetyState, now time.Time) {
	s.CurrentStatus = to
	if to == StateEmergency {
		s.PriorityLevel = PriorityCritical
	}
	s.StatusChangedAt = now
	s.UpdatedAt = now
}

// SafetyAlert is one append-only entry in the alert log.
type SafetyAlert struct {
	ID                string      `json:"id"`
	TravelerID        string      `json:"traveler_id"`
	Type              AlertType   `json:"alert_type"`
	Coordinates       *GeoPoint   `json:"coordinates,omitempty"`
	Severity          Severity    `json:"severity"`
	Status            AlertStatus `json:"status"`
	Details           string      `json:"details,omitempty"`
	AssignedResponder string      `json:"assigned_responder,omitempty"`
	ResolutionNotes   string      `json:"resolution_notes,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	ResolvedAt        *time.Time  `json:"resolved_at,omitempty"`
}

// requiresCoordinates lists alert types that cannot be raised without a position.
func (t AlertType) requiresCoordinates() bool {
	switch t {
	case AlertPanic, AlertGeofenceEntry, AlertGeofenceExit:
		return true
	}
	return false
}

// Validate checks the invariants that must hold before an alert is appended.
func (a *SafetyAlert) Validate() error {
	if a.TravelerID == "" {
		return &ValidationError{Field: "traveler_id", Reason: "is required"}
	}
	switch a.Type {
	case AlertPanic, AlertMissedCheckin, AlertGeofenceEntry, AlertGeofenceExit, AlertAnomaly:
	default:
		return &ValidationError{Field: "alert_type", Reason: "is unknown"}
	}
	if a.Type.requiresCoordinates() {
		if a.Coordinates == nil {
			return &ValidationError{Field: "coordinates", Reason: "is required for " + string(a.Type) + " alerts"}
		}
		if !a.Coordinates.Valid() {
			return ErrInvalidCoordinate
		}
	} else if a.Coordinates != nil && !a.Coordinates.Valid() {
		return ErrInvalidCoordinate
	}
	return nil
}

// CanTransitionTo reports whether the alert may move to the given status.
// Allowed: pending → acknowledged → resolved, plus pending → resolved for
// false-alarm dismissal. Resolved is terminal.
func (a *SafetyAlert) CanTransitionTo(to AlertStatus) bool {
	switch a.Status {
	case AlertPending:
		return to == AlertAcknowledged || to == AlertResolved
	case AlertAcknowledged:
		return to == AlertResolved
	}
	return false
}

// LocationSample is one reading in a traveler's location time series.
type LocationSample struct {
	ID         string    `json:"id,omitempty"`
	TravelerID string    `json:"traveler_id"`
	Point      GeoPoint  `json:"point"`
	Time       time.Time `json:"time"`
	Accuracy   *float64  `json:"accuracy,omitempty"` // meters
	SpeedMPS   *float64  `json:"speed_mps,omitempty"`
	Battery    *float64  `json:"battery,omitempty"` // 0..100
}

// Responder is an emergency-response entity (police station, ranger post, ...).
type Responder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Location  GeoPoint  `json:"location"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ResponderMatch is a nearest-responder lookup result.
type ResponderMatch struct {
	Responder      Responder `json:"responder"`
	DistanceMeters float64   `json:"distance_meters"`
}

// TravelerProfile carries the contact and opt-in settings owned by the
// out-of-scope account system. Read-only to this core.
type TravelerProfile struct {
	TravelerID            string `json:"traveler_id"`
	Name                  string `json:"name"`
	PhoneNumber           string `json:"phone_number,omitempty"`
	EmergencyContactEmail string `json:"emergency_contact_email,omitempty"`
	EmergencyContactPhone string `json:"emergency_contact_phone,omitempty"`
	TrackingEnabled       bool   `json:"is_real_time_tracking_enabled"`
}

// EmergencyChannel returns the configured channel and destination for SOS
// notifications, preferring email over SMS like the original profile setup.
func (p *TravelerProfile) EmergencyChannel() (channel, destination string, ok bool) {
	if p.EmergencyContactEmail != "" {
		return "email", p.EmergencyContactEmail, true
	}
	if p.EmergencyContactPhone != "" {
		return "sms", p.EmergencyContactPhone, true
	}
	return "", "", false
}
