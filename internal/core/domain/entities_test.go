package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/domain"
)

func TestTransition_EmergencyForcesCriticalPriority(t *testing.T) {
	now := time.Now().UTC()
	s := domain.NewTravelerSafetyStatus("t-1", now)
	if s.PriorityLevel != domain.PriorityNormal {
		t.Fatalf("expected normal default priority, got %s", s.PriorityLevel)
	}

	later := now.Add(time.Minute)
	s.Transition(domain.StateEmergency, later)

	if s.CurrentStatus != domain.StateEmergency {
		t.Errorf("expected emergency, got %s", s.CurrentStatus)
	}
	if s.PriorityLevel != domain.PriorityCritical {
		t.Errorf("emergency must force critical priority, got %s", s.PriorityLevel)
	}
	if !s.StatusChangedAt.Equal(later) {
		t.Errorf("status_changed_at not stamped: %v", s.StatusChangedAt)
	}
}

func TestTransition_LeavingEmergencyKeepsPriority(t *testing.T) {
	now := time.Now().UTC()
	s := domain.NewTravelerSafetyStatus("t-1", now)
	s.Transition(domain.StateEmergency, now)
	s.Transition(domain.StateActive, now.Add(time.Minute))

	// The engine downgrades priority explicitly after the last resolve;
	// the transition itself leaves it alone.
	if s.PriorityLevel != domain.PriorityCritical {
		t.Errorf("transition must not silently downgrade priority, got %s", s.PriorityLevel)
	}
}

func TestAlertValidate(t *testing.T) {
	valid := domain.GeoPoint{Lat: 26.14, Lon: 91.73}
	invalid := domain.GeoPoint{Lat: 120, Lon: 91.73}

	tests := []struct {
		name    string
		alert   domain.SafetyAlert
		wantErr bool
		errIs   error
	}{
		{
			name:  "panic with coordinates",
			alert: domain.SafetyAlert{TravelerID: "t-1", Type: domain.AlertPanic, Coordinates: &valid},
		},
		{
			name:    "panic without coordinates",
			alert:   domain.SafetyAlert{TravelerID: "t-1", Type: domain.AlertPanic},
			wantErr: true,
		},
		{
			name:    "panic with out-of-range coordinates",
			alert:   domain.SafetyAlert{TravelerID: "t-1", Type: domain.AlertPanic, Coordinates: &invalid},
			wantErr: true,
			errIs:   domain.ErrInvalidCoordinate,
		},
		{
			name:  "missed checkin without coordinates",
			alert: domain.SafetyAlert{TravelerID: "t-1", Type: domain.AlertMissedCheckin},
		},
		{
			name:    "missed checkin with bad coordinates",
			alert:   domain.SafetyAlert{TravelerID: "t-1", Type: domain.AlertMissedCheckin, Coordinates: &invalid},
			wantErr: true,
			errIs:   domain.ErrInvalidCoordinate,
		},
		{
			name:    "missing traveler id",
			alert:   domain.SafetyAlert{Type: domain.AlertPanic, Coordinates: &valid},
			wantErr: true,
		},
		{
			name:    "unknown type",
			alert:   domain.SafetyAlert{TravelerID: "t-1", Type: "tsunami"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.alert.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.errIs != nil && !errors.Is(err, tt.errIs) {
				t.Errorf("expected %v, got %v", tt.errIs, err)
			}
		})
	}
}

func TestAlertCanTransitionTo(t *testing.T) {
	tests := []struct {
		from domain.AlertStatus
		to   domain.AlertStatus
		ok   bool
	}{
		{domain.AlertPending, domain.AlertAcknowledged, true},
		{domain.AlertPending, domain.AlertResolved, true},
		{domain.AlertAcknowledged, domain.AlertResolved, true},
		{domain.AlertAcknowledged, domain.AlertPending, false},
		{domain.AlertResolved, domain.AlertPending, false},
		{domain.AlertResolved, domain.AlertAcknowledged, false},
	}

	for _, tt := range tests {
		a := domain.SafetyAlert{Status: tt.from}
		if got := a.CanTransitionTo(tt.to); got != tt.ok {
			t.Errorf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.ok, got)
		}
	}
}

func TestEmergencyChannel_PrefersEmail(t *testing.T) {
	p := domain.TravelerProfile{
		EmergencyContactEmail: "family@example.com",
		EmergencyContactPhone: "+91-98000-00000",
	}
	channel, dest, ok := p.EmergencyChannel()
	if !ok || channel != "email" || dest != "family@example.com" {
		t.Errorf("expected email channel, got %s %s %v", channel, dest, ok)
	}

	p.EmergencyContactEmail = ""
	channel, dest, ok = p.EmergencyChannel()
	if !ok || channel != "sms" || dest != "+91-98000-00000" {
		t.Errorf("expected sms fallback, got %s %s %v", channel, dest, ok)
	}

	p.EmergencyContactPhone = ""
	if _, _, ok := p.EmergencyChannel(); ok {
		t.Error("expected no channel when nothing is configured")
	}
}
