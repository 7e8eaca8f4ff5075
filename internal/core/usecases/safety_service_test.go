package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/domain"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/usecases"
)

// --- Mock StatusRepository ---

type mockStatusRepo struct {
	getFn         func(ctx context.Context, travelerID string) (*domain.TravelerSafetyStatus, error)
	listOverdueFn func(ctx context.Context, now time.Time, limit int) ([]domain.TravelerSafetyStatus, error)
}

func (m *mockStatusRepo) Get(ctx context.Context, travelerID string) (*domain.TravelerSafetyStatus, error) {
	if m.getFn != nil {
		return m.getFn(ctx, travelerID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStatusRepo) ListOverdue(ctx context.Context, now time.Time, limit int) ([]domain.TravelerSafetyStatus, error) {
	if m.listOverdueFn != nil {
		return m.listOverdueFn(ctx, now, limit)
	}
	return nil, nil
}

// --- Mock AlertRepository ---

type mockAlertRepo struct {
	appendFn       func(ctx context.Context, alert *domain.SafetyAlert) (string, error)
	getByIDFn      func(ctx context.Context, id string) (*domain.SafetyAlert, error)
	listFn         func(ctx context.Context, travelerID string, since time.Time) ([]domain.SafetyAlert, error)
	countAllFn     func(ctx context.Context, travelerID string) (int, error)
	countPendingFn func(ctx context.Context, travelerID string) (int, error)
	acknowledgeFn  func(ctx context.Context, id, responderID string) error
	resolveFn      func(ctx context.Context, id, notes string) error
}

func (m *mockAlertRepo) Append(ctx context.Context, alert *domain.SafetyAlert) (string, error) {
	if m.appendFn != nil {
		return m.appendFn(ctx, alert)
	}
	return "alert-1", nil
}

func (m *mockAlertRepo) GetByID(ctx context.Context, id string) (*domain.SafetyAlert, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockAlertRepo) ListByTraveler(ctx context.Context, travelerID string, since time.Time) ([]domain.SafetyAlert, error) {
	if m.listFn != nil {
		return m.listFn(ctx, travelerID, since)
	}
	return nil, nil
}

func (m *mockAlertRepo) CountByTraveler(ctx context.Context, travelerID string) (int, error) {
	if m.countAllFn != nil {
		return m.countAllFn(ctx, travelerID)
	}
	return 0, nil
}

func (m *mockAlertRepo) CountPending(ctx context.Context, travelerID string) (int, error) {
	if m.countPendingFn != nil {
		return m.countPendingFn(ctx, travelerID)
	}
	return 0, nil
}

func (m *mockAlertRepo) Acknowledge(ctx context.Context, id, responderID string) error {
	if m.acknowledgeFn != nil {
		return m.acknowledgeFn(ctx, id, responderID)
	}
	return nil
}

func (m *mockAlertRepo) Resolve(ctx context.Context, id, notes string) error {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, id, notes)
	}
	return nil
}

// --- Mock SafetyUnitOfWork ---

// mockUnitOfWork keeps status records in memory and, like the real store,
// holds a lock across the whole load-mutate-persist cycle.
type mockUnitOfWork struct {
	mu        sync.Mutex
	store     map[string]*domain.TravelerSafetyStatus
	alerts    []domain.SafetyAlert
	mutations int
	failErr   error
}

func newMockUOW() *mockUnitOfWork {
	return &mockUnitOfWork{store: make(map[string]*domain.TravelerSafetyStatus)}
}

func (m *mockUnitOfWork) MutateStatus(ctx context.Context, travelerID string, now time.Time, fn func(status *domain.TravelerSafetyStatus) (*domain.SafetyAlert, error)) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failErr != nil {
		return "", m.failErr
	}
	status, ok := m.store[travelerID]
	if !ok {
		status = domain.NewTravelerSafetyStatus(travelerID, now)
	}
	alert, err := fn(status)
	if err != nil {
		return "", err
	}
	m.mutations++
	m.store[travelerID] = status
	if alert == nil {
		return "", nil
	}
	m.alerts = append(m.alerts, *alert)
	return fmt.Sprintf("alert-%d", len(m.alerts)), nil
}

// --- Mock LocationRepository ---

type mockLocationRepo struct {
	insertFn func(ctx context.Context, sample *domain.LocationSample) error
	listFn   func(ctx context.Context, travelerID string, limit int) ([]domain.LocationSample, error)
}

func (m *mockLocationRepo) Insert(ctx context.Context, sample *domain.LocationSample) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, sample)
	}
	return nil
}

func (m *mockLocationRepo) ListByTraveler(ctx context.Context, travelerID string, limit int) ([]domain.LocationSample, error) {
	if m.listFn != nil {
		return m.listFn(ctx, travelerID, limit)
	}
	return nil, nil
}

// --- Mock ProfileRepository ---

type mockProfileRepo struct {
	getFn func(ctx context.Context, travelerID string) (*domain.TravelerProfile, error)
}

func (m *mockProfileRepo) Get(ctx context.Context, travelerID string) (*domain.TravelerProfile, error) {
	if m.getFn != nil {
		return m.getFn(ctx, travelerID)
	}
	return &domain.TravelerProfile{
		TravelerID:            travelerID,
		Name:                  "Asha Rao",
		PhoneNumber:           "+91-98000-00000",
		EmergencyContactEmail: "family@example.com",
		TrackingEnabled:       true,
	}, nil
}

// --- Mock ResponderDirectory ---

type mockDirectory struct {
	nearestFn func(ctx context.Context, p domain.GeoPoint) (*domain.ResponderMatch, error)
}

func (m *mockDirectory) Nearest(ctx context.Context, p domain.GeoPoint) (*domain.ResponderMatch, error) {
	if m.nearestFn != nil {
		return m.nearestFn(ctx, p)
	}
	return &domain.ResponderMatch{
		Responder:      domain.Responder{ID: "resp-001", Name: "Central Police Station"},
		DistanceMeters: 850,
	}, nil
}

// --- Mock NotificationDispatcher ---

type mockDispatcher struct {
	sendFn func(ctx context.Context, channel, destination, subject, body string) error
	sends  int
}

func (m *mockDispatcher) Send(ctx context.Context, channel, destination, subject, body string) error {
	m.sends++
	if m.sendFn != nil {
		return m.sendFn(ctx, channel, destination, subject, body)
	}
	return nil
}

func newEngine(statuses *mockStatusRepo, alerts *mockAlertRepo, uow *mockUnitOfWork,
	locations *mockLocationRepo, profiles *mockProfileRepo,
	directory *mockDirectory, dispatcher *mockDispatcher) *usecases.SafetyService {
	return usecases.NewSafetyService(
		statuses, alerts, uow, locations, profiles, directory, dispatcher, nil, nil,
		usecases.SafetyConfig{MissedCheckinThreshold: 3, CheckinInterval: 6 * time.Hour},
	)
}

// --- TriggerPanic ---

func TestTriggerPanic_CommitsEmergencyBeforeNotifying(t *testing.T) {
	uow := newMockUOW()
	dispatcher := &mockDispatcher{}
	dispatcher.sendFn = func(ctx context.Context, channel, destination, subject, body string) error {
		if len(uow.alerts) != 1 {
			t.Error("notification sent before the alert was committed")
		}
		return nil
	}

	svc := newEngine(&mockStatusRepo{}, &mockAlertRepo{}, uow, &mockLocationRepo{}, &mockProfileRepo{}, &mockDirectory{}, dispatcher)

	point := &domain.GeoPoint{Lat: 26.14, Lon: 91.73}
	res, err := svc.TriggerPanic(context.Background(), "t-1", point)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AlertID != "alert-1" {
		t.Errorf("expected alert-1, got %s", res.AlertID)
	}

	committed := uow.store["t-1"]
	if committed == nil {
		t.Fatal("status was not committed")
	}
	if committed.CurrentStatus != domain.StateEmergency {
		t.Errorf("expected emergency, got %s", committed.CurrentStatus)
	}
	if committed.PriorityLevel != domain.PriorityCritical {
		t.Errorf("expected critical priority, got %s", committed.PriorityLevel)
	}
	if len(uow.alerts) != 1 || uow.alerts[0].Type != domain.AlertPanic {
		t.Fatalf("expected one panic alert, got %+v", uow.alerts)
	}
	if uow.alerts[0].Severity != domain.SeverityCritical {
		t.Errorf("expected critical severity, got %s", uow.alerts[0].Severity)
	}
	if dispatcher.sends != 1 {
		t.Errorf("expected exactly one send attempt, got %d", dispatcher.sends)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
}

func TestTriggerPanic_NotifierFailureIsWarningNotError(t *testing.T) {
	dispatcher := &mockDispatcher{
		sendFn: func(ctx context.Context, channel, destination, subject, body string) error {
			return errors.New("smtp gateway down")
		},
	}

	svc := newEngine(&mockStatusRepo{}, &mockAlertRepo{}, newMockUOW(), &mockLocationRepo{}, &mockProfileRepo{}, &mockDirectory{}, dispatcher)

	res, err := svc.TriggerPanic(context.Background(), "t-1", &domain.GeoPoint{Lat: 26.14, Lon: 91.73})
	if err != nil {
		t.Fatalf("panic must succeed despite notifier failure, got: %v", err)
	}
	if res.Status.CurrentStatus != domain.StateEmergency {
		t.Errorf("expected emergency, got %s", res.Status.CurrentStatus)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(res.Warnings))
	}
	var de *domain.DeliveryError
	if !errors.As(res.Warnings[0], &de) {
		t.Errorf("expected DeliveryError warning, got %T", res.Warnings[0])
	}
	if dispatcher.sends != 1 {
		t.Errorf("expected exactly one send attempt, got %d", dispatcher.sends)
	}
}

func TestTriggerPanic_NoEmergencyContactConfigured(t *testing.T) {
	profiles := &mockProfileRepo{
		getFn: func(ctx context.Context, travelerID string) (*domain.TravelerProfile, error) {
			return &domain.TravelerProfile{TravelerID: travelerID, Name: "Asha Rao", TrackingEnabled: true}, nil
		},
	}
	dispatcher := &mockDispatcher{}

	svc := newEngine(&mockStatusRepo{}, &mockAlertRepo{}, newMockUOW(), &mockLocationRepo{}, profiles, &mockDirectory{}, dispatcher)

	res, err := svc.TriggerPanic(context.Background(), "t-1", &domain.GeoPoint{Lat: 26.14, Lon: 91.73})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dispatcher.sends != 0 {
		t.Errorf("expected no send attempt, got %d", dispatcher.sends)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(res.Warnings))
	}
}

func TestTriggerPanic_NoCoordinateFallsBackToLastKnown(t *testing.T) {
	uow := newMockUOW()
	existing := domain.NewTravelerSafetyStatus("t-1", time.Now().Add(-time.Hour))
	existing.LastLocation = &domain.LastLocation{Point: domain.GeoPoint{Lat: 26.11, Lon: 91.70}, Time: time.Now()}
	uow.store["t-1"] = existing

	svc := newEngine(&mockStatusRepo{}, &mockAlertRepo{}, uow, &mockLocationRepo{}, &mockProfileRepo{}, &mockDirectory{}, &mockDispatcher{})

	if _, err := svc.TriggerPanic(context.Background(), "t-1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(uow.alerts) != 1 {
		t.Fatal("alert was not committed")
	}
	coords := uow.alerts[0].Coordinates
	if coords == nil {
		t.Fatal("alert committed without coordinates")
	}
	if coords.Lat != 26.11 || coords.Lon != 91.70 {
		t.Errorf("expected last known position, got %+v", coords)
	}
}

func TestTriggerPanic_InvalidCoordinateRejected(t *testing.T) {
	uow := newMockUOW()
	svc := newEngine(&mockStatusRepo{}, &mockAlertRepo{}, uow, &mockLocationRepo{}, &mockProfileRepo{}, &mockDirectory{}, &mockDispatcher{})

	_, err := svc.TriggerPanic(context.Background(), "t-1", &domain.GeoPoint{Lat: 95, Lon: 0})
	if !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
	if uow.mutations != 0 || len(uow.alerts) != 0 {
		t.Error("nothing may be committed for an invalid coordinate")
	}
}

// --- ReportLocation ---

func TestReportLocation_TrackingDisabledMutatesNothing(t *testing.T) {
	profiles := &mockProfileRepo{
		getFn: func(ctx context.Context, travelerID string) (*domain.TravelerProfile, error) {
			return &domain.TravelerProfile{TravelerID: travelerID, Name: "Asha Rao", TrackingEnabled: false}, nil
		},
	}
	locations := &mockLocationRepo{
		insertFn: func(ctx context.Context, sample *domain.LocationSample) error {
			t.Fatal("sample must not be inserted when tracking is disabled")
			return nil
		},
	}
	uow := newMockUOW()

	svc := newEngine(&mockStatusRepo{}, &mockAlertRepo{}, uow, locations, profiles, &mockDirectory{}, &mockDispatcher{})

	err := svc.ReportLocation(context.Background(), "t-1", &domain.LocationSample{Point: domain.GeoPoint{Lat: 26.14, Lon: 91.73}})
	if !errors.Is(err, domain.ErrTrackingDisabled) {
		t.Fatalf("expected ErrTrackingDisabled, got %v", err)
	}
	if uow.mutations != 0 {
		t.Error("status must not be written when tracking is disabled")
	}
}

func TestReportLocation_MissingTravelerReturnsToActive(t *testing.T) {
	uow := newMockUOW()
	existing := domain.NewTravelerSafetyStatus("t-1", time.Now().Add(-time.Hour))
	existing.CurrentStatus = domain.StateMissing
	existing.MissedCheckins = 3
	uow.store["t-1"] = existing

	svc := newEngine(&mockStatusRepo{}, &mockAlertRepo{}, uow, &mockLocationRepo{}, &mockProfileRepo{}, &mockDirectory{}, &mockDispatcher{})

	err := svc.ReportLocation(context.Background(), "t-1", &domain.LocationSample{Point: domain.GeoPoint{Lat: 26.14, Lon: 91.73}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	saved := uow.store["t-1"]
	if saved.CurrentStatus != domain.StateActive {
		t.Errorf("expected active, got %s", saved.CurrentStatus)
	}
	if saved.MissedCheckins != 0 {
		t.Errorf("expected counter reset, got %d", saved.MissedCheckins)
	}
	if saved.LastLocation == nil {
		t.Error("last location was not updated")
	}
}

func TestReportLocation_EmergencyStateIsSticky(t *testing.T) {
	uow := newMockUOW()
	existing := domain.NewTravelerSafetyStatus("t-1", time.Now().Add(-time.Hour))
	existing.Transition(domain.StateEmergency, time.Now().Add(-time.Minute))
	uow.store["t-1"] = existing

	svc := newEngine(&mockStatusRepo{}, &mockAlertRepo{}, uow, &mockLocationRepo{}, &mockProfileRepo{}, &mockDirectory{}, &mockDispatcher{})

	err := svc.ReportLocation(context.Background(), "t-1", &domain.LocationSample{Point: domain.GeoPoint{Lat: 26.14, Lon: 91.73}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uow.store["t-1"].CurrentStatus != domain.StateEmergency {
		t.Errorf("location update must not clear an emergency, got %s", uow.store["t-1"].CurrentStatus)
	}
}

// --- ReportMissedCheckin ---

func TestReportMissedCheckin_ThresholdRaisesOneAlert(t *testing.T) {
	uow := newMockUOW()
	svc := newEngine(&mockStatusRepo{}, &mockAlertRepo{}, uow, &mockLocationRepo{}, &mockProfileRepo{}, &mockDirectory{}, &mockDispatcher{})

	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		res, err := svc.ReportMissedCheckin(ctx, "t-1")
		if err != nil {
			t.Fatalf("miss %d: unexpected error: %v", i, err)
		}
		if res.MissedCheckins != i {
			t.Errorf("miss %d: expected counter %d, got %d", i, i, res.MissedCheckins)
		}
		switch {
		case i < 3:
			if res.AlertID != "" {
				t.Errorf("miss %d: no alert expected below threshold", i)
			}
			if res.Status.CurrentStatus != domain.StateActive {
				t.Errorf("miss %d: expected active, got %s", i, res.Status.CurrentStatus)
			}
		case i == 3:
			if res.AlertID == "" {
				t.Errorf("miss 3: expected alert at threshold")
			}
			if res.Status.CurrentStatus != domain.StateMissing {
				t.Errorf("miss 3: expected missing, got %s", res.Status.CurrentStatus)
			}
		default:
			if res.AlertID != "" {
				t.Errorf("miss %d: threshold alert must fire only once", i)
			}
		}
	}

	if len(uow.alerts) != 1 {
		t.Fatalf("expected exactly 1 missed_checkin alert, got %d", len(uow.alerts))
	}
	if uow.alerts[0].Type != domain.AlertMissedCheckin {
		t.Errorf("expected missed_checkin alert, got %s", uow.alerts[0].Type)
	}
}

func TestReportMissedCheckin_EmergencyInterludeStillMarksMissing(t *testing.T) {
	// Misses that pile up past the threshold while the traveler is in
	// emergency must still mark them missing on the first miss after the
	// emergency clears, even though the counter never equals the threshold
	// exactly at that moment.
	uow := newMockUOW()
	alerts := &mockAlertRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.SafetyAlert, error) {
			return &domain.SafetyAlert{ID: id, TravelerID: "t-1", Type: domain.AlertPanic, Status: domain.AlertPending}, nil
		},
	}

	svc := newEngine(&mockStatusRepo{}, alerts, uow, &mockLocationRepo{}, &mockProfileRepo{}, &mockDirectory{}, &mockDispatcher{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.ReportMissedCheckin(ctx, "t-1"); err != nil {
			t.Fatalf("miss: %v", err)
		}
	}

	panicRes, err := svc.TriggerPanic(ctx, "t-1", &domain.GeoPoint{Lat: 26.14, Lon: 91.73})
	if err != nil {
		t.Fatalf("panic: %v", err)
	}

	// The third miss lands during the emergency: counted, no transition.
	res, err := svc.ReportMissedCheckin(ctx, "t-1")
	if err != nil {
		t.Fatalf("miss during emergency: %v", err)
	}
	if res.MissedCheckins != 3 {
		t.Fatalf("expected counter 3, got %d", res.MissedCheckins)
	}
	if res.Status.CurrentStatus != domain.StateEmergency {
		t.Fatalf("expected emergency to hold, got %s", res.Status.CurrentStatus)
	}
	if res.AlertID != "" {
		t.Error("no missed_checkin alert may fire during an emergency")
	}

	if err := svc.ResolveAlert(ctx, panicRes.AlertID, "found safe"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := uow.store["t-1"].CurrentStatus; got != domain.StateActive {
		t.Fatalf("expected active after resolve, got %s", got)
	}

	res, err = svc.ReportMissedCheckin(ctx, "t-1")
	if err != nil {
		t.Fatalf("miss after resolve: %v", err)
	}
	if res.Status.CurrentStatus != domain.StateMissing {
		t.Errorf("expected missing after resuming misses past threshold, got %s", res.Status.CurrentStatus)
	}
	if res.AlertID == "" {
		t.Error("expected a missed_checkin alert after resuming misses")
	}
	if last := uow.alerts[len(uow.alerts)-1]; last.Type != domain.AlertMissedCheckin {
		t.Errorf("expected missed_checkin alert, got %s", last.Type)
	}
}

func TestReportMissedCheckin_ConcurrentMissesAllCounted(t *testing.T) {
	uow := newMockUOW()
	svc := newEngine(&mockStatusRepo{}, &mockAlertRepo{}, uow, &mockLocationRepo{}, &mockProfileRepo{}, &mockDirectory{}, &mockDispatcher{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.ReportMissedCheckin(context.Background(), "t-1"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if got := uow.store["t-1"].MissedCheckins; got != 8 {
		t.Errorf("expected 8 counted misses, got %d", got)
	}
	if len(uow.alerts) != 1 {
		t.Errorf("expected exactly one missing alert, got %d", len(uow.alerts))
	}
}

// --- Checkin ---

func TestCheckin_ResetsCounterAndRevives(t *testing.T) {
	uow := newMockUOW()
	existing := domain.NewTravelerSafetyStatus("t-1", time.Now().Add(-24*time.Hour))
	existing.CurrentStatus = domain.StateMissing
	existing.MissedCheckins = 4
	uow.store["t-1"] = existing

	svc := newEngine(&mockStatusRepo{}, &mockAlertRepo{}, uow, &mockLocationRepo{}, &mockProfileRepo{}, &mockDirectory{}, &mockDispatcher{})

	status, err := svc.Checkin(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.MissedCheckins != 0 {
		t.Errorf("expected counter reset, got %d", status.MissedCheckins)
	}
	if status.CurrentStatus != domain.StateActive {
		t.Errorf("expected active, got %s", status.CurrentStatus)
	}
	if status.ExpectedCheckinAt == nil || !status.ExpectedCheckinAt.After(time.Now()) {
		t.Error("expected next check-in deadline in the future")
	}
}

// --- ResolveAlert ---

func TestResolveAlert_LastPendingClearsEmergency(t *testing.T) {
	alerts := &mockAlertRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.SafetyAlert, error) {
			return &domain.SafetyAlert{ID: id, TravelerID: "t-1", Type: domain.AlertPanic, Status: domain.AlertPending}, nil
		},
		countPendingFn: func(ctx context.Context, travelerID string) (int, error) {
			return 0, nil // the resolve cleared the last one
		},
	}
	uow := newMockUOW()
	existing := domain.NewTravelerSafetyStatus("t-1", time.Now().Add(-time.Hour))
	existing.Transition(domain.StateEmergency, time.Now().Add(-time.Minute))
	uow.store["t-1"] = existing

	svc := newEngine(&mockStatusRepo{}, alerts, uow, &mockLocationRepo{}, &mockProfileRepo{}, &mockDirectory{}, &mockDispatcher{})

	if err := svc.ResolveAlert(context.Background(), "alert-1", "false alarm"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	saved := uow.store["t-1"]
	if saved.CurrentStatus != domain.StateActive {
		t.Errorf("expected active after last resolve, got %s", saved.CurrentStatus)
	}
	if saved.PriorityLevel != domain.PriorityNormal {
		t.Errorf("expected priority back to normal, got %s", saved.PriorityLevel)
	}
}

func TestResolveAlert_OtherPendingKeepsEmergency(t *testing.T) {
	alerts := &mockAlertRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.SafetyAlert, error) {
			return &domain.SafetyAlert{ID: id, TravelerID: "t-1", Type: domain.AlertPanic, Status: domain.AlertPending}, nil
		},
		countPendingFn: func(ctx context.Context, travelerID string) (int, error) {
			return 1, nil
		},
	}
	uow := newMockUOW()

	svc := newEngine(&mockStatusRepo{}, alerts, uow, &mockLocationRepo{}, &mockProfileRepo{}, &mockDirectory{}, &mockDispatcher{})

	if err := svc.ResolveAlert(context.Background(), "alert-1", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uow.mutations != 0 {
		t.Error("status must not change while other alerts are pending")
	}
}

func TestResolveAlert_UnknownAlert(t *testing.T) {
	svc := newEngine(&mockStatusRepo{}, &mockAlertRepo{}, newMockUOW(), &mockLocationRepo{}, &mockProfileRepo{}, &mockDirectory{}, &mockDispatcher{})

	err := svc.ResolveAlert(context.Background(), "nope", "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// --- AcknowledgeAlert ---

func TestAcknowledgeAlert_AssignsResponderToStatus(t *testing.T) {
	alerts := &mockAlertRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.SafetyAlert, error) {
			return &domain.SafetyAlert{ID: id, TravelerID: "t-1", Type: domain.AlertPanic, Status: domain.AlertPending}, nil
		},
	}
	uow := newMockUOW()

	svc := newEngine(&mockStatusRepo{}, alerts, uow, &mockLocationRepo{}, &mockProfileRepo{}, &mockDirectory{}, &mockDispatcher{})

	if err := svc.AcknowledgeAlert(context.Background(), "alert-1", "resp-002"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	saved := uow.store["t-1"]
	if saved == nil || saved.AssignedResponder != "resp-002" {
		t.Errorf("expected responder assigned on status, got %+v", saved)
	}
}

// --- GetDashboard ---

func TestGetDashboard_UnknownTravelerGetsDefaults(t *testing.T) {
	svc := newEngine(&mockStatusRepo{}, &mockAlertRepo{}, newMockUOW(), &mockLocationRepo{}, &mockProfileRepo{}, &mockDirectory{}, &mockDispatcher{})

	dash, err := svc.GetDashboard(context.Background(), "t-new")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dash.Status.CurrentStatus != domain.StateActive {
		t.Errorf("expected default active state, got %s", dash.Status.CurrentStatus)
	}
	if dash.Status.PriorityLevel != domain.PriorityNormal {
		t.Errorf("expected default normal priority, got %s", dash.Status.PriorityLevel)
	}
	if dash.TotalAlerts != 0 || dash.PendingAlerts != 0 {
		t.Errorf("expected zero alert counts, got total=%d pending=%d", dash.TotalAlerts, dash.PendingAlerts)
	}
}

func TestGetDashboard_AlertCounts(t *testing.T) {
	history := make([]domain.SafetyAlert, 12)
	for i := range history {
		history[i] = domain.SafetyAlert{ID: fmt.Sprintf("alert-%d", i), TravelerID: "t-1", Type: domain.AlertMissedCheckin}
	}
	alerts := &mockAlertRepo{
		listFn: func(ctx context.Context, travelerID string, since time.Time) ([]domain.SafetyAlert, error) {
			return history, nil
		},
		countAllFn: func(ctx context.Context, travelerID string) (int, error) {
			return len(history), nil
		},
		countPendingFn: func(ctx context.Context, travelerID string) (int, error) {
			return 2, nil
		},
	}

	svc := newEngine(&mockStatusRepo{}, alerts, newMockUOW(), &mockLocationRepo{}, &mockProfileRepo{}, &mockDirectory{}, &mockDispatcher{})

	dash, err := svc.GetDashboard(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dash.RecentAlerts) != 10 {
		t.Errorf("expected the recent list capped at 10, got %d", len(dash.RecentAlerts))
	}
	if dash.TotalAlerts != 12 {
		t.Errorf("expected total 12, got %d", dash.TotalAlerts)
	}
	if dash.PendingAlerts != 2 {
		t.Errorf("expected 2 pending, got %d", dash.PendingAlerts)
	}
}
