package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/domain"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/usecases"
)

// --- Mock ResponderRepository ---

type mockResponderRepo struct {
	listActiveFn func(ctx context.Context) ([]domain.Responder, error)
	calls        int
}

func (m *mockResponderRepo) ListActive(ctx context.Context) ([]domain.Responder, error) {
	m.calls++
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx)
	}
	return nil, nil
}

func (m *mockResponderRepo) GetByID(ctx context.Context, id string) (*domain.Responder, error) {
	return nil, domain.ErrNotFound
}

// --- Mock CacheService ---

type mockCache struct {
	store map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{store: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.store[key]; ok {
		return v, nil
	}
	return nil, errors.New("miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.store[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.store, key)
	return nil
}

// --- Tests ---

func TestNearest_PicksClosestResponder(t *testing.T) {
	repo := &mockResponderRepo{
		listActiveFn: func(ctx context.Context) ([]domain.Responder, error) {
			return []domain.Responder{
				{ID: "resp-001", Name: "Far Station", Location: domain.GeoPoint{Lat: 27.0, Lon: 92.0}},
				{ID: "resp-002", Name: "Near Station", Location: domain.GeoPoint{Lat: 26.15, Lon: 91.74}},
			}, nil
		},
	}

	svc := usecases.NewResponderService(repo, nil, 0)

	match, err := svc.Nearest(context.Background(), domain.GeoPoint{Lat: 26.14, Lon: 91.73})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match.Responder.ID != "resp-002" {
		t.Errorf("expected resp-002, got %s", match.Responder.ID)
	}
	if match.DistanceMeters <= 0 {
		t.Errorf("expected positive distance, got %f", match.DistanceMeters)
	}
}

func TestNearest_TieBreaksOnLowestID(t *testing.T) {
	// Two responders at the identical position; the lower ID must win
	// regardless of roster order.
	pos := domain.GeoPoint{Lat: 26.15, Lon: 91.74}
	repo := &mockResponderRepo{
		listActiveFn: func(ctx context.Context) ([]domain.Responder, error) {
			return []domain.Responder{
				{ID: "resp-009", Location: pos},
				{ID: "resp-002", Location: pos},
			}, nil
		},
	}

	svc := usecases.NewResponderService(repo, nil, 0)

	match, err := svc.Nearest(context.Background(), domain.GeoPoint{Lat: 26.14, Lon: 91.73})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match.Responder.ID != "resp-002" {
		t.Errorf("expected tie broken to resp-002, got %s", match.Responder.ID)
	}
}

func TestNearest_EmptyRoster(t *testing.T) {
	svc := usecases.NewResponderService(&mockResponderRepo{}, nil, 0)

	_, err := svc.Nearest(context.Background(), domain.GeoPoint{Lat: 26.14, Lon: 91.73})
	if !errors.Is(err, domain.ErrNoResponderAvailable) {
		t.Fatalf("expected ErrNoResponderAvailable, got %v", err)
	}
}

func TestNearest_InvalidPoint(t *testing.T) {
	repo := &mockResponderRepo{
		listActiveFn: func(ctx context.Context) ([]domain.Responder, error) {
			t.Fatal("roster must not be read for an invalid point")
			return nil, nil
		},
	}
	svc := usecases.NewResponderService(repo, nil, 0)

	_, err := svc.Nearest(context.Background(), domain.GeoPoint{Lat: 26.14, Lon: 200})
	if !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestNearest_UsesCachedRoster(t *testing.T) {
	repo := &mockResponderRepo{
		listActiveFn: func(ctx context.Context) ([]domain.Responder, error) {
			return []domain.Responder{
				{ID: "resp-001", Location: domain.GeoPoint{Lat: 26.15, Lon: 91.74}},
			}, nil
		},
	}
	cache := newMockCache()

	svc := usecases.NewResponderService(repo, cache, 300)

	p := domain.GeoPoint{Lat: 26.14, Lon: 91.73}
	if _, err := svc.Nearest(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Nearest(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.calls != 1 {
		t.Errorf("expected one roster load, got %d", repo.calls)
	}

	var cached []domain.Responder
	data, err := cache.Get(context.Background(), "responders:roster")
	if err != nil {
		t.Fatal("roster was not cached")
	}
	if err := json.Unmarshal(data, &cached); err != nil || len(cached) != 1 {
		t.Errorf("cached roster malformed: %v", err)
	}
}
