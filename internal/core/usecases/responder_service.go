package usecases

import (
	"context"
	"encoding/json"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/domain"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/ports"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/pkg/geospatial"
)

const rosterCacheKey = "responders:roster"

// ResponderService implements ports.ResponderDirectory over the persisted
// roster, computing distances in-process. The roster is small and changes
// rarely, so it is cached whole.
type ResponderService struct {
	responders ports.ResponderRepository
	cache      ports.CacheService
	cacheTTL   int // seconds
}

// NewResponderService creates a new ResponderService. cache may be nil.
func NewResponderService(responders ports.ResponderRepository, cache ports.CacheService, cacheTTLSeconds int) *ResponderService {
	if cacheTTLSeconds <= 0 {
		cacheTTLSeconds = 300
	}
	return &ResponderService{responders: responders, cache: cache, cacheTTL: cacheTTLSeconds}
}

func (s *ResponderService) roster(ctx context.Context) ([]domain.Responder, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, rosterCacheKey); err == nil {
			var cached []domain.Responder
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	roster, err := s.responders.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(roster); err == nil {
			_ = s.cache.Set(ctx, rosterCacheKey, data, s.cacheTTL)
		}
	}
	return roster, nil
}

// Nearest returns the closest active responder to p. Ties break toward the
// lowest responder ID so repeated lookups are deterministic.
func (s *ResponderService) Nearest(ctx context.Context, p domain.GeoPoint) (*domain.ResponderMatch, error) {
	if !p.Valid() {
		return nil, domain.ErrInvalidCoordinate
	}

	roster, err := s.roster(ctx)
	if err != nil {
		return nil, err
	}
	if len(roster) == 0 {
		return nil, domain.ErrNoResponderAvailable
	}

	var best *domain.ResponderMatch
	for _, r := range roster {
		d, err := geospatial.Distance(p, r.Location)
		if err != nil {
			continue // skip malformed roster entries
		}
		switch {
		case best == nil,
			d < best.DistanceMeters,
			d == best.DistanceMeters && r.ID < best.Responder.ID:
			best = &domain.ResponderMatch{Responder: r, DistanceMeters: d}
		}
	}
	if best == nil {
		return nil, domain.ErrNoResponderAvailable
	}
	return best, nil
}
