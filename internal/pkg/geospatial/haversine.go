package geospatial

import (
	"math"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/domain"
)

const earthRadiusMeters = 6371000.0

// Distance calculates the great-circle distance in meters between two points
// using the haversine formula. It returns domain.ErrInvalidCoordinate if
// either point lies outside the WGS 84 ranges.
func Distance(a, b domain.GeoPoint) (float64, error) {
	if !a.Valid() || !b.Valid() {
		return 0, domain.ErrInvalidCoordinate
	}

	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c, nil
}

// BoundingBox returns a bounding box around a point with the given radius in meters.
func BoundingBox(p domain.GeoPoint, radiusMeters float64) domain.Bounds {
	latDelta := radiusMeters / 111320.0
	lonDelta := radiusMeters / (111320.0 * math.Cos(toRad(p.Lat)))

	return domain.Bounds{
		MinLat: p.Lat - latDelta,
		MinLon: p.Lon - lonDelta,
		MaxLat: p.Lat + latDelta,
		MaxLon: p.Lon + lonDelta,
	}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
