package geospatial_test

import (
	"errors"
	"math"
	"testing"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/domain"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/pkg/geospatial"
)

func TestDistance_OneDegreeLongitudeAtEquator(t *testing.T) {
	d, err := geospatial.Distance(domain.GeoPoint{Lat: 0, Lon: 0}, domain.GeoPoint{Lat: 0, Lon: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// One degree of longitude at the equator is ~111.195 km.
	want := 111195.0
	if math.Abs(d-want) > want*0.01 {
		t.Errorf("expected ~%.0f m (±1%%), got %.0f m", want, d)
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := domain.GeoPoint{Lat: 12.97, Lon: 77.59}
	b := domain.GeoPoint{Lat: 43.263, Lon: -2.935}

	ab, err := geospatial.Distance(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ba, err := geospatial.Distance(b, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ab != ba {
		t.Errorf("distance not symmetric: %f vs %f", ab, ba)
	}
}

func TestDistance_SamePointIsZero(t *testing.T) {
	p := domain.GeoPoint{Lat: 12.97, Lon: 77.59}
	d, err := geospatial.Distance(p, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestDistance_InvalidCoordinate(t *testing.T) {
	cases := []struct {
		name string
		a, b domain.GeoPoint
	}{
		{"lat too high", domain.GeoPoint{Lat: 91, Lon: 0}, domain.GeoPoint{}},
		{"lat too low", domain.GeoPoint{Lat: -90.01, Lon: 0}, domain.GeoPoint{}},
		{"lon too high", domain.GeoPoint{}, domain.GeoPoint{Lat: 0, Lon: 180.5}},
		{"lon too low", domain.GeoPoint{}, domain.GeoPoint{Lat: 0, Lon: -181}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := geospatial.Distance(tc.a, tc.b); !errors.Is(err, domain.ErrInvalidCoordinate) {
				t.Errorf("expected ErrInvalidCoordinate, got %v", err)
			}
		})
	}
}

func TestBoundingBox_ContainsCenter(t *testing.T) {
	p := domain.GeoPoint{Lat: 43.263, Lon: -2.935}
	b := geospatial.BoundingBox(p, 500)
	if p.Lat < b.MinLat || p.Lat > b.MaxLat || p.Lon < b.MinLon || p.Lon > b.MaxLon {
		t.Errorf("center %+v outside box %+v", p, b)
	}
}
