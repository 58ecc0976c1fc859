package geo

import (
	"math"
	"testing"
)

func TestHaversineMLongDistance(t *testing.T) {
	// Jakarta (-6.2, 106.816) to Bandung (-6.9175, 107.6191) ~ 115-120 km
	d := HaversineM(-6.2, 106.816, -6.9175, 107.6191)
	if d < 100_000 || d > 140_000 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestHaversineMShortDistance(t *testing.T) {
	// 0.0001 deg of latitude is ~11.1 m
	d := HaversineM(37.7749, -122.4194, 37.7750, -122.4194)
	if d < 10 || d > 12.5 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestInitialBearing(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want                   float64
	}{
		{"due north", 0, 0, 1, 0, 0},
		{"due east", 0, 0, 0, 1, 90},
		{"due south", 1, 0, 0, 0, 180},
		{"due west", 0, 1, 0, 0, 270},
	}
	for _, tc := range cases {
		got := InitialBearing(tc.lat1, tc.lng1, tc.lat2, tc.lng2)
		if math.Abs(got-tc.want) > 0.5 {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestSimplifyTrivialInputs(t *testing.T) {
	if got := Simplify(nil, 10); len(got) != 0 {
		t.Fatalf("expected empty output")
	}
	one := []Point{{Lat: 1, Lng: 2}}
	if got := Simplify(one, 10); len(got) != 1 || got[0] != one[0] {
		t.Fatalf("expected single point back")
	}
	two := []Point{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}}
	got := Simplify(two, 10)
	if len(got) != 2 || got[0] != two[0] || got[1] != two[1] {
		t.Fatalf("expected both points back")
	}
}

func TestSimplifyNearStraightTrack(t *testing.T) {
	// 3600 points heading roughly north with tiny lateral jitter.
	points := make([]Point, 3600)
	for i := range points {
		jitter := 0.000004 * math.Sin(float64(i))
		points[i] = Point{Lat: 37.0 + float64(i)*0.0001, Lng: -122.0 + jitter}
	}

	simplified := Simplify(points, 10)
	if len(simplified) > len(points) {
		t.Fatalf("simplification grew the track")
	}
	if len(simplified) >= len(points)/2 {
		t.Fatalf("expected materially fewer points, got %d of %d", len(simplified), len(points))
	}
	if simplified[0] != points[0] || simplified[len(simplified)-1] != points[len(points)-1] {
		t.Fatalf("endpoints not preserved")
	}
}

func TestSimplifyKeepsCorner(t *testing.T) {
	points := []Point{
		{Lat: 0, Lng: 0},
		{Lat: 0.5, Lng: 0},
		{Lat: 1, Lng: 0},
		{Lat: 1, Lng: 0.5},
		{Lat: 1, Lng: 1},
	}
	simplified := Simplify(points, 10)
	found := false
	for _, p := range simplified {
		if p.Lat == 1 && p.Lng == 0 {
			found = true
		}
	}
	if !found {
		t.Fatalf("corner point dropped: %v", simplified)
	}
}

func TestSimplifyIdempotent(t *testing.T) {
	points := make([]Point, 500)
	for i := range points {
		points[i] = Point{Lat: float64(i) * 0.001, Lng: math.Sin(float64(i)) * 0.0001}
	}

	first := Simplify(points, 10)
	second := Simplify(points, 10)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("output differs at %d", i)
		}
	}
}

func TestBoundsOf(t *testing.T) {
	if BoundsOf(nil) != nil {
		t.Fatalf("expected nil bounds for empty input")
	}
	if BoundsOf([]Point{{Lat: 1, Lng: 1}}) != nil {
		t.Fatalf("expected nil bounds for single point")
	}

	b := BoundsOf([]Point{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}})
	if b == nil {
		t.Fatalf("expected bounds")
	}
	if b.SouthWest.Lat != 0 || b.SouthWest.Lng != 0 {
		t.Fatalf("unexpected south-west: %+v", b.SouthWest)
	}
	if b.NorthEast.Lat != 1 || b.NorthEast.Lng != 1 {
		t.Fatalf("unexpected north-east: %+v", b.NorthEast)
	}
}
