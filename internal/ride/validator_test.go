package ride

import (
	"errors"
	"testing"
)

func TestValidateFix(t *testing.T) {
	valid := LocationFix{Lat: 37.7749, Lng: -122.4194, AccuracyM: 5, TimestampMs: 1000}

	cases := []struct {
		name   string
		fix    LocationFix
		prevTs int64
		want   error
	}{
		{"valid", valid, 0, nil},
		{"valid after previous", valid, 999, nil},
		{"lat too low", LocationFix{Lat: -90.1, Lng: 0, TimestampMs: 1000}, 0, ErrLatOutOfRange},
		{"lat too high", LocationFix{Lat: 90.1, Lng: 0, TimestampMs: 1000}, 0, ErrLatOutOfRange},
		{"lng too low", LocationFix{Lat: 0, Lng: -180.1, TimestampMs: 1000}, 0, ErrLngOutOfRange},
		{"lng too high", LocationFix{Lat: 0, Lng: 180.1, TimestampMs: 1000}, 0, ErrLngOutOfRange},
		{"negative accuracy", LocationFix{Lat: 0, Lng: 0, AccuracyM: -1, TimestampMs: 1000}, 0, ErrNegativeAccuracy},
		{"zero timestamp", LocationFix{Lat: 0, Lng: 0, TimestampMs: 0}, 0, ErrBadTimestamp},
		{"negative timestamp", LocationFix{Lat: 0, Lng: 0, TimestampMs: -5}, 0, ErrBadTimestamp},
		{"out of order", valid, 1000, ErrOutOfOrder},
		{"older than previous", valid, 2000, ErrOutOfOrder},
	}

	for _, tc := range cases {
		err := ValidateFix(tc.fix, tc.prevTs)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, err, tc.want)
		}
	}
}

func TestValidateFixBoundaryValues(t *testing.T) {
	corners := []LocationFix{
		{Lat: 90, Lng: 180, TimestampMs: 1},
		{Lat: -90, Lng: -180, TimestampMs: 1},
	}
	for _, fix := range corners {
		if err := ValidateFix(fix, 0); err != nil {
			t.Fatalf("boundary fix rejected: %v", err)
		}
	}
}
