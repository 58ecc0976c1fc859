package ride

import (
	"math"
	"time"

	"backend-bikeredlights/internal/shared/geo"
)

const (
	// bearingDebounceDeg suppresses marker jitter from sub-5-degree
	// heading changes.
	bearingDebounceDeg = 5.0

	// bearingStaleAfter resets the heading to north-up after 45s
	// without a qualifying fix.
	bearingStaleAfter = 45 * time.Second
)

// BearingSmoother debounces and expires the heading shown on the rider
// marker. It emits a new value only when it differs from the last
// emitted one by more than the debounce threshold.
type BearingSmoother struct {
	emitted       *float64
	lastUpdatedMs int64
	lastCandidate time.Time
}

// Update feeds one accepted fix through the smoother. A reported GPS
// bearing is adopted as-is; otherwise a bearing is derived from the
// previous position when the fix actually moved.
func (b *BearingSmoother) Update(current LocationFix, previous *LocationFix, now time.Time) BearingEstimate {
	candidate, ok := bearingCandidate(current, previous)
	if ok {
		b.lastUpdatedMs = current.TimestampMs
		b.lastCandidate = now
		if b.emitted == nil || angularDelta(*b.emitted, candidate) > bearingDebounceDeg {
			v := candidate
			b.emitted = &v
		}
	}

	return b.Estimate(now)
}

// Estimate returns the current heading without consuming a fix.
// Staleness is checked against the wall clock here, so the heading
// expires during GPS silence too, not only when the next fix arrives.
func (b *BearingSmoother) Estimate(now time.Time) BearingEstimate {
	if b.emitted != nil && now.Sub(b.lastCandidate) >= bearingStaleAfter {
		b.emitted = nil
	}

	est := BearingEstimate{LastUpdatedMs: b.lastUpdatedMs}
	if b.emitted != nil {
		v := *b.emitted
		est.Degrees = &v
	}
	return est
}

func bearingCandidate(current LocationFix, previous *LocationFix) (float64, bool) {
	if current.BearingDeg != nil {
		return normalizeDeg(*current.BearingDeg), true
	}
	if previous != nil && (previous.Lat != current.Lat || previous.Lng != current.Lng) {
		return geo.InitialBearing(previous.Lat, previous.Lng, current.Lat, current.Lng), true
	}
	return 0, false
}

func normalizeDeg(deg float64) float64 {
	return math.Mod(math.Mod(deg, 360)+360, 360)
}

func angularDelta(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}
