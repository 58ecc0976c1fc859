package ride

import "backend-bikeredlights/internal/shared/geo"

const (
	// maxSpeedMps caps estimates at 100 km/h; anything faster on a
	// bicycle is GPS noise.
	maxSpeedMps = 100 / 3.6

	// stationaryMps is the sub-1-km/h jitter floor below which the
	// rider is treated as not moving.
	stationaryMps = 1 / 3.6
)

// EstimateSpeed derives a speed sample from the current fix and the
// previously accepted one. GPS-reported speed wins when present and
// positive; otherwise speed falls back to position delta over elapsed
// time. The result is deterministic given the two fixes.
func EstimateSpeed(current LocationFix, previous *LocationFix) SpeedSample {
	speedMps := 0.0
	source := SourceUnknown

	switch {
	case current.SpeedMps != nil && *current.SpeedMps > 0:
		speedMps = *current.SpeedMps
		source = SourceGps
	case previous != nil:
		elapsedS := float64(current.TimestampMs-previous.TimestampMs) / 1000
		if elapsedS > 0 {
			distM := geo.HaversineM(previous.Lat, previous.Lng, current.Lat, current.Lng)
			speedMps = distM / elapsedS
			source = SourceDerived
		}
	}

	if speedMps > maxSpeedMps {
		speedMps = maxSpeedMps
	}

	sample := SpeedSample{
		TimestampMs: current.TimestampMs,
		Source:      source,
	}
	if speedMps < stationaryMps {
		sample.Stationary = true
	} else {
		sample.SpeedKmh = speedMps * 3.6
	}
	return sample
}
