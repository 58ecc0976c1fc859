package ride

import (
	"time"

	"backend-bikeredlights/internal/shared/geo"
)

// RideState is the recording lifecycle of one session.
type RideState string

const (
	StateIdle           RideState = "idle"
	StateWaitingForFix  RideState = "waiting_for_fix"
	StateRecording      RideState = "recording"
	StateManuallyPaused RideState = "manually_paused"
	StateAutoPaused     RideState = "auto_paused"
)

// LocationFix is one raw GPS reading as posted by the client.
// Speed and bearing are optional; most phone GPS stacks omit them when
// the receiver cannot compute a reliable value.
type LocationFix struct {
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	AccuracyM   float64  `json:"accuracy_m"`
	TimestampMs int64    `json:"timestamp_ms"`
	SpeedMps    *float64 `json:"speed_mps,omitempty"`
	BearingDeg  *float64 `json:"bearing_deg,omitempty"`
}

// SpeedSource tells where a SpeedSample's value came from.
type SpeedSource string

const (
	SourceGps     SpeedSource = "gps"
	SourceDerived SpeedSource = "derived"
	SourceUnknown SpeedSource = "unknown"
)

// SpeedSample is the per-fix output of the speed estimator.
type SpeedSample struct {
	SpeedKmh    float64     `json:"speed_kmh"`
	TimestampMs int64       `json:"timestamp_ms"`
	Source      SpeedSource `json:"source"`
	Stationary  bool        `json:"stationary"`
}

// BearingEstimate is the smoothed heading shown on the map marker.
// Degrees is nil when no fresh heading is known and the marker should
// fall back to north-up.
type BearingEstimate struct {
	Degrees       *float64 `json:"degrees,omitempty"`
	LastUpdatedMs int64    `json:"last_updated_ms"`
}

// Session is the aggregate for one ride. It is owned by a single
// Recorder and mutated nowhere else.
type Session struct {
	ID               string    `json:"id"`
	RiderID          string    `json:"rider_id"`
	State            RideState `json:"state"`
	StartedAt        time.Time `json:"started_at"`
	MovingDistanceM  float64   `json:"moving_distance_m"`
	MovingDurationMs int64     `json:"moving_duration_ms"`
	PausedDurationMs int64     `json:"paused_duration_ms"`

	currentPauseStart time.Time
	points            []LocationFix
}

// Snapshot is the read-only view of a session streamed to renderers.
type Snapshot struct {
	RideID           string    `json:"ride_id"`
	State            RideState `json:"state"`
	MovingDistanceM  float64   `json:"moving_distance_m"`
	MovingDurationMs int64     `json:"moving_duration_ms"`
	PausedDurationMs int64     `json:"paused_duration_ms"`
	CurrentSpeedKmh  float64   `json:"current_speed_kmh"`
	BearingDeg       *float64  `json:"bearing_deg,omitempty"`
	PointCount       int       `json:"point_count"`
	RejectedFixes    int       `json:"rejected_fixes"`
}

// RideSummary is one row of a rider's ride history.
type RideSummary struct {
	ID               string     `json:"id"`
	State            RideState  `json:"state"`
	StartedAt        time.Time  `json:"started_at"`
	EndedAt          *time.Time `json:"ended_at,omitempty"`
	MovingDistanceM  float64    `json:"moving_distance_m"`
	MovingDurationMs int64      `json:"moving_duration_ms"`
	PausedDurationMs int64      `json:"paused_duration_ms"`
}

// Route is the simplified geometry returned for map rendering.
type Route struct {
	RideID       string      `json:"ride_id"`
	Points       []geo.Point `json:"points"`
	ToleranceM   float64     `json:"tolerance_m"`
	Bounds       *geo.Bounds `json:"bounds,omitempty"`
	SourcePoints int         `json:"source_points"`
}
