package ride

import (
	"errors"
	"log"
	"sync"
	"time"

	"backend-bikeredlights/internal/shared/geo"
)

// ErrRideFinished is returned for fixes arriving after stopRide.
var ErrRideFinished = errors.New("ride already finished")

// DefaultAutoPauseThresholdS is used whenever a stored threshold is
// missing or not one of the allowed values.
const DefaultAutoPauseThresholdS = 5

var allowedAutoPauseThresholds = map[int]struct{}{
	1: {}, 2: {}, 5: {}, 10: {}, 15: {}, 30: {},
}

// NormalizeAutoPauseThreshold maps any invalid threshold to the default.
func NormalizeAutoPauseThreshold(seconds int) int {
	if _, ok := allowedAutoPauseThresholds[seconds]; ok {
		return seconds
	}
	return DefaultAutoPauseThresholdS
}

// Recorder owns one ride session and is the only writer to it. All
// state transitions go through its event methods; an event that is not
// valid for the current state is a logged no-op.
type Recorder struct {
	mu      sync.Mutex
	session Session
	bearing BearingSmoother
	speed   SpeedSample

	lastFix       *LocationFix
	rejectedFixes int

	// start of the current stationary run, 0 when the rider is moving
	stationarySinceMs int64

	// timestamp of the last fix counted towards moving duration; 0
	// right after a resume so the pause gap is never counted
	lastMovingTs int64

	pauseStop chan struct{}

	now        func() time.Time
	onSnapshot func(Snapshot)
}

// NewRecorder starts a session in WaitingForFix. onSnapshot, when set,
// receives a snapshot after every accepted fix, transition and pause
// timer tick.
func NewRecorder(rideID, riderID string, onSnapshot func(Snapshot)) *Recorder {
	r := &Recorder{
		now:        time.Now,
		onSnapshot: onSnapshot,
	}
	r.session = Session{
		ID:        rideID,
		RiderID:   riderID,
		State:     StateWaitingForFix,
		StartedAt: r.now(),
	}
	return r
}

// ProcessFix validates and applies one raw fix. The returned error is a
// rejection reason; rejections are counted and otherwise harmless.
func (r *Recorder) ProcessFix(fix LocationFix, autoPauseThresholdS int) (Snapshot, error) {
	r.mu.Lock()

	var prevTs int64
	if r.lastFix != nil {
		prevTs = r.lastFix.TimestampMs
	}
	if err := ValidateFix(fix, prevTs); err != nil {
		r.rejectedFixes++
		snap := r.snapshotLocked()
		r.mu.Unlock()
		return snap, err
	}

	sample := EstimateSpeed(fix, r.lastFix)
	r.bearing.Update(fix, r.lastFix, r.now())
	r.speed = sample

	threshold := NormalizeAutoPauseThreshold(autoPauseThresholdS)

	switch r.session.State {
	case StateWaitingForFix:
		r.session.State = StateRecording
		r.session.points = append(r.session.points, fix)
		r.stationarySinceMs = 0
		r.lastMovingTs = fix.TimestampMs

	case StateRecording:
		prev := r.session.points[len(r.session.points)-1]
		r.session.MovingDistanceM += geo.HaversineM(prev.Lat, prev.Lng, fix.Lat, fix.Lng)
		if r.lastMovingTs > 0 {
			r.session.MovingDurationMs += fix.TimestampMs - r.lastMovingTs
		}
		r.lastMovingTs = fix.TimestampMs
		r.session.points = append(r.session.points, fix)

		if sample.Stationary {
			if r.stationarySinceMs == 0 {
				r.stationarySinceMs = fix.TimestampMs
			} else if fix.TimestampMs-r.stationarySinceMs >= int64(threshold)*1000 {
				r.enterPauseLocked(StateAutoPaused)
			}
		} else {
			r.stationarySinceMs = 0
		}

	case StateAutoPaused:
		if !sample.Stationary {
			r.exitPauseLocked()
			r.session.State = StateRecording
			r.stationarySinceMs = 0
			prev := r.session.points[len(r.session.points)-1]
			r.session.MovingDistanceM += geo.HaversineM(prev.Lat, prev.Lng, fix.Lat, fix.Lng)
			r.session.points = append(r.session.points, fix)
			r.lastMovingTs = fix.TimestampMs
		}

	case StateManuallyPaused:
		// fixes keep the live speed display fresh but never accumulate

	case StateIdle:
		r.mu.Unlock()
		return Snapshot{}, ErrRideFinished
	}

	r.lastFix = &fix
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.emit(snap)
	return snap, nil
}

// Pause applies a user-initiated pause. Valid only while Recording.
func (r *Recorder) Pause() (Snapshot, bool) {
	r.mu.Lock()
	if r.session.State != StateRecording {
		log.Printf("ride %s: ignoring manual pause in state %s", r.session.ID, r.session.State)
		snap := r.snapshotLocked()
		r.mu.Unlock()
		return snap, false
	}
	r.enterPauseLocked(StateManuallyPaused)
	r.stationarySinceMs = 0
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.emit(snap)
	return snap, true
}

// Resume ends a manual pause. Valid only while ManuallyPaused; an
// auto-pause ends on its own when motion resumes.
func (r *Recorder) Resume() (Snapshot, bool) {
	r.mu.Lock()
	if r.session.State != StateManuallyPaused {
		log.Printf("ride %s: ignoring manual resume in state %s", r.session.ID, r.session.State)
		snap := r.snapshotLocked()
		r.mu.Unlock()
		return snap, false
	}
	r.exitPauseLocked()
	r.session.State = StateRecording
	r.lastMovingTs = 0
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.emit(snap)
	return snap, true
}

// Stop finalizes the session: pause accounting is flushed and the pause
// timer cancelled before the session is returned for hand-off. Valid
// from Recording and both paused states.
func (r *Recorder) Stop() (Session, Snapshot, bool) {
	r.mu.Lock()
	switch r.session.State {
	case StateRecording, StateManuallyPaused, StateAutoPaused:
	default:
		log.Printf("ride %s: ignoring stop in state %s", r.session.ID, r.session.State)
		snap := r.snapshotLocked()
		r.mu.Unlock()
		return Session{}, snap, false
	}

	if !r.session.currentPauseStart.IsZero() {
		r.exitPauseLocked()
	}
	r.session.State = StateIdle
	final := r.session
	final.points = append([]LocationFix(nil), r.session.points...)
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.emit(snap)
	return final, snap, true
}

// Snapshot returns the current read-only view. Paused duration is
// always recomputed from the pause start instant, so the value is
// correct even after an arbitrary gap between reads.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// TrackPoints copies the accumulated track for simplification; callers
// never see the owned slice.
func (r *Recorder) TrackPoints() []geo.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]geo.Point, len(r.session.points))
	for i, p := range r.session.points {
		out[i] = geo.Point{Lat: p.Lat, Lng: p.Lng}
	}
	return out
}

func (r *Recorder) enterPauseLocked(state RideState) {
	r.session.State = state
	r.session.currentPauseStart = r.now()

	stop := make(chan struct{})
	r.pauseStop = stop
	go r.runPauseTimer(stop)
}

func (r *Recorder) exitPauseLocked() {
	elapsed := r.now().Sub(r.session.currentPauseStart)
	r.session.PausedDurationMs += elapsed.Milliseconds()
	r.session.currentPauseStart = time.Time{}

	if r.pauseStop != nil {
		close(r.pauseStop)
		r.pauseStop = nil
	}
}

// runPauseTimer emits a snapshot roughly once a second while paused.
// Every wake recomputes elapsed time from the stored pause start, never
// from a tick count, so a suspended process shows the true duration on
// the next wake.
func (r *Recorder) runPauseTimer(stop chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.session.currentPauseStart.IsZero() {
				r.mu.Unlock()
				return
			}
			snap := r.snapshotLocked()
			r.mu.Unlock()
			r.emit(snap)
		}
	}
}

func (r *Recorder) snapshotLocked() Snapshot {
	paused := r.session.PausedDurationMs
	if !r.session.currentPauseStart.IsZero() {
		paused += r.now().Sub(r.session.currentPauseStart).Milliseconds()
	}

	snap := Snapshot{
		RideID:           r.session.ID,
		State:            r.session.State,
		MovingDistanceM:  r.session.MovingDistanceM,
		MovingDurationMs: r.session.MovingDurationMs,
		PausedDurationMs: paused,
		CurrentSpeedKmh:  r.speed.SpeedKmh,
		PointCount:       len(r.session.points),
		RejectedFixes:    r.rejectedFixes,
	}
	if est := r.bearing.Estimate(r.now()); est.Degrees != nil {
		snap.BearingDeg = est.Degrees
	}
	return snap
}

func (r *Recorder) emit(snap Snapshot) {
	if r.onSnapshot != nil {
		r.onSnapshot(snap)
	}
}
