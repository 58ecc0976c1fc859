package ride

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"backend-bikeredlights/internal/shared/geo"
	"backend-bikeredlights/internal/stream"

	"github.com/google/uuid"
)

// DefaultToleranceM is the simplification tolerance used when a route
// request does not pass one. 10m drops roughly 90% of points on a
// typical ride with no visible loss at cycling zoom levels.
const DefaultToleranceM = 10.0

// ErrRideNotFound is returned when neither an active recorder nor a
// stored ride matches the id.
var ErrRideNotFound = errors.New("ride not found")

// SettingsProvider supplies the rider's auto-pause threshold. Reads are
// one-shot snapshots taken per evaluation; the engine never watches the
// value reactively.
type SettingsProvider interface {
	AutoPauseThreshold(ctx context.Context, riderID string) int
}

// Service coordinates active recorders with persistence and the
// snapshot stream. One recorder exists per active ride.
type Service struct {
	repo     *Repo
	hub      *stream.Hub
	settings SettingsProvider

	mu        sync.RWMutex
	recorders map[string]*Recorder
	riders    map[string]string // ride id -> rider id
}

func NewService(repo *Repo, hub *stream.Hub, settings SettingsProvider) *Service {
	return &Service{
		repo:      repo,
		hub:       hub,
		settings:  settings,
		recorders: map[string]*Recorder{},
		riders:    map[string]string{},
	}
}

// StartRide creates a session in WaitingForFix and persists its row.
func (s *Service) StartRide(ctx context.Context, riderID string) (Snapshot, error) {
	id := uuid.NewString()
	rec := NewRecorder(id, riderID, s.broadcaster(id))

	s.mu.Lock()
	s.recorders[id] = rec
	s.riders[id] = riderID
	s.mu.Unlock()

	if err := s.repo.CreateRide(ctx, Session{
		ID:        id,
		RiderID:   riderID,
		State:     StateWaitingForFix,
		StartedAt: time.Now(),
	}); err != nil {
		s.mu.Lock()
		delete(s.recorders, id)
		delete(s.riders, id)
		s.mu.Unlock()
		return Snapshot{}, err
	}
	return rec.Snapshot(), nil
}

// SubmitFix feeds one raw fix into the ride's recorder. Invalid fixes
// are counted and dropped without surfacing an error; only an unknown
// ride or a persistence failure is reported.
func (s *Service) SubmitFix(ctx context.Context, rideID string, fix LocationFix) (Snapshot, error) {
	rec, riderID, ok := s.recorder(rideID)
	if !ok {
		return Snapshot{}, ErrRideNotFound
	}

	threshold := s.settings.AutoPauseThreshold(ctx, riderID)
	snap, err := rec.ProcessFix(fix, threshold)
	if err != nil {
		if errors.Is(err, ErrRideFinished) {
			return Snapshot{}, ErrRideNotFound
		}
		log.Printf("ride %s: dropped fix: %v", rideID, err)
		return snap, nil
	}

	if err := s.repo.AppendFix(ctx, rideID, fix); err != nil {
		return snap, err
	}
	return snap, nil
}

// Pause applies a manual pause event.
func (s *Service) Pause(rideID string) (Snapshot, bool, error) {
	rec, _, ok := s.recorder(rideID)
	if !ok {
		return Snapshot{}, false, ErrRideNotFound
	}
	snap, applied := rec.Pause()
	return snap, applied, nil
}

// Resume applies a manual resume event.
func (s *Service) Resume(rideID string) (Snapshot, bool, error) {
	rec, _, ok := s.recorder(rideID)
	if !ok {
		return Snapshot{}, false, ErrRideNotFound
	}
	snap, applied := rec.Resume()
	return snap, applied, nil
}

// StopRide finalizes the session and hands it to persistence. The
// recorder is dropped from the active set whether or not the archive
// write succeeds; the fixes are already on disk.
func (s *Service) StopRide(ctx context.Context, rideID string) (Snapshot, bool, error) {
	rec, _, ok := s.recorder(rideID)
	if !ok {
		return Snapshot{}, false, ErrRideNotFound
	}

	final, snap, applied := rec.Stop()
	if !applied {
		return snap, false, nil
	}

	s.mu.Lock()
	delete(s.recorders, rideID)
	delete(s.riders, rideID)
	s.mu.Unlock()

	if err := s.repo.FinishRide(ctx, final, time.Now()); err != nil {
		return snap, true, err
	}
	return snap, true, nil
}

// ListRides returns the rider's history, newest first. Rows for rides
// still being recorded are overlaid with the live recorder state so the
// stored placeholder never leaks out.
func (s *Service) ListRides(ctx context.Context, riderID string) ([]RideSummary, error) {
	rides, err := s.repo.ListRidesByRider(ctx, riderID)
	if err != nil {
		return nil, err
	}
	for i, summary := range rides {
		rec, _, ok := s.recorder(summary.ID)
		if !ok {
			continue
		}
		snap := rec.Snapshot()
		rides[i].State = snap.State
		rides[i].MovingDistanceM = snap.MovingDistanceM
		rides[i].MovingDurationMs = snap.MovingDurationMs
		rides[i].PausedDurationMs = snap.PausedDurationMs
	}
	return rides, nil
}

// GetSnapshot serves the live view for an active ride and the archived
// totals for a finished one.
func (s *Service) GetSnapshot(ctx context.Context, rideID string) (Snapshot, error) {
	if rec, _, ok := s.recorder(rideID); ok {
		return rec.Snapshot(), nil
	}

	session, err := s.repo.GetRide(ctx, rideID)
	if err != nil {
		return Snapshot{}, ErrRideNotFound
	}
	return Snapshot{
		RideID:           session.ID,
		State:            session.State,
		MovingDistanceM:  session.MovingDistanceM,
		MovingDurationMs: session.MovingDurationMs,
		PausedDurationMs: session.PausedDurationMs,
	}, nil
}

// GetRoute returns the simplified track and its bounding box. Active
// rides are read from the recorder's owned point list, finished rides
// from storage.
func (s *Service) GetRoute(ctx context.Context, rideID string, toleranceM float64) (Route, error) {
	if toleranceM <= 0 {
		toleranceM = DefaultToleranceM
	}

	var points []geo.Point
	if rec, _, ok := s.recorder(rideID); ok {
		points = rec.TrackPoints()
	} else {
		fixes, err := s.repo.LoadFixes(ctx, rideID)
		if err != nil {
			return Route{}, err
		}
		if len(fixes) == 0 {
			if _, err := s.repo.GetRide(ctx, rideID); err != nil {
				return Route{}, ErrRideNotFound
			}
		}
		points = make([]geo.Point, len(fixes))
		for i, f := range fixes {
			points[i] = geo.Point{Lat: f.Lat, Lng: f.Lng}
		}
	}

	simplified := geo.Simplify(points, toleranceM)
	return Route{
		RideID:       rideID,
		Points:       simplified,
		ToleranceM:   toleranceM,
		Bounds:       geo.BoundsOf(simplified),
		SourcePoints: len(points),
	}, nil
}

func (s *Service) recorder(rideID string) (*Recorder, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recorders[rideID]
	return rec, s.riders[rideID], ok
}

func (s *Service) broadcaster(rideID string) func(Snapshot) {
	if s.hub == nil {
		return nil
	}
	return func(snap Snapshot) {
		payload, err := json.Marshal(snap)
		if err != nil {
			log.Printf("ride %s: marshal snapshot: %v", rideID, err)
			return
		}
		s.hub.Broadcast(rideID, payload)
	}
}
