package ride

import (
	"context"
	"time"

	"backend-bikeredlights/internal/db"
)

// Repo is the append/read persistence contract for rides and their
// fixes. Storage format beyond these two tables is nobody's business
// but Postgres's.
type Repo struct {
	db db.Querier
}

func NewRepo(querier db.Querier) *Repo {
	return &Repo{db: querier}
}

func (r *Repo) CreateRide(ctx context.Context, session Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO rides (id, rider_id, state, started_at)
		VALUES ($1,$2,$3,$4)
	`, session.ID, session.RiderID, string(session.State), session.StartedAt)
	return err
}

func (r *Repo) AppendFix(ctx context.Context, rideID string, fix LocationFix) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO ride_fixes (ride_id, lat, lng, accuracy_m, timestamp_ms, speed_mps, bearing_deg)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, rideID, fix.Lat, fix.Lng, fix.AccuracyM, fix.TimestampMs, fix.SpeedMps, fix.BearingDeg)
	return err
}

func (r *Repo) LoadFixes(ctx context.Context, rideID string) ([]LocationFix, error) {
	rows, err := r.db.Query(ctx, `
		SELECT lat, lng, accuracy_m, timestamp_ms, speed_mps, bearing_deg
		FROM ride_fixes WHERE ride_id=$1
		ORDER BY timestamp_ms
	`, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fixes []LocationFix
	for rows.Next() {
		var f LocationFix
		if err := rows.Scan(&f.Lat, &f.Lng, &f.AccuracyM, &f.TimestampMs, &f.SpeedMps, &f.BearingDeg); err != nil {
			return nil, err
		}
		fixes = append(fixes, f)
	}
	return fixes, rows.Err()
}

// FinishRide archives the final totals of a stopped session.
func (r *Repo) FinishRide(ctx context.Context, session Session, endedAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE rides
		SET state=$2, ended_at=$3, moving_distance_m=$4, moving_duration_ms=$5, paused_duration_ms=$6
		WHERE id=$1
	`, session.ID, string(session.State), endedAt,
		session.MovingDistanceM, session.MovingDurationMs, session.PausedDurationMs)
	return err
}

func (r *Repo) ListRidesByRider(ctx context.Context, riderID string) ([]RideSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, state, started_at, ended_at,
		       COALESCE(moving_distance_m,0), COALESCE(moving_duration_ms,0), COALESCE(paused_duration_ms,0)
		FROM rides WHERE rider_id=$1
		ORDER BY started_at DESC
	`, riderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []RideSummary
	for rows.Next() {
		var s RideSummary
		var state string
		if err := rows.Scan(&s.ID, &state, &s.StartedAt, &s.EndedAt,
			&s.MovingDistanceM, &s.MovingDurationMs, &s.PausedDurationMs); err != nil {
			return nil, err
		}
		s.State = RideState(state)
		rides = append(rides, s)
	}
	return rides, rows.Err()
}

func (r *Repo) GetRide(ctx context.Context, rideID string) (Session, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, rider_id, state, started_at,
		       COALESCE(moving_distance_m,0), COALESCE(moving_duration_ms,0), COALESCE(paused_duration_ms,0)
		FROM rides WHERE id=$1
	`, rideID)

	var s Session
	var state string
	if err := row.Scan(&s.ID, &s.RiderID, &state, &s.StartedAt,
		&s.MovingDistanceM, &s.MovingDurationMs, &s.PausedDurationMs); err != nil {
		return Session{}, err
	}
	s.State = RideState(state)
	return s, nil
}
