package settings

import (
	"context"
	"fmt"
	"strconv"

	"backend-bikeredlights/internal/ride"

	"github.com/redis/go-redis/v9"
)

// Service stores per-rider recording preferences in redis. Reads never
// fail towards the caller: a missing, unreadable or out-of-range value
// yields the default threshold.
type Service struct {
	redis *redis.Client
}

func NewService(client *redis.Client) *Service {
	return &Service{redis: client}
}

// AutoPauseThreshold returns the rider's auto-pause threshold in
// seconds, one of 1, 2, 5, 10, 15 or 30.
func (s *Service) AutoPauseThreshold(ctx context.Context, riderID string) int {
	if s.redis == nil {
		return ride.DefaultAutoPauseThresholdS
	}

	raw, err := s.redis.Get(ctx, autoPauseKey(riderID)).Result()
	if err != nil {
		return ride.DefaultAutoPauseThresholdS
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil {
		return ride.DefaultAutoPauseThresholdS
	}
	return ride.NormalizeAutoPauseThreshold(seconds)
}

// SetAutoPauseThreshold persists a new threshold after validating it
// against the allowed set.
func (s *Service) SetAutoPauseThreshold(ctx context.Context, riderID string, seconds int) error {
	if ride.NormalizeAutoPauseThreshold(seconds) != seconds {
		return fmt.Errorf("invalid auto-pause threshold: %d", seconds)
	}
	if s.redis == nil {
		return fmt.Errorf("settings storage unavailable")
	}
	return s.redis.Set(ctx, autoPauseKey(riderID), strconv.Itoa(seconds), 0).Err()
}

func autoPauseKey(riderID string) string {
	return "settings:" + riderID + ":auto_pause_s"
}
