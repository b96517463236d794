package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthStatus struct {
	Database string `json:"database"`
	Redis    string `json:"redis,omitempty"`
}

const (
	componentUp       = "up"
	componentDown     = "down"
	componentDisabled = "disabled"
)

type HealthService struct {
	log   *zap.Logger
	db    Pinger
	redis Pinger
}

// NewHealthService checks db and, when non-nil, redis.
func NewHealthService(log *zap.Logger, db Pinger, redis Pinger) *HealthService {
	return &HealthService{
		log:   log,
		db:    db,
		redis: redis,
	}
}

func (s *HealthService) Check(ctx context.Context) (*HealthStatus, error) {
	status := &HealthStatus{Database: componentUp, Redis: componentDisabled}

	var failed error

	if err := s.db.Ping(ctx); err != nil {
		s.log.Warn("Database health check failed", zap.Error(err))
		status.Database = componentDown
		failed = fmt.Errorf("database: %w", err)
	}

	if s.redis != nil {
		status.Redis = componentUp

		if err := s.redis.Ping(ctx); err != nil {
			s.log.Warn("Redis health check failed", zap.Error(err))
			status.Redis = componentDown

			if failed == nil {
				failed = fmt.Errorf("redis: %w", err)
			}
		}
	}

	return status, failed
}
