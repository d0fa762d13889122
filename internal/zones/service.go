// Package zones owns the disaster-zone lifecycle: creation from the
// ingestion pipeline or the operator simulation endpoints, explicit
// deletion, and the lazy active-set query.
package zones

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kljl6773-hub/SafetyNevi/internal/events"
	"github.com/kljl6773-hub/SafetyNevi/internal/models"
	"github.com/kljl6773-hub/SafetyNevi/internal/repository"
)

type Service struct {
	repo        repository.ZoneRepository
	clock       clockwork.Clock
	broadcaster *events.Broadcaster // nil disables zone event fan-out
}

func NewService(repo repository.ZoneRepository, clock clockwork.Clock, broadcaster *events.Broadcaster) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		repo:        repo,
		clock:       clock,
		broadcaster: broadcaster,
	}
}

// CreateCircleZone persists a coordinate+radius zone expiring after
// the given duration. Coordinates are stored as given; validating them
// is the caller's job. actor is the identity performing the operation,
// recorded in the log only.
func (s *Service) CreateCircleZone(ctx context.Context, actor string, lat, lon float64, disasterType string, radius float64, duration time.Duration) (*models.DisasterZone, error) {
	if err := checkRequired(disasterType, duration); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	zone := &models.DisasterZone{
		DisasterType: disasterType,
		Latitude:     &lat,
		Longitude:    &lon,
		Radius:       &radius,
		StartTime:    now,
		ExpiryTime:   now.Add(duration),
	}

	if err := s.repo.AddZone(ctx, zone); err != nil {
		return nil, fmt.Errorf("error creating circle zone: %w", err)
	}

	slog.Info("circle zone created", "id", zone.ID, "type", disasterType, "lat", lat, "lon", lon, "radius", radius, "actor", actor)
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(zone)
	}
	return zone, nil
}

// CreateAreaZone persists an administrative-area zone. Used by the
// ingestion pipeline when the classifier flags a message as dangerous,
// and by the operator simulation endpoint.
func (s *Service) CreateAreaZone(ctx context.Context, actor, areaName, disasterType string, duration time.Duration) (*models.DisasterZone, error) {
	if err := checkRequired(disasterType, duration); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	zone := &models.DisasterZone{
		DisasterType: disasterType,
		AreaName:     areaName,
		StartTime:    now,
		ExpiryTime:   now.Add(duration),
	}

	if err := s.repo.AddZone(ctx, zone); err != nil {
		return nil, fmt.Errorf("error creating area zone: %w", err)
	}

	slog.Info("area zone created", "id", zone.ID, "type", disasterType, "area", areaName, "actor", actor)
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(zone)
	}
	return zone, nil
}

// DeleteZone removes a zone by id. An unknown id is reported as
// repository.ErrNotFound, a non-fatal condition for the caller.
func (s *Service) DeleteZone(ctx context.Context, actor string, id int64) error {
	if _, err := s.repo.GetZone(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteZone(ctx, id); err != nil {
		return err
	}
	slog.Info("zone deleted", "id", id, "actor", actor)
	return nil
}

// ListActive returns zones whose expiry lies after the service clock's
// now. The full zone set is filtered at call time; no active index is
// maintained.
func (s *Service) ListActive(ctx context.Context) ([]models.DisasterZone, error) {
	all, err := s.repo.ListZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing zones: %w", err)
	}

	now := s.clock.Now()
	active := make([]models.DisasterZone, 0, len(all))
	for _, z := range all {
		if z.Active(now) {
			active = append(active, z)
		}
	}
	return active, nil
}

// CountAll returns the total zone count, expired included.
func (s *Service) CountAll(ctx context.Context) (int64, error) {
	return s.repo.CountZones(ctx)
}

func checkRequired(disasterType string, duration time.Duration) error {
	if disasterType == "" {
		return fmt.Errorf("disaster type is required")
	}
	if duration <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	return nil
}
