package repository

import (
	"context"
	"errors"

	"github.com/kljl6773-hub/SafetyNevi/internal/models"
)

// ErrNotFound is returned when a lookup by id matches nothing. Callers
// map it to a not-found condition rather than a generic failure.
var ErrNotFound = errors.New("not found")

type AlertRepository interface {
	AddAlert(ctx context.Context, a *models.Alert) error
	// LatestAlert returns the most recently persisted alert, or nil
	// when the table is empty. It is the single-record lookback the
	// deduplicator compares against.
	LatestAlert(ctx context.Context) (*models.Alert, error)
	ListAlerts(ctx context.Context, limit int) ([]models.Alert, error)
}

type ZoneRepository interface {
	AddZone(ctx context.Context, z *models.DisasterZone) error
	GetZone(ctx context.Context, id int64) (*models.DisasterZone, error)
	DeleteZone(ctx context.Context, id int64) error
	ListZones(ctx context.Context) ([]models.DisasterZone, error)
	CountZones(ctx context.Context) (int64, error)
}

type FacilityRepository interface {
	GetFacility(ctx context.Context, id int64) (*models.Facility, error)
	ListShelters(ctx context.Context) ([]models.Shelter, error)
	FindFacilitiesInBounds(ctx context.Context, kind models.FacilityKind, swLat, swLng, neLat, neLng float64) ([]models.Facility, error)
	AddFacility(ctx context.Context, f *models.Facility) error
}
