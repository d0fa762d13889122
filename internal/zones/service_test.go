package zones

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kljl6773-hub/SafetyNevi/internal/events"
	"github.com/kljl6773-hub/SafetyNevi/internal/models"
	"github.com/kljl6773-hub/SafetyNevi/internal/repository"
)

// memZoneRepo implements repository.ZoneRepository in memory.
type memZoneRepo struct {
	mu     sync.Mutex
	nextID int64
	zones  map[int64]models.DisasterZone
}

func newMemZoneRepo() *memZoneRepo {
	return &memZoneRepo{zones: make(map[int64]models.DisasterZone)}
}

func (m *memZoneRepo) AddZone(ctx context.Context, z *models.DisasterZone) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	z.ID = m.nextID
	m.zones[z.ID] = *z
	return nil
}

func (m *memZoneRepo) GetZone(ctx context.Context, id int64) (*models.DisasterZone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok := m.zones[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &z, nil
}

func (m *memZoneRepo) DeleteZone(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.zones[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.zones, id)
	return nil
}

func (m *memZoneRepo) ListZones(ctx context.Context) ([]models.DisasterZone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.DisasterZone, 0, len(m.zones))
	for id := int64(1); id <= m.nextID; id++ {
		if z, ok := m.zones[id]; ok {
			out = append(out, z)
		}
	}
	return out, nil
}

func (m *memZoneRepo) CountZones(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.zones)), nil
}

func TestCreateCircleZone(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(t0)
	svc := NewService(newMemZoneRepo(), clock, nil)

	zone, err := svc.CreateCircleZone(context.Background(), "admin", 37.5, 127.0, "flood", 500, 60*time.Minute)
	require.NoError(t, err)

	assert.True(t, zone.Circle())
	assert.Equal(t, 37.5, *zone.Latitude)
	assert.Equal(t, 500.0, *zone.Radius)
	assert.Equal(t, t0, zone.StartTime)
	assert.Equal(t, t0.Add(60*time.Minute), zone.ExpiryTime)
	assert.Empty(t, zone.AreaName)
}

func TestCreateAreaZone(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := NewService(newMemZoneRepo(), clock, nil)

	zone, err := svc.CreateAreaZone(context.Background(), "pipeline", "강원도", "호우", 60*time.Minute)
	require.NoError(t, err)

	assert.False(t, zone.Circle())
	assert.Equal(t, "강원도", zone.AreaName)
	assert.Nil(t, zone.Latitude)
}

func TestCreateZone_RequiresTypeAndDuration(t *testing.T) {
	svc := NewService(newMemZoneRepo(), clockwork.NewFakeClock(), nil)

	_, err := svc.CreateAreaZone(context.Background(), "x", "area", "", time.Minute)
	assert.Error(t, err)

	_, err = svc.CreateCircleZone(context.Background(), "x", 0, 0, "flood", 10, 0)
	assert.Error(t, err)
}

func TestActiveWindow_HalfOpen(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(t0)
	svc := NewService(newMemZoneRepo(), clock, nil)

	_, err := svc.CreateCircleZone(context.Background(), "admin", 37.5, 127.0, "flood", 500, 60*time.Minute)
	require.NoError(t, err)

	// Active immediately at t0.
	active, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 1)

	// Still active at t0+30m.
	clock.Advance(30 * time.Minute)
	active, err = svc.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 1)

	// Inactive at exactly t0+60m: the window is [t0, t0+d).
	clock.Advance(30 * time.Minute)
	active, err = svc.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)

	// And at t0+61m.
	clock.Advance(time.Minute)
	active, err = svc.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestListActive_FiltersMixedSet(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(t0)
	svc := NewService(newMemZoneRepo(), clock, nil)

	_, err := svc.CreateAreaZone(context.Background(), "admin", "경기도", "지진", 10*time.Minute)
	require.NoError(t, err)
	long, err := svc.CreateAreaZone(context.Background(), "admin", "강원도", "호우", 2*time.Hour)
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)

	active, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, long.ID, active[0].ID)

	// Expired zones stay in the total count; expiry is read-time only.
	count, err := svc.CountAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestDeleteZone(t *testing.T) {
	svc := NewService(newMemZoneRepo(), clockwork.NewFakeClock(), nil)

	zone, err := svc.CreateAreaZone(context.Background(), "admin", "서울특별시", "화재", time.Hour)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteZone(context.Background(), "admin", zone.ID))

	count, err := svc.CountAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteZone_UnknownIDIsNotFound(t *testing.T) {
	svc := NewService(newMemZoneRepo(), clockwork.NewFakeClock(), nil)

	err := svc.DeleteZone(context.Background(), "admin", 12345)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateZone_BroadcastsEvent(t *testing.T) {
	broadcaster := events.NewBroadcaster()
	defer broadcaster.Close()

	svc := NewService(newMemZoneRepo(), clockwork.NewFakeClock(), broadcaster)

	id, ch := broadcaster.Subscribe()
	defer broadcaster.Unsubscribe(id)

	created, err := svc.CreateAreaZone(context.Background(), "admin", "부산광역시", "태풍", time.Hour)
	require.NoError(t, err)

	select {
	case z := <-ch:
		assert.Equal(t, created.ID, z.ID)
		assert.Equal(t, "부산광역시", z.AreaName)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for zone event")
	}
}
