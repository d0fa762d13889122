package models

import "time"

// DisasterZone is a time-bounded geographic region with an active
// disaster condition. Exactly one representation is populated: either
// the circle fields (Latitude/Longitude/Radius, all set together) or
// AreaName for an administrative-district zone. Zones are never
// updated in place; they are created, read, and deleted.
type DisasterZone struct {
	ID           int64
	DisasterType string

	// Circle representation.
	Latitude  *float64
	Longitude *float64
	Radius    *float64 // meters

	// Area representation.
	AreaName string

	StartTime  time.Time
	ExpiryTime time.Time
}

// Circle reports whether this zone uses the coordinate+radius form.
func (z *DisasterZone) Circle() bool {
	return z.Latitude != nil && z.Longitude != nil && z.Radius != nil
}

// Active reports whether the zone has not yet expired at the given
// instant. Expiry is evaluated lazily at read time; nothing on the
// record transitions.
func (z *DisasterZone) Active(now time.Time) bool {
	return now.Before(z.ExpiryTime)
}
