// Package recommend ranks emergency shelters for a query point using
// three successive, mutually exclusive selection passes.
package recommend

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/kljl6773-hub/SafetyNevi/internal/repository"
)

// Recommendation tiers, in pass order.
const (
	TierOptimal          = "optimal"           // operating shelters, nearest first
	TierShortestDistance = "shortest_distance" // any remaining shelter, nearest
	TierLargestCapacity  = "largest_capacity"  // any remaining shelter, biggest
)

// Assumed travel speeds under urban disaster conditions.
const (
	walkSpeedKmph = 4.0
	carSpeedKmph  = 30.0
)

const earthRadiusMeters = 6371_000

// operatingMarkers are substrings of the directory's operating-status
// text that indicate a shelter is open (정상/영업/운영 in the Korean
// directory feed).
var operatingMarkers = []string{"정상", "영업", "운영"}

// Result is one ranked shelter pick. Results are computed fresh per
// request and never persisted.
type Result struct {
	FacilityID      int64   `json:"facilityId"`
	Name            string  `json:"name"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Tier            string  `json:"recommendationType"`
	DistanceMeters  float64 `json:"distanceMeter"`
	WalkMinutes     int     `json:"timeWalk"`
	CarMinutes      int     `json:"timeCar"`
	OperatingStatus string  `json:"operatingStatus"`
	MaxCapacity     int     `json:"maxCapacity"`
}

type Engine struct {
	repo repository.FacilityRepository
}

func NewEngine(repo repository.FacilityRepository) *Engine {
	return &Engine{repo: repo}
}

// Recommend returns up to three tier-labeled shelter picks for the
// query point. Each pass excludes shelters chosen by a prior pass and
// is skipped silently when no candidate remains, so the list may be
// shorter than three but never holds a duplicate or a placeholder.
func (e *Engine) Recommend(ctx context.Context, lat, lon float64) ([]Result, error) {
	shelters, err := e.repo.ListShelters(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading shelters: %w", err)
	}

	candidates := make([]Result, 0, len(shelters))
	for _, s := range shelters {
		dist := Haversine(lat, lon, s.Latitude, s.Longitude)
		candidates = append(candidates, Result{
			FacilityID:      s.ID,
			Name:            s.Name,
			Latitude:        s.Latitude,
			Longitude:       s.Longitude,
			DistanceMeters:  dist,
			WalkMinutes:     travelMinutes(dist, walkSpeedKmph),
			CarMinutes:      travelMinutes(dist, carSpeedKmph),
			OperatingStatus: s.OperatingStatus,
			MaxCapacity:     s.MaxCapacity,
		})
	}

	results := make([]Result, 0, 3)
	chosen := make(map[int64]bool)

	// Pass 1: nearest shelter whose status says it is operating.
	if best, ok := pickMinDistance(candidates, chosen, func(r Result) bool {
		return IsOperating(r.OperatingStatus)
	}); ok {
		best.Tier = TierOptimal
		results = append(results, best)
		chosen[best.FacilityID] = true
	}

	// Pass 2: nearest remaining shelter, status ignored.
	if nearest, ok := pickMinDistance(candidates, chosen, nil); ok {
		nearest.Tier = TierShortestDistance
		results = append(results, nearest)
		chosen[nearest.FacilityID] = true
	}

	// Pass 3: largest remaining shelter, ties broken by first-seen.
	if largest, ok := pickMaxCapacity(candidates, chosen); ok {
		largest.Tier = TierLargestCapacity
		results = append(results, largest)
	}

	return results, nil
}

func pickMinDistance(candidates []Result, chosen map[int64]bool, eligible func(Result) bool) (Result, bool) {
	var best Result
	found := false
	for _, c := range candidates {
		if chosen[c.FacilityID] {
			continue
		}
		if eligible != nil && !eligible(c) {
			continue
		}
		if !found || c.DistanceMeters < best.DistanceMeters {
			best = c
			found = true
		}
	}
	return best, found
}

func pickMaxCapacity(candidates []Result, chosen map[int64]bool) (Result, bool) {
	var best Result
	found := false
	for _, c := range candidates {
		if chosen[c.FacilityID] {
			continue
		}
		if !found || c.MaxCapacity > best.MaxCapacity {
			best = c
			found = true
		}
	}
	return best, found
}

// IsOperating reports whether the directory's free-text status marks a
// facility as open.
func IsOperating(status string) bool {
	for _, marker := range operatingMarkers {
		if strings.Contains(status, marker) {
			return true
		}
	}
	return false
}

// Haversine returns the great-circle distance between two points in
// meters.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// travelMinutes rounds the travel time up to whole minutes.
func travelMinutes(distanceMeters, speedKmph float64) int {
	metersPerMinute := speedKmph * 1000 / 60
	return int(math.Ceil(distanceMeters / metersPerMinute))
}
