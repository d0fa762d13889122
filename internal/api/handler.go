package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kljl6773-hub/SafetyNevi/internal/models"
	"github.com/kljl6773-hub/SafetyNevi/internal/observability"
	"github.com/kljl6773-hub/SafetyNevi/internal/recommend"
	"github.com/kljl6773-hub/SafetyNevi/internal/repository"
	"github.com/kljl6773-hub/SafetyNevi/internal/weather"
)

// ZoneService is the zone-lifecycle surface the handlers call.
type ZoneService interface {
	CreateCircleZone(ctx context.Context, actor string, lat, lon float64, disasterType string, radius float64, duration time.Duration) (*models.DisasterZone, error)
	CreateAreaZone(ctx context.Context, actor, areaName, disasterType string, duration time.Duration) (*models.DisasterZone, error)
	DeleteZone(ctx context.Context, actor string, id int64) error
	ListActive(ctx context.Context) ([]models.DisasterZone, error)
	CountAll(ctx context.Context) (int64, error)
}

type Recommender interface {
	Recommend(ctx context.Context, lat, lon float64) ([]recommend.Result, error)
}

type PathResolver interface {
	ResolvePath(ctx context.Context, startLat, startLon, endLat, endLon float64) (json.RawMessage, error)
}

type WeatherService interface {
	Lookup(ctx context.Context, lat, lon float64) (weather.Report, error)
}

// ZoneStream delivers newly created zones to live subscribers.
type ZoneStream interface {
	Subscribe() (uint64, chan *models.DisasterZone)
	Unsubscribe(id uint64)
}

type Handler struct {
	zones       ZoneService
	recommender Recommender
	paths       PathResolver
	weather     WeatherService
	facilities  repository.FacilityRepository
	stream      ZoneStream
	metrics     *observability.Metrics
}

func NewHandler(zones ZoneService, recommender Recommender, paths PathResolver, wx WeatherService, facilities repository.FacilityRepository, stream ZoneStream, metrics *observability.Metrics) *Handler {
	return &Handler{
		zones:       zones,
		recommender: recommender,
		paths:       paths,
		weather:     wx,
		facilities:  facilities,
		stream:      stream,
		metrics:     metrics,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)

	r.GET("/api/disaster-zones", h.getActiveZones)
	r.GET("/api/disaster-zones/stream", h.streamZones)

	r.POST("/api/admin/simulate", h.simulateCircleZone)
	r.POST("/api/admin/simulate-area", h.simulateAreaZone)
	r.DELETE("/api/admin/disaster/:id", h.deleteZone)
	r.GET("/api/admin/stats", h.adminStats)

	r.GET("/api/route/recommend", h.recommendShelters)
	r.GET("/api/route/path", h.resolvePath)

	r.GET("/api/facilities", h.getFacilitiesInBounds)
	r.GET("/api/facilities/:id", h.getFacilityDetail)

	r.GET("/api/weather", h.getWeather)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// actor is the authenticated identity the outer layers hand us. It is
// passed explicitly into zone operations instead of living in ambient
// session state.
func actor(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return "anonymous"
}

// --- zones ---

type zoneResponse struct {
	ID           int64     `json:"id"`
	DisasterType string    `json:"disasterType"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	Radius       *float64  `json:"radius,omitempty"`
	AreaName     string    `json:"areaName,omitempty"`
	StartTime    time.Time `json:"startTime"`
	ExpiryTime   time.Time `json:"expiryTime"`
}

func toZoneResponse(z *models.DisasterZone) zoneResponse {
	return zoneResponse{
		ID:           z.ID,
		DisasterType: z.DisasterType,
		Latitude:     z.Latitude,
		Longitude:    z.Longitude,
		Radius:       z.Radius,
		AreaName:     z.AreaName,
		StartTime:    z.StartTime,
		ExpiryTime:   z.ExpiryTime,
	}
}

func (h *Handler) getActiveZones(c *gin.Context) {
	zones, err := h.zones.ListActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list disaster zones"})
		return
	}

	resp := make([]zoneResponse, 0, len(zones))
	for i := range zones {
		resp = append(resp, toZoneResponse(&zones[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) simulateCircleZone(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lon, err2 := strconv.ParseFloat(c.Query("lon"), 64)
	radius, err3 := strconv.ParseFloat(c.Query("radius"), 64)
	durationMin, err4 := strconv.Atoi(c.Query("durationMinutes"))
	disasterType := c.Query("type")
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || disasterType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat, lon, type, radius and durationMinutes are required"})
		return
	}

	zone, err := h.zones.CreateCircleZone(c.Request.Context(), actor(c), lat, lon, disasterType, radius, time.Duration(durationMin)*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create zone"})
		return
	}
	h.metrics.ZonesCreated.WithLabelValues("circle").Inc()
	c.JSON(http.StatusOK, toZoneResponse(zone))
}

func (h *Handler) simulateAreaZone(c *gin.Context) {
	areaName := c.Query("areaName")
	disasterType := c.Query("type")
	durationMin, err := strconv.Atoi(c.Query("durationMinutes"))
	if err != nil || areaName == "" || disasterType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "areaName, type and durationMinutes are required"})
		return
	}

	zone, err := h.zones.CreateAreaZone(c.Request.Context(), actor(c), areaName, disasterType, time.Duration(durationMin)*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create zone"})
		return
	}
	h.metrics.ZonesCreated.WithLabelValues("area").Inc()
	c.JSON(http.StatusOK, toZoneResponse(zone))
}

func (h *Handler) deleteZone(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid zone id"})
		return
	}

	if err := h.zones.DeleteZone(c.Request.Context(), actor(c), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "zone not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete zone"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) adminStats(c *gin.Context) {
	count, err := h.zones.CountAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count zones"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"disasterCount": count})
}

func (h *Handler) streamZones(c *gin.Context) {
	id, ch := h.stream.Subscribe()
	defer h.stream.Unsubscribe(id)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case z, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("zone", toZoneResponse(z))
			return true
		}
	})
}

// --- recommendation & routing ---

func (h *Handler) recommendShelters(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lon, err2 := strconv.ParseFloat(c.Query("lon"), 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon are required"})
		return
	}

	h.metrics.RecommendRequests.Inc()
	results, err := h.recommender.Recommend(c.Request.Context(), lat, lon)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute recommendations"})
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *Handler) resolvePath(c *gin.Context) {
	startLat, err1 := strconv.ParseFloat(c.Query("startLat"), 64)
	startLon, err2 := strconv.ParseFloat(c.Query("startLon"), 64)
	endLat, err3 := strconv.ParseFloat(c.Query("endLat"), 64)
	endLon, err4 := strconv.ParseFloat(c.Query("endLon"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startLat, startLon, endLat and endLon are required"})
		return
	}

	geom, err := h.paths.ResolvePath(c.Request.Context(), startLat, startLon, endLat, endLon)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "path finding failed"})
		return
	}
	c.Data(http.StatusOK, "application/json", geom)
}

// --- facilities ---

func (h *Handler) getFacilitiesInBounds(c *gin.Context) {
	kind := models.FacilityKind(c.Query("type"))
	switch kind {
	case models.FacilityShelter, models.FacilityHospital, models.FacilityPolice, models.FacilityFire:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown facility type"})
		return
	}

	swLat, err1 := strconv.ParseFloat(c.Query("swLat"), 64)
	swLng, err2 := strconv.ParseFloat(c.Query("swLng"), 64)
	neLat, err3 := strconv.ParseFloat(c.Query("neLat"), 64)
	neLng, err4 := strconv.ParseFloat(c.Query("neLng"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "swLat, swLng, neLat and neLng are required"})
		return
	}

	facilities, err := h.facilities.FindFacilitiesInBounds(c.Request.Context(), kind, swLat, swLng, neLat, neLng)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query facilities"})
		return
	}

	resp := make([]gin.H, 0, len(facilities))
	for i := range facilities {
		f := &facilities[i]
		resp = append(resp, gin.H{
			"id":        f.ID,
			"type":      f.Kind,
			"name":      f.Name,
			"latitude":  f.Latitude,
			"longitude": f.Longitude,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getFacilityDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid facility id"})
		return
	}

	f, err := h.facilities.GetFacility(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "facility not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load facility"})
		return
	}

	c.JSON(http.StatusOK, facilityDetail(f))
}

// facilityDetail projects the variant payload by exhaustive kind
// switch; there is no runtime type probing.
func facilityDetail(f *models.Facility) gin.H {
	detail := gin.H{
		"id":        f.ID,
		"type":      f.Kind,
		"name":      f.Name,
		"address":   f.Address,
		"latitude":  f.Latitude,
		"longitude": f.Longitude,
	}

	switch f.Kind {
	case models.FacilityShelter:
		if f.Shelter != nil {
			detail["operatingStatus"] = f.Shelter.OperatingStatus
			detail["locationType"] = f.Shelter.LocationType
			detail["maxCapacity"] = f.Shelter.MaxCapacity
			detail["areaM2"] = f.Shelter.AreaM2
		}
	case models.FacilityHospital:
		if f.Hospital != nil {
			detail["operatingStatus"] = f.Hospital.OperatingStatus
			detail["subType"] = f.Hospital.SubType
			detail["phoneNumber"] = f.Hospital.PhoneNumber
			detail["bedCount"] = f.Hospital.BedCount
			detail["staffCount"] = f.Hospital.StaffCount
		}
	case models.FacilityPolice:
		if f.Police != nil {
			detail["phoneNumber"] = f.Police.PhoneNumber
			detail["branch"] = f.Police.Branch
			detail["region"] = f.Police.Region
		}
	case models.FacilityFire:
		if f.Fire != nil {
			detail["phoneNumber"] = f.Fire.PhoneNumber
			detail["subType"] = f.Fire.SubType
		}
	}

	return detail
}

// --- weather ---

func (h *Handler) getWeather(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lon, err2 := strconv.ParseFloat(c.Query("lon"), 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon are required"})
		return
	}

	report, err := h.weather.Lookup(c.Request.Context(), lat, lon)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "weather lookup failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}
