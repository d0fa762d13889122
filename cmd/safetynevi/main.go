package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/kljl6773-hub/SafetyNevi/internal/api"
	"github.com/kljl6773-hub/SafetyNevi/internal/classifier"
	"github.com/kljl6773-hub/SafetyNevi/internal/config"
	"github.com/kljl6773-hub/SafetyNevi/internal/events"
	"github.com/kljl6773-hub/SafetyNevi/internal/ingestion"
	"github.com/kljl6773-hub/SafetyNevi/internal/logging"
	"github.com/kljl6773-hub/SafetyNevi/internal/observability"
	"github.com/kljl6773-hub/SafetyNevi/internal/recommend"
	"github.com/kljl6773-hub/SafetyNevi/internal/repository"
	"github.com/kljl6773-hub/SafetyNevi/internal/routing"
	"github.com/kljl6773-hub/SafetyNevi/internal/weather"
	"github.com/kljl6773-hub/SafetyNevi/internal/zones"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Zone events feed the SSE stream
	broadcaster := events.NewBroadcaster()
	zoneService := zones.NewService(db, clock, broadcaster)

	// Ingestion pipeline
	var poller *ingestion.Poller
	if cfg.Ingestion.Enabled {
		source := ingestion.NewHTTPSource(cfg.Ingestion.SourceURL)
		cls := classifier.NewClient(cfg.Classifier.URL, cfg.Classifier.Timeout)
		poller = ingestion.NewPoller(source, db, cls, zoneService, cfg.Ingestion.PollInterval, clock, metrics)
		poller.Start(ctx)
	}

	// Route cache is optional; no Redis address disables it
	var routeCache *routing.Cache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		routeCache = routing.NewCache(rdb, cfg.Routing.CacheTTL)
		defer rdb.Close()
	}
	router := routing.NewClient(cfg.Routing.DirectionsURL, cfg.Routing.APIKey, cfg.Routing.Timeout, routeCache)

	engine := recommend.NewEngine(db)
	wx := weather.NewClient(cfg.Weather.ObservationURL, cfg.Weather.AddressURL, cfg.Weather.ServiceKey, cfg.Weather.APIKey, cfg.Weather.Timeout)

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())
	ginRouter.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	ginRouter.Use(api.RateLimitMiddleware(5)) // 5 req/s global limit
	ginRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler := api.NewHandler(zoneService, engine, router, wx, db, broadcaster, metrics)
	handler.RegisterRoutes(ginRouter)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: ginRouter,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	if poller != nil {
		poller.Stop()
	}
	broadcaster.Close() // Close all streams gracefully

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
