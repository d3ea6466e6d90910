package server

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/autobreezebeats/breeze-hub-go/internal/api"
	"github.com/autobreezebeats/breeze-hub-go/internal/auth"
	"github.com/autobreezebeats/breeze-hub-go/internal/catalog"
	"github.com/autobreezebeats/breeze-hub-go/internal/config"
	"github.com/autobreezebeats/breeze-hub-go/internal/db"
	"github.com/autobreezebeats/breeze-hub-go/internal/devices"
	"github.com/autobreezebeats/breeze-hub-go/internal/hub"
	"github.com/autobreezebeats/breeze-hub-go/internal/orchestrator"
	"github.com/autobreezebeats/breeze-hub-go/internal/playback"
	"github.com/autobreezebeats/breeze-hub-go/internal/telemetry"
	"github.com/autobreezebeats/breeze-hub-go/internal/weather"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestLoggerMiddleware logs all incoming HTTP requests
func requestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		log.Printf("%s %s %d %s request=%s",
			r.Method, r.URL.Path, wrapped.status, time.Since(start).Round(time.Millisecond), api.RequestID(r))
	})
}

// Metrics register on the default Prometheus registry, so they are created
// once per process even when tests build multiple handlers.
var (
	metricsOnce sync.Once
	metrics     *telemetry.Metrics
)

func sharedMetrics() *telemetry.Metrics {
	metricsOnce.Do(func() { metrics = telemetry.New() })
	return metrics
}

// Options controls server wiring.
type Options struct {
	// Backend overrides the device backend (for tests).
	Backend devices.Backend
	// Provider overrides the video resolver (for tests).
	Provider catalog.Provider
}

// NewHandler builds the HTTP handler and returns a shutdown function.
func NewHandler(cfg config.Config, options Options) (http.Handler, func(context.Context) error, error) {
	logger := log.Default()

	log.Printf("Using database: %s", cfg.SQLiteDBPath)
	dbPair, err := db.Init(cfg.SQLiteDBPath)
	if err != nil {
		return nil, nil, err
	}

	router := chi.NewRouter()
	router.Use(middleware.StripSlashes)
	router.Use(api.RequestIDMiddleware)
	router.Use(requestLoggerMiddleware)
	router.Use(api.RecovererMiddleware)
	router.Use(auth.Middleware(cfg))

	registerHealthRoutes(router)
	router.Method(http.MethodGet, "/metrics", telemetry.Handler())
	auth.RegisterRoutes(router, cfg)

	curated, err := catalog.LoadCurated(cfg.CuratedSongsPath)
	if err != nil {
		_ = dbPair.Close()
		return nil, nil, err
	}
	selector := playback.NewSelector(curated, logger)

	provider := options.Provider
	if provider == nil {
		provider = catalog.NewResolver(logger)
	}

	repo := devices.NewRepository(dbPair)
	backend := options.Backend
	if backend == nil {
		if cfg.DisableBluetooth {
			backend = devices.NewStaticBackend(rememberedSeed(repo, logger))
		} else {
			backend = devices.NewBluetoothBackend(time.Duration(cfg.DeviceScanIntervalMs)*time.Millisecond, logger)
		}
	}

	broadcaster := hub.NewBroadcaster(logger)
	settings := orchestrator.NewSettings(dbPair, logger)
	core := orchestrator.NewCore(&cfg, provider, selector, backend, repo, settings, broadcaster, sharedMetrics(), logger)
	core.Start()

	core.RegisterRoutes(router, logger)
	devices.RegisterRoutes(router, backend, core, time.Duration(cfg.DeviceCommandTimeoutMs)*time.Millisecond, logger)
	hub.RegisterRoutes(router, core, cfg.SessionMailboxSize, logger)

	var poller *weather.Poller
	if cfg.WeatherAPIKey != "" {
		client := weather.NewClient(cfg, logger)
		poller = weather.NewPoller(client, core.UpdateWeather,
			time.Duration(cfg.WeatherPollIntervalMin)*time.Minute, logger)
		if err := poller.Start(); err != nil {
			_ = dbPair.Close()
			return nil, nil, err
		}
	} else {
		log.Printf("WEATHER_API_KEY not set, weather polling disabled")
	}

	shutdown := func(ctx context.Context) error {
		if poller != nil {
			poller.Stop()
		}
		core.Stop()
		if err := backend.Close(); err != nil {
			log.Printf("backend close error: %v", err)
		}
		return dbPair.Close()
	}

	return router, shutdown, nil
}

// rememberedSeed lists previously seen devices so the static backend starts
// with something to show.
func rememberedSeed(repo *devices.Repository, logger *log.Logger) []devices.Device {
	remembered, err := repo.Remembered()
	if err != nil {
		logger.Printf("Failed to load remembered devices: %v", err)
		return nil
	}
	seed := make([]devices.Device, 0, len(remembered))
	for address, name := range remembered {
		seed = append(seed, devices.Device{Address: address, Name: name})
	}
	return seed
}

func registerHealthRoutes(router chi.Router) {
	router.Method(http.MethodGet, "/v1/health", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		response := map[string]any{
			"status":    "healthy",
			"service":   "breeze-hub",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		return api.WriteJSON(w, http.StatusOK, response)
	}))
	router.Method(http.MethodGet, "/v1/health/live", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}))
	router.Method(http.MethodGet, "/v1/health/ready", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	}))
}
