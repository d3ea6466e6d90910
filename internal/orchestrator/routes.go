package orchestrator

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/autobreezebeats/breeze-hub-go/internal/api"
	"github.com/autobreezebeats/breeze-hub-go/internal/apperrors"
	"github.com/autobreezebeats/breeze-hub-go/internal/hub"
)

// version is reported by the status endpoint.
const version = "1.0.0"

type addVideoRequest struct {
	Query string `json:"query"`
}

// RegisterRoutes mounts the playback, autoplay, and weather endpoints.
func (c *Core) RegisterRoutes(r chi.Router, logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}

	r.Method("POST", "/v1/playback/videos", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		var req addVideoRequest
		if err := api.DecodeJSON(r, &req); err != nil {
			return err
		}
		query := strings.TrimSpace(req.Query)
		if query == "" {
			return apperrors.NewValidationError("query is required", nil)
		}

		// Resolution blocks the caller, not the loop.
		ctx, cancel := context.WithTimeout(r.Context(), c.resolveTimeout)
		defer cancel()
		video, err := c.provider.Resolve(ctx, query)
		if err != nil {
			logger.Printf("Resolution failed for %q: %v", query, err)
			return apperrors.NewResolutionError(query)
		}

		c.AddVideo(video)
		return api.WriteJSON(w, http.StatusCreated, hub.NewVideoInfo(video))
	}))

	r.Method("GET", "/v1/playback", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteJSON(w, http.StatusOK, c.State())
	}))

	r.Method("POST", "/v1/playback/autoplay", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteJSON(w, http.StatusOK, map[string]bool{"autoplay": c.ToggleAutoplay()})
	}))

	r.Method("GET", "/v1/status", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteJSON(w, http.StatusOK, map[string]any{
			"service":  "breeze-hub",
			"version":  version,
			"sessions": c.broadcaster.Count(),
			"state":    c.TransportState(),
		})
	}))

	r.Method("GET", "/v1/weather", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		snapshot, captured := c.Weather()
		if !captured {
			return apperrors.NewAppError(apperrors.ErrorCodeWeatherUnavailable,
				"No weather snapshot captured yet", http.StatusServiceUnavailable, nil)
		}
		return api.WriteJSON(w, http.StatusOK, hub.NewWeatherInfo(snapshot, time.Now()))
	}))
}
