package devices

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/autobreezebeats/breeze-hub-go/internal/api"
	"github.com/autobreezebeats/breeze-hub-go/internal/apperrors"
)

// Roster is the serialized view of tracked devices. The orchestrator core
// implements it; handlers never touch the tracker directly.
type Roster interface {
	Devices() []Device
	KnownDevice(address string) bool
	ConfirmPrimary(address string)
}

type deviceRequest struct {
	Address string `json:"address"`
}

// RegisterRoutes mounts the device endpoints. Backend calls happen on the
// handler goroutine with a bounded timeout; state changes only land once the
// backend's own notification confirms them.
func RegisterRoutes(r chi.Router, backend Backend, roster Roster, commandTimeout time.Duration, logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}

	decodeAddress := func(r *http.Request) (string, error) {
		var req deviceRequest
		if err := api.DecodeJSON(r, &req); err != nil {
			return "", err
		}
		address := strings.TrimSpace(req.Address)
		if address == "" {
			return "", apperrors.NewValidationError("address is required", nil)
		}
		if !roster.KnownDevice(address) {
			return "", apperrors.NewUnknownDeviceError(address)
		}
		return address, nil
	}

	r.Method("GET", "/v1/devices", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteJSON(w, http.StatusOK, roster.Devices())
	}))

	r.Method("POST", "/v1/devices/connect", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		address, err := decodeAddress(r)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
		defer cancel()
		if err := backend.Connect(ctx, address); err != nil {
			logger.Printf("Connect %s failed: %v", address, err)
			return apperrors.NewDeviceBackendError(address)
		}
		return api.WriteJSON(w, http.StatusOK, map[string]string{"address": address, "status": "connecting"})
	}))

	r.Method("POST", "/v1/devices/disconnect", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		address, err := decodeAddress(r)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
		defer cancel()
		if err := backend.Disconnect(ctx, address); err != nil {
			logger.Printf("Disconnect %s failed: %v", address, err)
			return apperrors.NewDeviceBackendError(address)
		}
		return api.WriteJSON(w, http.StatusOK, map[string]string{"address": address, "status": "disconnecting"})
	}))

	r.Method("POST", "/v1/devices/primary", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		address, err := decodeAddress(r)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
		defer cancel()
		if err := backend.SetPrimary(ctx, address); err != nil {
			logger.Printf("Set primary %s failed: %v", address, err)
			return apperrors.NewDeviceBackendError(address)
		}
		roster.ConfirmPrimary(address)
		return api.WriteJSON(w, http.StatusOK, map[string]string{"address": address, "status": "primary"})
	}))
}
