package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/autobreezebeats/breeze-hub-go/internal/api"
	"github.com/autobreezebeats/breeze-hub-go/internal/apperrors"
	"github.com/autobreezebeats/breeze-hub-go/internal/config"
)

// RegisterRoutes wires token issuance and refresh endpoints.
func RegisterRoutes(router chi.Router, cfg config.Config) {
	tokens := NewTokens(cfg)

	router.Method(http.MethodPost, "/v1/auth/token", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		var body struct {
			PairingCode string `json:"pairing_code"`
			ClientName  string `json:"client_name"`
		}
		if err := api.DecodeJSON(r, &body); err != nil {
			return err
		}
		if body.ClientName == "" {
			return apperrors.NewValidationError("client_name is required", nil)
		}
		if subtle.ConstantTimeCompare([]byte(body.PairingCode), []byte(cfg.PairingCode)) != 1 {
			return apperrors.NewUnauthorizedError("Invalid pairing code", apperrors.ErrorCodeAuthPairingInvalid)
		}

		pair, err := tokens.Issue(Identity{
			ClientID:   uuid.NewString(),
			ClientName: body.ClientName,
		})
		if err != nil {
			return apperrors.NewInternalError("Failed to generate tokens")
		}

		return api.WriteJSON(w, http.StatusOK, map[string]any{
			"access_token":  pair.Access,
			"refresh_token": pair.Refresh,
			"expires_in":    pair.ExpiresIn,
		})
	}))

	router.Method(http.MethodPost, "/v1/auth/refresh", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := api.DecodeJSON(r, &body); err != nil {
			return err
		}
		if body.RefreshToken == "" {
			return apperrors.NewValidationError("refresh_token is required", nil)
		}

		accessToken, expiresIn, err := tokens.Refresh(body.RefreshToken)
		if err != nil {
			if err == ErrTokenExpired {
				return apperrors.NewUnauthorizedError("Refresh token has expired", apperrors.ErrorCodeAuthTokenExpired)
			}
			return apperrors.NewUnauthorizedError("Invalid refresh token", apperrors.ErrorCodeAuthTokenInvalid)
		}

		return api.WriteJSON(w, http.StatusOK, map[string]any{
			"access_token": accessToken,
			"expires_in":   expiresIn,
		})
	}))
}
