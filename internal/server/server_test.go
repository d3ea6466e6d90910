package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/autobreezebeats/breeze-hub-go/internal/catalog"
	"github.com/autobreezebeats/breeze-hub-go/internal/config"
	"github.com/autobreezebeats/breeze-hub-go/internal/devices"
)

type stubProvider struct {
	videos map[string]catalog.Video
}

func (s stubProvider) Resolve(_ context.Context, query string) (catalog.Video, error) {
	video, ok := s.videos[query]
	if !ok {
		return catalog.Video{}, errors.New("not found")
	}
	return video, nil
}

func (s stubProvider) Cached(query string) (catalog.Video, bool) {
	video, ok := s.videos[query]
	return video, ok
}

func testServerConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		SQLiteDBPath:           filepath.Join(t.TempDir(), "test.db"),
		CuratedSongsPath:       filepath.Join(t.TempDir(), "missing.yaml"),
		ResolveTimeoutMs:       1000,
		TickIntervalMs:         1000,
		AutoplayIdleSec:        20,
		EventBufferSize:        16,
		SessionMailboxSize:     8,
		DeviceCommandTimeoutMs: 1000,
	}
}

func newTestServer(t *testing.T, cfg config.Config, options Options) http.Handler {
	t.Helper()
	if options.Provider == nil {
		options.Provider = stubProvider{videos: map[string]catalog.Video{
			"lofi beats": {ID: "v1", Title: "Lofi Beats", Duration: 3600},
		}}
	}
	if options.Backend == nil {
		options.Backend = devices.NewStaticBackend(nil)
	}

	handler, shutdown, err := NewHandler(cfg, options)
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })
	return handler
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthRoutes(t *testing.T) {
	handler := newTestServer(t, testServerConfig(t), Options{})

	for _, path := range []string{"/v1/health", "/v1/health/live", "/v1/health/ready"} {
		rec := doJSON(t, handler, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestAddVideoAndPlaybackState(t *testing.T) {
	handler := newTestServer(t, testServerConfig(t), Options{})

	rec := doJSON(t, handler, http.MethodPost, "/v1/playback/videos", map[string]string{"query": "lofi beats"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var added struct {
		Title    string `json:"title"`
		Duration int    `json:"duration"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &added))
	require.Equal(t, "Lofi Beats", added.Title)

	rec = doJSON(t, handler, http.MethodGet, "/v1/playback", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var state struct {
		Playing *bool `json:"playing"`
		Current any   `json:"current"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.NotNil(t, state.Playing)
	require.True(t, *state.Playing)
	require.NotEqual(t, false, state.Current)
}

func TestAddVideoResolutionFailure(t *testing.T) {
	handler := newTestServer(t, testServerConfig(t), Options{})

	rec := doJSON(t, handler, http.MethodPost, "/v1/playback/videos", map[string]string{"query": "does not exist"})
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "RESOLUTION_FAILED", body.Error.Code)
}

func TestToggleAutoplayRoute(t *testing.T) {
	handler := newTestServer(t, testServerConfig(t), Options{})

	rec := doJSON(t, handler, http.MethodPost, "/v1/playback/autoplay", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body["autoplay"])

	rec = doJSON(t, handler, http.MethodPost, "/v1/playback/autoplay", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body["autoplay"])
}

func TestStatusRoute(t *testing.T) {
	handler := newTestServer(t, testServerConfig(t), Options{})

	rec := doJSON(t, handler, http.MethodGet, "/v1/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Service  string `json:"service"`
		Version  string `json:"version"`
		Sessions int    `json:"sessions"`
		State    string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "breeze-hub", body.Service)
	require.NotEmpty(t, body.Version)
	require.Equal(t, "idle", body.State)
	require.Zero(t, body.Sessions)
}

func TestWeatherUnavailableBeforeFirstPoll(t *testing.T) {
	handler := newTestServer(t, testServerConfig(t), Options{})

	rec := doJSON(t, handler, http.MethodGet, "/v1/weather", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDeviceRoutes(t *testing.T) {
	backend := devices.NewStaticBackend([]devices.Device{
		{Address: "AA:BB", Name: "Kitchen Speaker"},
	})
	handler := newTestServer(t, testServerConfig(t), Options{Backend: backend})

	// The seed notification reaches the tracker through the loop.
	require.Eventually(t, func() bool {
		rec := doJSON(t, handler, http.MethodGet, "/v1/devices", nil)
		var list []devices.Device
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		return len(list) == 1
	}, time.Second, 10*time.Millisecond)

	rec := doJSON(t, handler, http.MethodPost, "/v1/devices/connect", map[string]string{"address": "AA:BB"})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Eventually(t, func() bool {
		rec := doJSON(t, handler, http.MethodGet, "/v1/devices", nil)
		var list []devices.Device
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		return len(list) == 1 && list[0].Connected
	}, time.Second, 10*time.Millisecond)

	rec = doJSON(t, handler, http.MethodPost, "/v1/devices/primary", map[string]string{"address": "AA:BB"})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Eventually(t, func() bool {
		rec := doJSON(t, handler, http.MethodGet, "/v1/devices", nil)
		var list []devices.Device
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		return len(list) == 1 && list[0].Primary
	}, time.Second, 10*time.Millisecond)
}

func TestDeviceRoutesUnknownAddress(t *testing.T) {
	handler := newTestServer(t, testServerConfig(t), Options{})

	rec := doJSON(t, handler, http.MethodPost, "/v1/devices/connect", map[string]string{"address": "ZZ:ZZ"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthProtectsRoutes(t *testing.T) {
	cfg := testServerConfig(t)
	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	cfg.PairingCode = "424242"
	cfg.JWTAccessTokenExpirySec = 3600
	cfg.JWTRefreshTokenExpirySec = 86400
	handler := newTestServer(t, cfg, Options{})

	// Health stays public, playback does not.
	rec := doJSON(t, handler, http.MethodGet, "/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, handler, http.MethodGet, "/v1/playback", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/v1/auth/token", map[string]string{
		"pairing_code": "424242",
		"client_name":  "test-client",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tokens))
	require.NotEmpty(t, tokens.AccessToken)

	req := httptest.NewRequest(http.MethodGet, "/v1/playback", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)
}

func TestWebSocketSnapshotAndCommands(t *testing.T) {
	handler := newTestServer(t, testServerConfig(t), Options{})

	rec := doJSON(t, handler, http.MethodPost, "/v1/playback/videos", map[string]string{"query": "lofi beats"})
	require.Equal(t, http.StatusCreated, rec.Code)

	srv := httptest.NewServer(handler)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws"
	conn, res, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	defer res.Body.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	// First message is the full snapshot.
	var snapshot map[string]any
	require.NoError(t, conn.ReadJSON(&snapshot))
	require.Contains(t, snapshot, "queue")
	require.Contains(t, snapshot, "autoplay")
	require.Equal(t, true, snapshot["playing"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("pause")))

	// Tick deltas may interleave; wait for the one carrying the pause.
	paused := false
	for range 5 {
		var delta map[string]any
		require.NoError(t, conn.ReadJSON(&delta))
		if playing, ok := delta["playing"]; ok {
			require.Equal(t, false, playing)
			paused = true
			break
		}
	}
	require.True(t, paused)
}

func TestAuthRejectsBadPairingCode(t *testing.T) {
	cfg := testServerConfig(t)
	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	cfg.PairingCode = "424242"
	handler := newTestServer(t, cfg, Options{})

	rec := doJSON(t, handler, http.MethodPost, "/v1/auth/token", map[string]string{
		"pairing_code": "999999",
		"client_name":  "test-client",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
