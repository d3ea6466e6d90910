package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the base server configuration.
type Config struct {
	Host         string
	Port         string
	SQLiteDBPath string

	// Auth is disabled entirely when JWTSecret is empty (LAN-only deployments).
	JWTSecret                string
	PairingCode              string
	JWTAccessTokenExpirySec  int
	JWTRefreshTokenExpirySec int

	// Playback
	CuratedSongsPath string
	ResolveTimeoutMs int
	TickIntervalMs   int
	AutoplayIdleSec  int

	// Orchestrator
	EventBufferSize    int
	SessionMailboxSize int

	// Weather (OpenWeatherMap). City+Country take precedence over Lat/Lon
	// and are geocoded once at startup.
	WeatherAPIKey          string
	WeatherLat             float64
	WeatherLon             float64
	WeatherCity            string
	WeatherCountry         string
	WeatherPollIntervalMin int

	// Bluetooth backend
	DisableBluetooth       bool
	DeviceScanIntervalMs   int
	DeviceCommandTimeoutMs int
}

// Load reads configuration from environment variables with defaults.
func Load() (Config, error) {
	cfg := Config{
		Host:                     envString("HOST", "0.0.0.0"),
		Port:                     envString("PORT", "8000"),
		SQLiteDBPath:             envString("SQLITE_DB_PATH", "./data/breeze-hub.db"),
		JWTSecret:                envString("JWT_SECRET", ""),
		PairingCode:              envString("PAIRING_CODE", ""),
		JWTAccessTokenExpirySec:  envInt("JWT_ACCESS_TOKEN_EXPIRY", 3600),
		JWTRefreshTokenExpirySec: envInt("JWT_REFRESH_TOKEN_EXPIRY", 2592000),
		CuratedSongsPath:         envString("CURATED_SONGS_PATH", "./stored_songs.yaml"),
		ResolveTimeoutMs:         envInt("RESOLVE_TIMEOUT_MS", 30000),
		TickIntervalMs:           envInt("TICK_INTERVAL_MS", 1000),
		AutoplayIdleSec:          envInt("AUTOPLAY_IDLE_SEC", 20),
		EventBufferSize:          envInt("EVENT_BUFFER_SIZE", 256),
		SessionMailboxSize:       envInt("SESSION_MAILBOX_SIZE", 32),
		WeatherAPIKey:            envString("WEATHER_API_KEY", ""),
		WeatherLat:               envFloat("WEATHER_LAT", 51.5073219),
		WeatherLon:               envFloat("WEATHER_LON", -0.1276474),
		WeatherCity:              envString("WEATHER_CITY", ""),
		WeatherCountry:           envString("WEATHER_COUNTRY", ""),
		WeatherPollIntervalMin:   envInt("WEATHER_POLL_INTERVAL_MIN", 10),
		DisableBluetooth:         envBool("DISABLE_BLUETOOTH", false),
		DeviceScanIntervalMs:     envInt("DEVICE_SCAN_INTERVAL_MS", 5000),
		DeviceCommandTimeoutMs:   envInt("DEVICE_COMMAND_TIMEOUT_MS", 10000),
	}

	if cfg.JWTSecret != "" && len(strings.TrimSpace(cfg.JWTSecret)) < 32 {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least 32 characters when set")
	}
	if cfg.JWTSecret != "" && cfg.PairingCode == "" {
		return Config{}, fmt.Errorf("PAIRING_CODE is required when JWT_SECRET is set")
	}
	if cfg.TickIntervalMs <= 0 {
		return Config{}, fmt.Errorf("TICK_INTERVAL_MS must be positive")
	}
	if cfg.EventBufferSize <= 0 || cfg.SessionMailboxSize <= 0 {
		return Config{}, fmt.Errorf("buffer sizes must be positive")
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func envInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return strings.EqualFold(val, "true")
}
