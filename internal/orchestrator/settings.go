package orchestrator

import (
	"log"
	"time"

	"github.com/autobreezebeats/breeze-hub-go/internal/db"
)

const settingAutoplay = "autoplay"

// Settings persists orchestrator preferences in the settings table so the
// autoplay toggle survives restarts.
type Settings struct {
	db     *db.DBPair
	logger *log.Logger
}

// NewSettings wraps the database pair.
func NewSettings(pair *db.DBPair, logger *log.Logger) *Settings {
	if logger == nil {
		logger = log.Default()
	}
	return &Settings{db: pair, logger: logger}
}

// Autoplay loads the persisted autoplay flag, defaulting to false.
func (s *Settings) Autoplay() bool {
	if s == nil || s.db == nil {
		return false
	}
	var value string
	err := s.db.Reader().QueryRow(
		`SELECT value FROM settings WHERE key = ?`, settingAutoplay,
	).Scan(&value)
	if err != nil {
		return false
	}
	return value == "true"
}

// SaveAutoplay stores the autoplay flag off the caller's goroutine. Failures
// are logged; the in-memory flag stays authoritative.
func (s *Settings) SaveAutoplay(enabled bool) {
	if s == nil || s.db == nil {
		return
	}
	value := "false"
	if enabled {
		value = "true"
	}
	go func() {
		_, err := s.db.Writer().Exec(
			`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			settingAutoplay, value, time.Now().UTC().Format(time.RFC3339),
		)
		if err != nil {
			s.logger.Printf("Failed to persist autoplay flag: %v", err)
		}
	}()
}
