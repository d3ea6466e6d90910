package devices

import (
	"time"

	"github.com/autobreezebeats/breeze-hub-go/internal/db"
)

// Repository persists remembered devices so names survive restarts.
type Repository struct {
	db *db.DBPair
}

// NewRepository creates a device repository.
func NewRepository(dbPair *db.DBPair) *Repository {
	return &Repository{db: dbPair}
}

// Remember upserts a device's display name and last-seen time.
func (r *Repository) Remember(device Device) error {
	_, err := r.db.Writer().Exec(`
		INSERT INTO known_devices (address, name, last_seen_at)
		VALUES (?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET name = excluded.name, last_seen_at = excluded.last_seen_at`,
		device.Address, device.Name, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Remembered returns the saved address-to-name mapping.
func (r *Repository) Remembered() (map[string]string, error) {
	rows, err := r.db.Reader().Query(`SELECT address, name FROM known_devices`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var address, name string
		if err := rows.Scan(&address, &name); err != nil {
			return nil, err
		}
		names[address] = name
	}
	return names, rows.Err()
}
