package devices

import (
	"context"
	"errors"
)

// Device is one Bluetooth audio output as last confirmed by the backend.
// At most one device carries Primary=true at any instant.
type Device struct {
	Address   string `json:"address"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	Primary   bool   `json:"primary"`
}

// ErrUnknownDevice is returned for commands against an address the tracker
// has never seen. Reported to the issuing caller only, never broadcast.
var ErrUnknownDevice = errors.New("unknown device")

// Backend is the low-level Bluetooth/audio-sink control boundary. Connect,
// Disconnect and SetPrimary forward intent only; resulting state changes are
// confirmed through the Notifications stream.
type Backend interface {
	// Devices enumerates the currently known devices.
	Devices(ctx context.Context) ([]Device, error)
	// Connect asks the backend to connect the device.
	Connect(ctx context.Context, address string) error
	// Disconnect asks the backend to drop the device.
	Disconnect(ctx context.Context, address string) error
	// SetPrimary routes audio output to the device. A nil return is the
	// backend's confirmation.
	SetPrimary(ctx context.Context, address string) error
	// Notifications delivers the full device list whenever it changes,
	// including unsolicited disconnects.
	Notifications() <-chan []Device
	// Close releases backend resources and closes the notification stream.
	Close() error
}
