package devices

import (
	"context"
	"sync"
)

// StaticBackend is an in-memory Backend used when Bluetooth is disabled and
// in tests. Commands mutate its list and are confirmed through the same
// notification path a real backend would use.
type StaticBackend struct {
	mu            sync.Mutex
	devices       []Device
	notifications chan []Device
	closed        bool
}

// NewStaticBackend creates a backend seeded with the given devices.
func NewStaticBackend(seed []Device) *StaticBackend {
	backend := &StaticBackend{
		notifications: make(chan []Device, 8),
	}
	backend.devices = append(backend.devices, seed...)
	if len(seed) > 0 {
		// Initial notification so consumers learn the seed list.
		backend.notifications <- append([]Device(nil), seed...)
	}
	return backend
}

// Devices implements Backend.
func (s *StaticBackend) Devices(_ context.Context) ([]Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Device(nil), s.devices...), nil
}

// Connect implements Backend. The state change is published as a
// notification rather than applied to any caller-visible state directly.
func (s *StaticBackend) Connect(_ context.Context, address string) error {
	return s.setConnected(address, true)
}

// Disconnect implements Backend.
func (s *StaticBackend) Disconnect(_ context.Context, address string) error {
	return s.setConnected(address, false)
}

// SetPrimary implements Backend; a nil return is the confirmation.
func (s *StaticBackend) SetPrimary(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, device := range s.devices {
		if device.Address == address {
			return nil
		}
	}
	return ErrUnknownDevice
}

// Notifications implements Backend.
func (s *StaticBackend) Notifications() <-chan []Device {
	return s.notifications
}

// Close implements Backend.
func (s *StaticBackend) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.notifications)
	}
	return nil
}

// Publish pushes an arbitrary device list through the notification stream.
func (s *StaticBackend) Publish(list []Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices = append([]Device(nil), list...)
	s.notifyLocked()
}

func (s *StaticBackend) setConnected(address string, connected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for i := range s.devices {
		if s.devices[i].Address == address {
			s.devices[i].Connected = connected
			found = true
		}
	}
	if !found {
		return ErrUnknownDevice
	}
	s.notifyLocked()
	return nil
}

// notifyLocked emits the current device list. Caller holds mu, which keeps
// the closed check and the send atomic with respect to Close. When nobody
// drains the channel the oldest pending list is dropped; the newest list
// supersedes it anyway.
func (s *StaticBackend) notifyLocked() {
	if s.closed {
		return
	}
	list := append([]Device(nil), s.devices...)
	select {
	case s.notifications <- list:
	default:
		select {
		case <-s.notifications:
		default:
		}
		select {
		case s.notifications <- list:
		default:
		}
	}
}
