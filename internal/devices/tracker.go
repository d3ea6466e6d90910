package devices

// Tracker mirrors backend-confirmed device state. It never holds optimistic
// state: connect/disconnect intents do not touch it until the backend's
// notification arrives. Owned by the orchestrator core, which serializes all
// access, so no locking here.
type Tracker struct {
	devices []Device
	primary string
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Apply overwrites the device list with a backend notification. The primary
// marker survives only while its device remains present and connected.
func (t *Tracker) Apply(list []Device) {
	t.devices = make([]Device, len(list))
	copy(t.devices, list)

	if t.primary == "" {
		return
	}
	for _, device := range t.devices {
		if device.Address == t.primary {
			if !device.Connected {
				t.primary = ""
			}
			return
		}
	}
	t.primary = ""
}

// ConfirmPrimary records a backend-confirmed sink change. Any previous
// primary is cleared, keeping the single-primary invariant.
func (t *Tracker) ConfirmPrimary(address string) error {
	if _, ok := t.Find(address); !ok {
		return ErrUnknownDevice
	}
	t.primary = address
	return nil
}

// Find returns the device with the given address.
func (t *Tracker) Find(address string) (Device, bool) {
	for _, device := range t.devices {
		if device.Address == address {
			return device, true
		}
	}
	return Device{}, false
}

// Snapshot returns a copy of the device list with the primary flag set.
func (t *Tracker) Snapshot() []Device {
	snapshot := make([]Device, len(t.devices))
	for i, device := range t.devices {
		device.Primary = device.Address == t.primary
		snapshot[i] = device
	}
	return snapshot
}
