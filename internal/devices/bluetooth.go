package devices

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// BluetoothBackend drives bluetoothctl for device control and pactl for
// audio sink routing. Device-changed notifications are produced by a
// polling watcher that diffs the device list.
type BluetoothBackend struct {
	scanInterval  time.Duration
	notifications chan []Device
	logger        *log.Logger

	mu       sync.Mutex
	lastSeen []Device

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewBluetoothBackend creates the backend and starts its watcher.
func NewBluetoothBackend(scanInterval time.Duration, logger *log.Logger) *BluetoothBackend {
	if logger == nil {
		logger = log.Default()
	}
	backend := &BluetoothBackend{
		scanInterval:  scanInterval,
		notifications: make(chan []Device, 8),
		logger:        logger,
		stopCh:        make(chan struct{}),
	}
	backend.wg.Add(1)
	go backend.watch()
	return backend
}

// Devices implements Backend.
func (b *BluetoothBackend) Devices(ctx context.Context) ([]Device, error) {
	out, err := exec.CommandContext(ctx, "bluetoothctl", "devices").Output()
	if err != nil {
		return nil, fmt.Errorf("bluetoothctl devices: %w", err)
	}

	var devices []Device
	for _, line := range strings.Split(string(out), "\n") {
		// Format: "Device XX:XX:XX:XX:XX:XX Some Name"
		fields := strings.SplitN(strings.TrimSpace(line), " ", 3)
		if len(fields) < 3 || fields[0] != "Device" {
			continue
		}
		address := fields[1]
		devices = append(devices, Device{
			Address:   address,
			Name:      fields[2],
			Connected: b.isConnected(ctx, address),
		})
	}
	return devices, nil
}

// Connect implements Backend.
func (b *BluetoothBackend) Connect(ctx context.Context, address string) error {
	if err := exec.CommandContext(ctx, "bluetoothctl", "connect", address).Run(); err != nil {
		return fmt.Errorf("connect %s: %w", address, err)
	}
	return nil
}

// Disconnect implements Backend.
func (b *BluetoothBackend) Disconnect(ctx context.Context, address string) error {
	if err := exec.CommandContext(ctx, "bluetoothctl", "disconnect", address).Run(); err != nil {
		return fmt.Errorf("disconnect %s: %w", address, err)
	}
	return nil
}

// SetPrimary implements Backend by pointing the default PulseAudio sink at
// the device's A2DP sink.
func (b *BluetoothBackend) SetPrimary(ctx context.Context, address string) error {
	sinkName := fmt.Sprintf("bluez_sink.%s.a2dp_sink", strings.ReplaceAll(address, ":", "_"))
	if err := exec.CommandContext(ctx, "pactl", "set-default-sink", sinkName).Run(); err != nil {
		return fmt.Errorf("set sink %s: %w", sinkName, err)
	}
	return nil
}

// Notifications implements Backend.
func (b *BluetoothBackend) Notifications() <-chan []Device {
	return b.notifications
}

// Close implements Backend.
func (b *BluetoothBackend) Close() error {
	b.stopOnce.Do(func() { close(b.stopCh) })
	b.wg.Wait()
	close(b.notifications)
	return nil
}

func (b *BluetoothBackend) isConnected(ctx context.Context, address string) bool {
	out, err := exec.CommandContext(ctx, "bluetoothctl", "info", address).Output()
	if err != nil {
		return false
	}
	return strings.Contains(string(out), "Connected: yes")
}

// watch polls the device list and emits a notification whenever it changes.
func (b *BluetoothBackend) watch() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), b.scanInterval)
			devices, err := b.Devices(ctx)
			cancel()
			if err != nil {
				b.logger.Printf("Device scan failed: %v", err)
				continue
			}

			b.mu.Lock()
			changed := !sameDevices(b.lastSeen, devices)
			if changed {
				b.lastSeen = devices
			}
			b.mu.Unlock()

			if changed {
				select {
				case b.notifications <- devices:
				case <-b.stopCh:
					return
				}
			}
		}
	}
}

func sameDevices(a, b []Device) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
