package audio

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gen2brain/malgo"
)

// CaptureConfig selects the capture format. InputDevice is matched as a
// case-insensitive substring of the device name; empty means the default.
type CaptureConfig struct {
	SampleRate  int
	Channels    int
	InputDevice string
}

// DataCallback receives little-endian 16-bit PCM.
type DataCallback func(data []byte)

// Device is an open capture stream.
type Device interface {
	Start() error
	Stop() error
	Close()
}

// DeviceOpener opens a capture stream that delivers PCM to cb.
type DeviceOpener interface {
	Open(cfg CaptureConfig, cb DataCallback) (Device, error)
}

// MalgoOpener opens capture devices through miniaudio. The context is
// created on first use and shared.
type MalgoOpener struct {
	once    sync.Once
	ctx     *malgo.AllocatedContext
	initErr error
}

func (m *MalgoOpener) context() (*malgo.AllocatedContext, error) {
	m.once.Do(func() {
		m.ctx, m.initErr = malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	})
	return m.ctx, m.initErr
}

func (m *MalgoOpener) Open(cfg CaptureConfig, cb DataCallback) (Device, error) {
	ctx, err := m.context()
	if err != nil {
		return nil, fmt.Errorf("malgo context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(cfg.Channels)
	deviceConfig.SampleRate = uint32(cfg.SampleRate)

	if name := strings.TrimSpace(cfg.InputDevice); name != "" {
		devices, err := ctx.Devices(malgo.Capture)
		if err != nil {
			return nil, fmt.Errorf("malgo devices: %w", err)
		}
		found := false
		for _, d := range devices {
			if strings.Contains(strings.ToLower(d.Name()), strings.ToLower(name)) {
				deviceConfig.Capture.DeviceID = d.ID.Pointer()
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("input device %q not found", name)
		}
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, data []byte, _ uint32) {
			cb(data)
		},
	}
	dev, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, err
	}
	return &malgoDevice{device: dev}, nil
}

// Close releases the shared context.
func (m *MalgoOpener) Close() {
	if m.ctx != nil {
		_ = m.ctx.Uninit()
		m.ctx.Free()
	}
}

type malgoDevice struct {
	device *malgo.Device
}

func (d *malgoDevice) Start() error {
	return d.device.Start()
}

func (d *malgoDevice) Stop() error {
	return d.device.Stop()
}

func (d *malgoDevice) Close() {
	d.device.Uninit()
}
