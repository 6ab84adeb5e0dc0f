// Package microphone exposes the host's audio capture devices as avdevice
// devices, backed by malgo (miniaudio).
package microphone

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/camkit/camsession/internal/logging"
	"github.com/camkit/camsession/pkg/avdevice"
)

const (
	sampleRate = 48000
	channels   = 1
)

var (
	logger = logging.NewLogger("camsession/microphone")

	ctxOnce sync.Once
	ctx     *malgo.AllocatedContext
	ctxErr  error

	errNoMicrophone = errors.New("microphone: no capture device found")
)

func context() (*malgo.AllocatedContext, error) {
	ctxOnce.Do(func() {
		ctx, ctxErr = malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
			logger.Debugf("%v", message)
		})
	})
	return ctx, ctxErr
}

// Devices enumerates the capture devices visible to miniaudio.
func Devices() ([]*Device, error) {
	c, err := context()
	if err != nil {
		return nil, fmt.Errorf("microphone: init context: %w", err)
	}

	infos, err := c.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("microphone: enumerate: %w", err)
	}

	devices := make([]*Device, 0, len(infos))
	for _, info := range infos {
		devices = append(devices, &Device{info: info})
	}
	return devices, nil
}

// Default returns the system default capture device, or the first one found.
func Default() (*Device, error) {
	devices, err := Devices()
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, errNoMicrophone
	}
	for _, d := range devices {
		if d.info.IsDefault > 0 {
			return d, nil
		}
	}
	return devices[0], nil
}

// Device is one audio capture device.
type Device struct {
	info malgo.DeviceInfo

	mu  sync.Mutex
	dev *malgo.Device
}

// Capture starts streaming PCM chunks (s16le, mono, 48 kHz) to onChunk on
// miniaudio's delivery goroutine.
func (d *Device) Capture(onChunk func([]byte)) error {
	c, err := context()
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev != nil {
		return errors.New("microphone: capture already running")
	}

	config := malgo.DefaultDeviceConfig(malgo.Capture)
	config.Capture.Format = malgo.FormatS16
	config.Capture.Channels = channels
	config.SampleRate = sampleRate
	id := d.info.ID
	config.Capture.DeviceID = id.Pointer()

	dev, err := malgo.InitDevice(c.Context, config, malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			chunk := make([]byte, len(input))
			copy(chunk, input)
			onChunk(chunk)
		},
	})
	if err != nil {
		return fmt.Errorf("microphone: init device: %w", err)
	}
	if err := dev.Start(); err != nil {
		dev.Uninit()
		return fmt.Errorf("microphone: start: %w", err)
	}
	d.dev = dev
	return nil
}

// StopCapture halts streaming and releases the device.
func (d *Device) StopCapture() {
	d.mu.Lock()
	dev := d.dev
	d.dev = nil
	d.mu.Unlock()
	if dev != nil {
		dev.Uninit()
	}
}

func (d *Device) ID() string                    { return d.info.ID.String() }
func (d *Device) Label() string                 { return d.info.Name() }
func (d *Device) Position() avdevice.Position   { return avdevice.PositionUnspecified }
func (d *Device) MediaType() avdevice.MediaType { return avdevice.Audio }

// The video capability surface is vacuous for an audio device.
func (d *Device) HasFlash() bool                                      { return false }
func (d *Device) HasTorch() bool                                      { return false }
func (d *Device) IsFlashModeSupported(avdevice.IlluminationMode) bool { return false }
func (d *Device) IsTorchModeSupported(avdevice.IlluminationMode) bool { return false }
func (d *Device) SetFlashMode(avdevice.IlluminationMode)              {}
func (d *Device) SetTorchMode(avdevice.IlluminationMode)              {}
func (d *Device) LockForConfiguration() error                         { return nil }
func (d *Device) UnlockForConfiguration()                             {}
func (d *Device) MaxZoomFactor() float64                              { return 1 }
func (d *Device) SetZoomFactor(float64)                               {}
func (d *Device) IsFocusPointOfInterestSupported() bool               { return false }
func (d *Device) IsFocusModeSupported(avdevice.FocusMode) bool        { return false }
func (d *Device) SetFocusPointOfInterest(avdevice.Point)              {}
func (d *Device) SetFocusMode(avdevice.FocusMode)                     {}
func (d *Device) IsExposurePointOfInterestSupported() bool            { return false }
func (d *Device) SetExposurePointOfInterest(avdevice.Point)           {}
func (d *Device) MinExposureDuration() time.Duration                  { return 0 }
func (d *Device) MaxExposureDuration() time.Duration                  { return 0 }
func (d *Device) SetExposureMode(avdevice.ExposureMode)               {}
func (d *Device) SetCustomExposure(time.Duration)                     {}
