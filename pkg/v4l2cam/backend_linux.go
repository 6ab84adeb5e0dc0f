//go:build linux

package v4l2cam

import (
	"os"
	"strings"

	"github.com/camkit/camsession/internal/logging"
	"github.com/camkit/camsession/pkg/avdevice"
	"github.com/camkit/camsession/pkg/microphone"
)

var logger = logging.NewLogger("camsession/v4l2cam")

// Backend resolves V4L2 devices and builds sessions over them.
type Backend struct {
	devices []*Device
}

func init() {
	b := New()
	if len(b.devices) > 0 {
		avdevice.RegisterBackend("v4l2", b)
	}
}

// New scans /dev/v4l/by-path for cameras. The first device found is treated
// as the back camera; a device whose name mentions "front" becomes the
// front camera.
func New() *Backend {
	b := &Backend{}

	searchPath := "/dev/v4l/by-path/"
	entries, err := os.ReadDir(searchPath)
	if err != nil {
		// No v4l devices on this host.
		return b
	}

	backAssigned := false
	for _, entry := range entries {
		name := entry.Name()
		pos := avdevice.PositionUnspecified
		switch {
		case strings.Contains(strings.ToLower(name), "front"):
			pos = avdevice.PositionFront
		case !backAssigned:
			pos = avdevice.PositionBack
			backAssigned = true
		}
		b.devices = append(b.devices, newDevice(searchPath+name, name, pos))
	}
	return b
}

func (b *Backend) Devices(mt avdevice.MediaType) []avdevice.Device {
	var out []avdevice.Device
	switch mt {
	case avdevice.Video:
		for _, d := range b.devices {
			out = append(out, d)
		}
	case avdevice.Audio:
		if mic, err := microphone.Default(); err == nil {
			out = append(out, mic)
		}
	}
	return out
}

func (b *Backend) DeviceAt(pos avdevice.Position, mt avdevice.MediaType) (avdevice.Device, bool) {
	if mt == avdevice.Audio {
		mic, err := microphone.Default()
		if err != nil {
			return nil, false
		}
		return mic, true
	}
	for _, d := range b.devices {
		if d.Position() == pos {
			return d, true
		}
	}
	// A host with a single unlabeled camera still answers the back-camera
	// lookup.
	if pos == avdevice.PositionBack && len(b.devices) > 0 {
		return b.devices[0], true
	}
	return nil, false
}

func (b *Backend) NewSession() avdevice.Session {
	return newSession()
}

func (b *Backend) NewInput(d avdevice.Device) (avdevice.Input, error) {
	if dev, ok := d.(*Device); ok {
		if err := dev.probe(); err != nil {
			return nil, err
		}
	}
	return &input{device: d}, nil
}

func (b *Backend) NewPhotoOutput() avdevice.PhotoOutput {
	return newPhotoOutput()
}

func (b *Backend) NewMovieOutput() avdevice.MovieOutput {
	return newMovieOutput()
}

func (b *Backend) NewMetadataOutput() avdevice.MetadataOutput {
	return newMetadataOutput()
}

type input struct {
	device avdevice.Device
}

func (i *input) Device() avdevice.Device { return i.device }
