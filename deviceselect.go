package camsession

import (
	"fmt"

	"github.com/camkit/camsession/pkg/avdevice"
)

// deviceSelector resolves logical device selection to concrete devices and
// capability facts.
type deviceSelector struct {
	backend avdevice.Backend
}

func (s *deviceSelector) position(d CameraDevice) avdevice.Position {
	if d == CameraDeviceFront {
		return avdevice.PositionFront
	}
	return avdevice.PositionBack
}

// hasCamera reports whether any video device exists at all.
func (s *deviceSelector) hasCamera() bool {
	return s.backend != nil && len(s.backend.Devices(avdevice.Video)) > 0
}

// hasFrontCamera is computed by scanning available video devices.
func (s *deviceSelector) hasFrontCamera() bool {
	if s.backend == nil {
		return false
	}
	_, ok := s.backend.DeviceAt(avdevice.PositionFront, avdevice.Video)
	return ok
}

// hasFlash reports whether the back camera carries a flash. Independent of
// front-camera presence.
func (s *deviceSelector) hasFlash() bool {
	if s.backend == nil {
		return false
	}
	d, ok := s.backend.DeviceAt(avdevice.PositionBack, avdevice.Video)
	return ok && d.HasFlash()
}

func (s *deviceSelector) videoDevice(d CameraDevice) (avdevice.Device, bool) {
	if s.backend == nil {
		return nil, false
	}
	return s.backend.DeviceAt(s.position(d), avdevice.Video)
}

func (s *deviceSelector) microphone() (avdevice.Device, bool) {
	if s.backend == nil {
		return nil, false
	}
	return s.backend.DeviceAt(avdevice.PositionUnspecified, avdevice.Audio)
}

// inputFor wraps device-to-input conversion. Failures are reported through
// the error return, never panicked across the reconfiguration boundary.
func (s *deviceSelector) inputFor(device avdevice.Device) (avdevice.Input, error) {
	in, err := s.backend.NewInput(device)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceSetup, err)
	}
	return in, nil
}

// switchActiveVideoInput rewires the session's video input to the given
// camera inside one configuration transaction. Every attached video input is
// removed before the new one is added; the microphone input is untouched.
// Remove-then-add order prevents transient dual-input states some hardware
// rejects.
func (s *deviceSelector) switchActiveVideoInput(sess avdevice.Session, to CameraDevice) (avdevice.Input, error) {
	device, ok := s.videoDevice(to)
	if !ok {
		return nil, ErrCameraUnavailable
	}

	sess.BeginConfiguration()
	defer sess.CommitConfiguration()

	var existing avdevice.Input
	for _, in := range sess.Inputs() {
		if in.Device().MediaType() != avdevice.Video {
			continue
		}
		if in.Device().ID() == device.ID() {
			existing = in
			continue
		}
		sess.RemoveInput(in)
	}
	if existing != nil {
		return existing, nil
	}

	in, err := s.inputFor(device)
	if err != nil {
		return nil, err
	}
	if err := sess.AddInput(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceSetup, err)
	}
	return in, nil
}
