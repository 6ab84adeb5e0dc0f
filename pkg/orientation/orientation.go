// Package orientation estimates the physical orientation of the device from
// gravity samples and maps it to the rotation values applied to capture and
// preview connections.
package orientation

import (
	"time"

	"github.com/camkit/camsession/pkg/avdevice"
)

// Device is the physical orientation of the device.
type Device int

const (
	Unknown Device = iota
	Portrait
	PortraitUpsideDown
	LandscapeLeft
	LandscapeRight
	FaceUp
	FaceDown
)

func (d Device) String() string {
	switch d {
	case Portrait:
		return "portrait"
	case PortraitUpsideDown:
		return "portrait upside down"
	case LandscapeLeft:
		return "landscape left"
	case LandscapeRight:
		return "landscape right"
	case FaceUp:
		return "face up"
	case FaceDown:
		return "face down"
	default:
		return "unknown"
	}
}

// IsFlat reports whether the orientation is ambiguous for video rotation.
func (d Device) IsFlat() bool {
	return d == FaceUp || d == FaceDown
}

// GravitySample is one gravity vector from the motion sensor, in device
// coordinates.
type GravitySample struct {
	X, Y, Z float64
}

// MotionProvider delivers periodic gravity samples. Availability must be
// checked before subscribing.
type MotionProvider interface {
	Available() bool
	Start(interval time.Duration, fn func(GravitySample)) error
	Stop()
}

// Classify derives a device orientation from a gravity sample. A dominant y
// component means portrait (sign decides which way up), otherwise the sign
// of x decides between the landscapes. Face up/down are never produced here.
func Classify(g GravitySample) Device {
	if abs(g.Y) >= abs(g.X) {
		if g.Y < 0 {
			return Portrait
		}
		return PortraitUpsideDown
	}
	if g.X < 0 {
		return LandscapeRight
	}
	return LandscapeLeft
}

// Capture maps a device orientation to the rotation applied on capture
// connections. The landscapes are swapped because the sensor is mounted
// rotated 180 degrees relative to device landscape. Flat and unknown
// orientations keep last, the previous connection value.
func Capture(d Device, last avdevice.VideoOrientation) avdevice.VideoOrientation {
	switch d {
	case Portrait:
		return avdevice.OrientationPortrait
	case PortraitUpsideDown:
		return avdevice.OrientationPortraitUpsideDown
	case LandscapeLeft:
		return avdevice.OrientationLandscapeRight
	case LandscapeRight:
		return avdevice.OrientationLandscapeLeft
	default:
		return last
	}
}

// Preview maps a device orientation to the rotation applied on the preview
// connection. Same mapping as Capture; when the device is flat and the
// connection has no previous value, fallback is used instead.
func Preview(d Device, last, fallback avdevice.VideoOrientation) avdevice.VideoOrientation {
	if d.IsFlat() || d == Unknown {
		if last == avdevice.OrientationUnset {
			return fallback
		}
		return last
	}
	return Capture(d, last)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
