// Package avdevice defines the capability surface of a native capture stack:
// sessions, physical devices, inputs, outputs and the connections between
// them. Orchestration code talks to these interfaces only; concrete
// implementations live in platform packages such as v4l2cam.
package avdevice

import "time"

// Position tells where a physical capture device is mounted.
type Position int

const (
	PositionUnspecified Position = iota
	PositionBack
	PositionFront
)

func (p Position) String() string {
	switch p {
	case PositionBack:
		return "back"
	case PositionFront:
		return "front"
	default:
		return "unspecified"
	}
}

// MediaType classifies the data a device or output deals with.
type MediaType string

const (
	Video    MediaType = "video"
	Audio    MediaType = "audio"
	Metadata MediaType = "metadata"
)

// Preset names a session quality configuration.
type Preset string

const (
	PresetLow    Preset = "low"
	PresetMedium Preset = "medium"
	PresetHigh   Preset = "high"
	PresetPhoto  Preset = "photo"
)

// IlluminationMode is a flash or torch setting on a capture device.
type IlluminationMode int

const (
	IlluminationOff IlluminationMode = iota
	IlluminationOn
	IlluminationAuto
)

// FocusMode controls the autofocus behavior of a device.
type FocusMode int

const (
	FocusLocked FocusMode = iota
	FocusAuto
	FocusContinuousAuto
)

// ExposureMode controls the auto-exposure behavior of a device.
type ExposureMode int

const (
	ExposureLocked ExposureMode = iota
	ExposureAuto
	ExposureContinuousAuto
	ExposureCustom
)

// VideoOrientation is the rotation applied to video flowing through a
// connection.
type VideoOrientation int

const (
	OrientationUnset VideoOrientation = iota
	OrientationPortrait
	OrientationPortraitUpsideDown
	OrientationLandscapeLeft
	OrientationLandscapeRight
)

// Point is a normalized coordinate on the sensor, 0..1 on both axes. It is
// used to target focus and exposure metering.
type Point struct {
	X, Y float64
}

// Identity is the static description of a physical device.
type Identity interface {
	ID() string
	Label() string
	Position() Position
	MediaType() MediaType
}

// Locker brackets device mutation. All Set* calls on a device must happen
// between a successful LockForConfiguration and the matching unlock.
type Locker interface {
	LockForConfiguration() error
	UnlockForConfiguration()
}

// FlashControl exposes the illumination capabilities of a device.
type FlashControl interface {
	HasFlash() bool
	HasTorch() bool
	IsFlashModeSupported(IlluminationMode) bool
	IsTorchModeSupported(IlluminationMode) bool
	SetFlashMode(IlluminationMode)
	SetTorchMode(IlluminationMode)
}

// ZoomControl exposes the zoom capabilities of a device.
type ZoomControl interface {
	MaxZoomFactor() float64
	SetZoomFactor(float64)
}

// FocusControl exposes point-of-interest focusing.
type FocusControl interface {
	IsFocusPointOfInterestSupported() bool
	IsFocusModeSupported(FocusMode) bool
	SetFocusPointOfInterest(Point)
	SetFocusMode(FocusMode)
}

// ExposureControl exposes metering and manual exposure.
type ExposureControl interface {
	IsExposurePointOfInterestSupported() bool
	MinExposureDuration() time.Duration
	MaxExposureDuration() time.Duration
	SetExposurePointOfInterest(Point)
	SetExposureMode(ExposureMode)
	SetCustomExposure(time.Duration)
}

// Device is one physical capture device.
type Device interface {
	Identity
	Locker
	FlashControl
	ZoomControl
	FocusControl
	ExposureControl
}

// Input is a device wired into a session.
type Input interface {
	Device() Device
}

// Connection carries data between an input and an output (or a preview
// surface) and owns the rotation and mirroring applied on the way.
type Connection interface {
	IsVideoOrientationSupported() bool
	// VideoOrientation reports the currently applied orientation;
	// OrientationUnset means none has been applied yet.
	VideoOrientation() VideoOrientation
	SetVideoOrientation(VideoOrientation)
	IsVideoMirroringSupported() bool
	SetVideoMirrored(bool)
}
