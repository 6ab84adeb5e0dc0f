package camsession

// CameraDevice selects which physical sensor is wired as the session's video
// input.
type CameraDevice int

const (
	CameraDeviceBack CameraDevice = iota
	CameraDeviceFront
)

func (d CameraDevice) String() string {
	if d == CameraDeviceFront {
		return "front"
	}
	return "back"
}

// CameraOutputMode determines which outputs are attached to the session and
// whether a microphone input is present.
type CameraOutputMode int

const (
	StillImage CameraOutputMode = iota
	VideoWithMic
	VideoOnly
)

func (m CameraOutputMode) String() string {
	switch m {
	case VideoWithMic:
		return "video with mic"
	case VideoOnly:
		return "video only"
	default:
		return "still image"
	}
}

// IsVideo reports whether the mode records movies rather than stills.
func (m CameraOutputMode) IsVideo() bool {
	return m == VideoWithMic || m == VideoOnly
}

// CameraFlashMode is the user-level illumination setting. It maps to the
// device flash when capturing stills and to the torch when recording video.
type CameraFlashMode int

const (
	FlashOff CameraFlashMode = iota
	FlashOn
	FlashAuto
)

func (f CameraFlashMode) String() string {
	switch f {
	case FlashOn:
		return "on"
	case FlashAuto:
		return "auto"
	default:
		return "off"
	}
}

// Next cycles off -> on -> auto -> off.
func (f CameraFlashMode) Next() CameraFlashMode {
	return CameraFlashMode((int(f) + 1) % 3)
}

// CameraOutputQuality is the session-level quality setting.
type CameraOutputQuality int

const (
	QualityLow CameraOutputQuality = iota
	QualityMedium
	QualityHigh
)

func (q CameraOutputQuality) String() string {
	switch q {
	case QualityLow:
		return "low"
	case QualityMedium:
		return "medium"
	default:
		return "high"
	}
}

// CameraState is the camera-availability state reported to the host.
type CameraState int

const (
	StateReady CameraState = iota
	StateAccessDenied
	StateNoDeviceFound
	StateNotDetermined
)

func (s CameraState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateAccessDenied:
		return "access denied"
	case StateNoDeviceFound:
		return "no device found"
	default:
		return "not determined"
	}
}
