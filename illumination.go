package camsession

import (
	"github.com/camkit/camsession/pkg/avdevice"
)

// illuminationController applies the user-level flash setting to the active
// device: the torch while recording video, the flash for stills. Flash and
// torch support is best-effort hardware capability, so unsupported
// combinations are skipped without surfacing an error.
type illuminationController struct {
	selector *deviceSelector
}

func illuminationMode(f CameraFlashMode) avdevice.IlluminationMode {
	switch f {
	case FlashOn:
		return avdevice.IlluminationOn
	case FlashAuto:
		return avdevice.IlluminationAuto
	default:
		return avdevice.IlluminationOff
	}
}

func (i *illuminationController) apply(flash CameraFlashMode, outputMode CameraOutputMode, camera CameraDevice) {
	device, ok := i.selector.videoDevice(camera)
	if !ok {
		return
	}

	mode := illuminationMode(flash)
	if outputMode.IsVideo() {
		if !device.HasTorch() || !device.IsTorchModeSupported(mode) {
			return
		}
		if device.LockForConfiguration() != nil {
			return
		}
		device.SetTorchMode(mode)
		device.UnlockForConfiguration()
		return
	}

	if !device.HasFlash() || !device.IsFlashModeSupported(mode) {
		return
	}
	if device.LockForConfiguration() != nil {
		return
	}
	device.SetFlashMode(mode)
	device.UnlockForConfiguration()
}
