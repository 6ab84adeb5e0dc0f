//go:build linux

package v4l2cam

import (
	"fmt"
	"sync"
	"time"

	"github.com/blackjack/webcam"

	"github.com/camkit/camsession/pkg/avdevice"
)

// V4L2 control IDs, from videodev2.h.
const (
	ctrlZoomAbsolute     = 0x009a090d
	ctrlExposureAuto     = 0x009a0901
	ctrlExposureAbsolute = 0x009a0902
	ctrlFocusAuto        = 0x009a090c

	// V4L2_EXPOSURE_MANUAL / V4L2_EXPOSURE_APERTURE_PRIORITY
	exposureManual       = 1
	exposureAutoPriority = 3
)

// Device is one V4L2 camera node.
type Device struct {
	path     string
	label    string
	position avdevice.Position

	mu  sync.Mutex
	cam *webcam.Webcam

	zoomInfo     webcam.Control
	exposureInfo webcam.Control
	hasZoom      bool
	hasExposure  bool
	hasAutoFocus bool
	probed       bool
}

func newDevice(path, label string, pos avdevice.Position) *Device {
	return &Device{path: path, label: label, position: pos}
}

func (d *Device) ID() string                    { return d.path }
func (d *Device) Label() string                 { return d.label }
func (d *Device) Position() avdevice.Position   { return d.position }
func (d *Device) MediaType() avdevice.MediaType { return avdevice.Video }

// probe opens the node briefly to read its control ranges. Fails when the
// device is busy or access has been revoked.
func (d *Device) probe() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.probed {
		return nil
	}

	cam, err := webcam.Open(d.path)
	if err != nil {
		return fmt.Errorf("v4l2cam: open %s: %w", d.path, err)
	}
	defer cam.Close()

	d.readControls(cam)
	d.probed = true
	return nil
}

func (d *Device) readControls(cam *webcam.Webcam) {
	controls := cam.GetControls()
	if ctrl, ok := controls[ctrlZoomAbsolute]; ok {
		d.zoomInfo = ctrl
		d.hasZoom = ctrl.Max > ctrl.Min
	}
	if ctrl, ok := controls[ctrlExposureAbsolute]; ok {
		d.exposureInfo = ctrl
		d.hasExposure = ctrl.Max > ctrl.Min
	}
	if _, ok := controls[ctrlFocusAuto]; ok {
		d.hasAutoFocus = true
	}
}

// attach hands the device the session's open camera handle so that control
// writes reach the hardware while streaming.
func (d *Device) attach(cam *webcam.Webcam) {
	d.mu.Lock()
	d.cam = cam
	if cam != nil {
		d.readControls(cam)
		d.probed = true
	}
	d.mu.Unlock()
}

// UVC webcams carry no flash or torch.
func (d *Device) HasFlash() bool                                        { return false }
func (d *Device) HasTorch() bool                                        { return false }
func (d *Device) IsFlashModeSupported(m avdevice.IlluminationMode) bool { return false }
func (d *Device) IsTorchModeSupported(m avdevice.IlluminationMode) bool { return false }
func (d *Device) SetFlashMode(avdevice.IlluminationMode)                {}
func (d *Device) SetTorchMode(avdevice.IlluminationMode)                {}

func (d *Device) LockForConfiguration() error {
	d.mu.Lock()
	return nil
}

func (d *Device) UnlockForConfiguration() {
	d.mu.Unlock()
}

func (d *Device) MaxZoomFactor() float64 {
	if !d.hasZoom || d.zoomInfo.Min >= d.zoomInfo.Max {
		return 1
	}
	return float64(d.zoomInfo.Max) / float64(max32(d.zoomInfo.Min, 1))
}

func (d *Device) SetZoomFactor(f float64) {
	if d.cam == nil || !d.hasZoom {
		return
	}
	min := float64(max32(d.zoomInfo.Min, 1))
	value := int32(min * f)
	if value > d.zoomInfo.Max {
		value = d.zoomInfo.Max
	}
	if err := d.cam.SetControl(ctrlZoomAbsolute, value); err != nil {
		logger.Debugf("zoom control: %v", err)
	}
}

func (d *Device) IsFocusPointOfInterestSupported() bool    { return false }
func (d *Device) SetFocusPointOfInterest(avdevice.Point)   {}
func (d *Device) IsExposurePointOfInterestSupported() bool { return false }
func (d *Device) SetExposurePointOfInterest(avdevice.Point) {
}

func (d *Device) IsFocusModeSupported(m avdevice.FocusMode) bool {
	return d.hasAutoFocus && m != avdevice.FocusLocked
}

func (d *Device) SetFocusMode(m avdevice.FocusMode) {
	if d.cam == nil || !d.hasAutoFocus {
		return
	}
	value := int32(1)
	if m == avdevice.FocusLocked {
		value = 0
	}
	if err := d.cam.SetControl(ctrlFocusAuto, value); err != nil {
		logger.Debugf("focus control: %v", err)
	}
}

// Exposure-absolute is in 100us units per the V4L2 spec.
func (d *Device) MinExposureDuration() time.Duration {
	if !d.hasExposure {
		return time.Millisecond
	}
	return time.Duration(d.exposureInfo.Min) * 100 * time.Microsecond
}

func (d *Device) MaxExposureDuration() time.Duration {
	if !d.hasExposure {
		return time.Second / 10
	}
	return time.Duration(d.exposureInfo.Max) * 100 * time.Microsecond
}

func (d *Device) SetExposureMode(m avdevice.ExposureMode) {
	if d.cam == nil || !d.hasExposure {
		return
	}
	value := int32(exposureAutoPriority)
	if m == avdevice.ExposureCustom || m == avdevice.ExposureLocked {
		value = exposureManual
	}
	if err := d.cam.SetControl(ctrlExposureAuto, value); err != nil {
		logger.Debugf("exposure mode control: %v", err)
	}
}

func (d *Device) SetCustomExposure(duration time.Duration) {
	if d.cam == nil || !d.hasExposure {
		return
	}
	value := int32(duration / (100 * time.Microsecond))
	if value < d.exposureInfo.Min {
		value = d.exposureInfo.Min
	}
	if value > d.exposureInfo.Max {
		value = d.exposureInfo.Max
	}
	if err := d.cam.SetControl(ctrlExposureAbsolute, value); err != nil {
		logger.Debugf("exposure control: %v", err)
	}
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
