package camsession

import (
	"math"
	"time"

	"github.com/camkit/camsession/internal/events"
	"github.com/camkit/camsession/pkg/avdevice"
)

// GesturePhase mirrors the recognizer lifecycle of the host UI toolkit.
type GesturePhase int

const (
	GestureBegan GesturePhase = iota
	GestureChanged
	GestureEnded
)

// TouchPoint is a touch location in preview-surface coordinates.
type TouchPoint struct {
	X, Y float64
}

const (
	minZoomScale = 1.0

	// exposureTranslationCap bounds the accumulated pan translation.
	exposureTranslationCap = 400.0
	// exposureDurationPower expands low-end sensitivity of the exposure
	// curve.
	exposureDurationPower = 5.0
	// exposureMinimumDuration is the hard floor for custom exposure.
	exposureMinimumDuration = time.Second / 2000
)

type zoomState struct {
	current float64
	begin   float64
	max     float64
}

type exposureState struct {
	value    float64
	baseline float64
}

func neutralExposure() exposureState {
	return exposureState{value: 0.5}
}

// clampZoom bounds a zoom factor to [1, max].
func clampZoom(scale, max float64) float64 {
	if max < minZoomScale {
		max = minZoomScale
	}
	return math.Min(math.Max(scale, minZoomScale), max)
}

// exposureValue maps an accumulated vertical translation to a normalized
// exposure value: up (negative translation) brightens towards 1, down
// darkens towards 0, saturating at the translation cap.
func exposureValue(translation float64) float64 {
	t := math.Max(-exposureTranslationCap, math.Min(exposureTranslationCap, translation))
	return (exposureTranslationCap - t) / (2 * exposureTranslationCap)
}

// exposureDuration interpolates between the device's supported duration
// range, after raising the normalized value to a fixed power.
func exposureDuration(value float64, min, max time.Duration) time.Duration {
	if min < exposureMinimumDuration {
		min = exposureMinimumDuration
	}
	if max < min {
		max = min
	}
	curved := math.Pow(value, exposureDurationPower)
	return min + time.Duration(curved*float64(max-min))
}

// HandlePinch converts a pinch gesture into a zoom-factor change on the
// active device. The pinch is ignored for the whole recognition cycle when
// any touch point falls outside the preview surface.
func (c *CameraController) HandlePinch(phase GesturePhase, scale float64, touches ...TouchPoint) {
	c.mu.Lock()
	preview := c.preview
	c.mu.Unlock()
	if preview == nil {
		return
	}
	for _, t := range touches {
		if !preview.ContainsPoint(t.X, t.Y) {
			return
		}
	}

	c.mu.Lock()
	switch phase {
	case GestureBegan:
		c.zoom.begin = c.zoom.current
		c.mu.Unlock()
		return
	default:
		c.zoom.current = clampZoom(c.zoom.begin*scale, c.zoom.max)
	}
	target := c.zoom.current
	device := c.activeDevice
	c.mu.Unlock()

	if device == nil {
		return
	}
	c.queue.Async(func() {
		if device.LockForConfiguration() != nil {
			return
		}
		device.SetZoomFactor(target)
		device.UnlockForConfiguration()
	})
}

// ZoomFactor returns the current zoom scale.
func (c *CameraController) ZoomFactor() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom.current
}

// HandleFocusTap targets focus and exposure metering at the tapped point.
// It resets exposure to continuous-auto and the pan accumulator to neutral,
// and raises a transient focus indicator for the UI.
func (c *CameraController) HandleFocusTap(x, y float64) {
	c.mu.Lock()
	preview := c.preview
	device := c.activeDevice
	c.exposure = neutralExposure()
	c.mu.Unlock()
	if preview == nil || device == nil {
		return
	}

	poi := preview.CaptureDevicePoint(x, y)
	focusMode := c.opts.focusMode

	c.bus.Publish(events.FocusReticleEvent{X: x, Y: y})

	c.queue.Async(func() {
		if device.LockForConfiguration() != nil {
			return
		}
		defer device.UnlockForConfiguration()

		if device.IsFocusPointOfInterestSupported() && device.IsFocusModeSupported(focusMode) {
			device.SetFocusPointOfInterest(poi)
			device.SetFocusMode(focusMode)
		}
		if device.IsExposurePointOfInterestSupported() {
			device.SetExposurePointOfInterest(poi)
		}
		device.SetExposureMode(avdevice.ExposureContinuousAuto)
	})
}

// HandleExposurePan converts a vertical pan into a custom exposure
// duration. The gesture's start switches the device to custom exposure;
// its end commits the accumulated translation as the new baseline.
func (c *CameraController) HandleExposurePan(phase GesturePhase, translationY float64) {
	c.mu.Lock()
	device := c.activeDevice
	c.mu.Unlock()
	if device == nil {
		return
	}

	switch phase {
	case GestureBegan:
		c.queue.Async(func() {
			if device.LockForConfiguration() != nil {
				return
			}
			device.SetExposureMode(avdevice.ExposureCustom)
			device.UnlockForConfiguration()
		})
		return

	case GestureEnded:
		c.mu.Lock()
		total := c.exposure.baseline + translationY
		c.exposure.baseline = math.Max(-exposureTranslationCap, math.Min(exposureTranslationCap, total))
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	value := exposureValue(c.exposure.baseline + translationY)
	c.exposure.value = value
	c.mu.Unlock()

	duration := exposureDuration(value, device.MinExposureDuration(), device.MaxExposureDuration())
	c.queue.Async(func() {
		if device.LockForConfiguration() != nil {
			return
		}
		device.SetCustomExposure(duration)
		device.UnlockForConfiguration()
	})
}

// ExposureValue returns the current normalized exposure value.
func (c *CameraController) ExposureValue() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exposure.value
}
