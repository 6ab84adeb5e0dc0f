// Package camsession orchestrates a device's capture pipeline: it owns the
// capture session, selects and switches physical devices, negotiates output
// modes, tracks physical orientation, translates gestures into hardware
// adjustments and runs the still and video capture pipelines.
//
// All session mutation is serialized on one reconfiguration queue.
// Completions and events are delivered asynchronously; callers must not
// assume any particular goroutine.
package camsession

import (
	"sync"

	"github.com/camkit/camsession/internal/events"
	"github.com/camkit/camsession/internal/logging"
	"github.com/camkit/camsession/pkg/avdevice"
	"github.com/camkit/camsession/pkg/orientation"
	"github.com/camkit/camsession/pkg/permission"
)

// CameraController owns the capture session and is the single entry point
// for all command-level API calls.
type CameraController struct {
	opts controllerOptions

	selector     *deviceSelector
	outputs      *outputModeManager
	illumination *illuminationController
	tracker      *orientation.Tracker
	bus          *events.Bus
	queue        *workQueue
	log          logging.Logger

	mu             sync.Mutex
	session        avdevice.Session
	videoInput     avdevice.Input
	activeDevice   avdevice.Device
	preview        avdevice.PreviewSurface
	isSetUp        bool
	suppressNotify bool

	device  CameraDevice
	mode    CameraOutputMode
	flash   CameraFlashMode
	quality CameraOutputQuality

	zoom     zoomState
	exposure exposureState

	pendingVideo   VideoCompletion
	qrHandler      func(string)
	metadataOutput avdevice.MetadataOutput
}

// New creates a controller. Nothing touches the hardware until Setup.
func New(opts ...Option) *CameraController {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	selector := &deviceSelector{backend: o.backend}
	c := &CameraController{
		opts:         o,
		selector:     selector,
		outputs:      &outputModeManager{backend: o.backend, selector: selector},
		illumination: &illuminationController{selector: selector},
		tracker:      orientation.NewTracker(o.motion),
		bus:          events.New(),
		queue:        newWorkQueue(),
		log:          logging.NewLogger("camsession"),
		quality:      o.quality,
		zoom:         zoomState{current: 1, begin: 1, max: 1},
		exposure:     neutralExposure(),
	}
	return c
}

// Close releases the reconfiguration queue. The controller must not be used
// afterwards; call Teardown first to release hardware.
func (c *CameraController) Close() {
	c.tracker.Stop()
	c.queue.Close()
}

// State computes the camera-availability state. A missing device pre-empts
// the permission check.
func (c *CameraController) State() CameraState {
	if !c.selector.hasCamera() {
		return StateNoDeviceFound
	}
	switch c.opts.authority.Status(permission.Camera) {
	case permission.Authorized:
		return StateReady
	case permission.NotDetermined:
		return StateNotDetermined
	default:
		return StateAccessDenied
	}
}

// HasFlash reports whether the back camera carries a flash.
func (c *CameraController) HasFlash() bool {
	return c.selector.hasFlash()
}

// HasFrontCamera reports whether a front camera is present.
func (c *CameraController) HasFrontCamera() bool {
	return c.selector.hasFrontCamera()
}

// RequestAccess asks the permission authority for camera (and, when the
// mode needs audio, microphone) authorization. done is invoked exactly once.
func (c *CameraController) RequestAccess(mode CameraOutputMode, done func(granted bool)) {
	c.opts.authority.Request(permission.Camera, func(cameraGranted bool) {
		if !cameraGranted || mode != VideoWithMic {
			c.opts.dispatch(func() { done(cameraGranted) })
			return
		}
		c.opts.authority.Request(permission.Microphone, func(micGranted bool) {
			c.opts.dispatch(func() { done(micGranted) })
		})
	})
}

// Setup builds and starts the capture session for the given output mode and
// preview surface. The capability pre-check fails fast; on success, session
// building happens off the caller's goroutine and done is invoked with the
// final state. The returned state is the pre-check result.
func (c *CameraController) Setup(mode CameraOutputMode, surface avdevice.PreviewSurface, done func(CameraState)) CameraState {
	state := c.State()
	if state != StateReady {
		c.deliverState(done, state)
		return state
	}

	c.mu.Lock()
	c.mode = mode
	c.preview = surface
	c.mu.Unlock()

	c.queue.Async(func() {
		if err := c.buildSession(); err != nil {
			c.log.Errorf("setup: %v", err)
			c.showError("Camera error", "The capture session could not be configured.")
			c.deliverState(done, StateNoDeviceFound)
			return
		}
		c.startTracking()
		c.deliverState(done, StateReady)
	})
	return StateReady
}

// Resume restarts a stopped session, or performs full setup when no session
// exists yet. A session that was never set up needs a Setup call first.
func (c *CameraController) Resume(done func(CameraState)) {
	c.mu.Lock()
	session := c.session
	isSetUp := c.isSetUp
	mode := c.mode
	surface := c.preview
	c.mu.Unlock()

	if session == nil {
		if surface == nil {
			c.deliverState(done, c.State())
			return
		}
		c.Setup(mode, surface, done)
		return
	}

	c.queue.Async(func() {
		if isSetUp && !session.IsRunning() {
			if err := session.Start(); err != nil {
				c.log.Errorf("resume: %v", err)
				c.showError("Camera error", "The capture session could not be resumed.")
				c.deliverState(done, StateNoDeviceFound)
				return
			}
		}
		c.startTracking()
		c.deliverState(done, StateReady)
	})
}

// Stop halts the running session and orientation tracking. Inputs and
// outputs stay wired for a cheap Resume.
func (c *CameraController) Stop() {
	c.tracker.Stop()
	c.queue.Async(func() {
		c.mu.Lock()
		session := c.session
		c.mu.Unlock()
		if session != nil && session.IsRunning() {
			session.Stop()
		}
	})
}

// Teardown stops the session and releases every owned resource, resetting
// the camera device to its default. Change notifications are suppressed
// during the reset to avoid redundant side effects. It is the universal
// cancellation point.
func (c *CameraController) Teardown() {
	c.tracker.Stop()
	c.queue.Sync(func() {
		c.mu.Lock()
		session := c.session
		c.mu.Unlock()

		if session != nil {
			if c.outputs.movieOutput != nil && c.outputs.movieOutput.IsRecording() {
				c.outputs.movieOutput.StopRecording()
			}
			if session.IsRunning() {
				session.Stop()
			}
			session.BeginConfiguration()
			for _, in := range session.Inputs() {
				session.RemoveInput(in)
			}
			for _, out := range session.Outputs() {
				session.RemoveOutput(out)
			}
			session.CommitConfiguration()
		}

		c.mu.Lock()
		c.suppressNotify = true
		c.session = nil
		c.videoInput = nil
		c.activeDevice = nil
		c.isSetUp = false
		c.metadataOutput = nil
		c.qrHandler = nil
		c.pendingVideo = nil
		c.device = CameraDeviceBack
		c.zoom = zoomState{current: 1, begin: 1, max: 1}
		c.exposure = neutralExposure()
		c.suppressNotify = false
		c.mu.Unlock()

		c.outputs.release()
	})
}

// CameraDevice returns the selected camera.
func (c *CameraController) CameraDevice() CameraDevice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device
}

// SetCameraDevice switches the active camera. Before setup it only records
// intent; afterwards it performs the minimal re-wiring and re-derives zoom
// bounds and orientation.
func (c *CameraController) SetCameraDevice(d CameraDevice) {
	c.mu.Lock()
	if c.device == d {
		c.mu.Unlock()
		return
	}
	c.device = d
	isSetUp := c.isSetUp
	session := c.session
	notify := !c.suppressNotify
	c.mu.Unlock()

	if notify {
		c.bus.Publish(events.DeviceFlipEvent{Device: d.String()})
	}
	if !isSetUp || session == nil {
		return
	}

	c.queue.Async(func() {
		in, err := c.selector.switchActiveVideoInput(session, d)
		if err != nil {
			c.log.Errorf("switch device: %v", err)
			c.showError("Camera error", "The camera could not be switched.")
			return
		}
		c.mu.Lock()
		c.videoInput = in
		c.activeDevice = in.Device()
		c.mu.Unlock()

		c.resetZoomBounds()
		c.propagateOrientation()
		c.applyIllumination()
	})
}

// OutputMode returns the active output mode.
func (c *CameraController) OutputMode() CameraOutputMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetOutputMode swaps the session's outputs to match the new mode. Switching
// is a remove-old/add-new atomic transaction on the reconfiguration queue.
func (c *CameraController) SetOutputMode(m CameraOutputMode) {
	c.mu.Lock()
	if c.mode == m {
		c.mu.Unlock()
		return
	}
	old := c.mode
	c.mode = m
	isSetUp := c.isSetUp
	session := c.session
	c.mu.Unlock()

	if !isSetUp || session == nil {
		return
	}

	c.queue.Async(func() {
		if err := c.outputs.applyMode(session, m, old, true); err != nil {
			c.log.Errorf("output mode: %v", err)
			c.showError("Camera error", "The output mode could not be changed.")
			return
		}
		c.applyPreset()
		c.propagateOrientation()
		c.applyIllumination()
	})
}

// FlashMode returns the stored flash setting.
func (c *CameraController) FlashMode() CameraFlashMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flash
}

// SetFlashMode stores the flash setting and, once the session is set up,
// applies it as flash or torch depending on the output mode.
func (c *CameraController) SetFlashMode(f CameraFlashMode) {
	c.mu.Lock()
	if c.flash == f {
		c.mu.Unlock()
		return
	}
	c.flash = f
	isSetUp := c.isSetUp
	c.mu.Unlock()

	if !isSetUp {
		return
	}
	c.queue.Async(c.applyIllumination)
}

// ChangeFlashMode cycles off -> on -> auto -> off and returns the new value.
func (c *CameraController) ChangeFlashMode() CameraFlashMode {
	c.mu.Lock()
	next := c.flash.Next()
	c.mu.Unlock()
	c.SetFlashMode(next)
	return next
}

// Quality returns the stored output quality.
func (c *CameraController) Quality() CameraOutputQuality {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quality
}

// SetQuality applies a session preset for the quality. An unsupported preset
// leaves the previous one in effect and raises an advisory error.
func (c *CameraController) SetQuality(q CameraOutputQuality) {
	c.mu.Lock()
	if c.quality == q {
		c.mu.Unlock()
		return
	}
	c.quality = q
	isSetUp := c.isSetUp
	c.mu.Unlock()

	if !isSetUp {
		return
	}
	c.queue.Async(c.applyPreset)
}

// buildSession wires a fresh session: video input, outputs for the stored
// mode and the preview sink, inside one configuration transaction. Runs on
// the reconfiguration queue.
func (c *CameraController) buildSession() error {
	c.mu.Lock()
	device := c.device
	mode := c.mode
	c.mu.Unlock()

	session := c.opts.backend.NewSession()

	in, err := c.selector.switchActiveVideoInput(session, device)
	if err != nil {
		return err
	}
	if err := c.outputs.applyMode(session, mode, mode, false); err != nil {
		return err
	}

	c.mu.Lock()
	c.session = session
	c.videoInput = in
	c.activeDevice = in.Device()
	c.isSetUp = true
	c.mu.Unlock()

	c.applyPreset()
	if err := session.Start(); err != nil {
		return err
	}
	c.resetZoomBounds()
	c.propagateOrientation()
	c.applyIllumination()
	return nil
}

func (c *CameraController) startTracking() {
	err := c.tracker.Start(func(orientation.Device) {
		// Hop from the motion delivery goroutine onto the queue before
		// touching any connection.
		c.queue.Async(c.propagateOrientation)
	})
	if err != nil {
		c.log.Warnf("orientation tracking unavailable: %v", err)
	}
}

// applyPreset re-applies the current quality preset. Runs on the queue.
func (c *CameraController) applyPreset() {
	c.mu.Lock()
	session := c.session
	preset := presetFor(c.quality, c.mode)
	c.mu.Unlock()
	if session == nil {
		return
	}
	if err := session.SetPreset(preset); err != nil {
		// Unsupported preset is advisory; the prior preset stays.
		c.log.Warnf("preset %s not supported: %v", preset, err)
		c.showAdvisory("Camera warning", "The selected quality is not supported by this camera.")
	}
}

// applyIllumination re-applies the stored flash setting. Runs on the queue.
func (c *CameraController) applyIllumination() {
	c.mu.Lock()
	flash := c.flash
	mode := c.mode
	device := c.device
	c.mu.Unlock()
	c.illumination.apply(flash, mode, device)
}

// resetZoomBounds refreshes the maximum zoom scale from the active device
// and clamps the current scale into the new range. Runs on the queue.
func (c *CameraController) resetZoomBounds() {
	c.mu.Lock()
	defer c.mu.Unlock()
	max := 1.0
	if c.activeDevice != nil {
		if m := c.activeDevice.MaxZoomFactor(); m > 1 {
			max = m
		}
	}
	c.zoom.max = max
	c.zoom.current = clampZoom(c.zoom.current, max)
	c.zoom.begin = c.zoom.current
}

// propagateOrientation recomputes and applies capture and preview
// orientation from the tracker's estimate. Repeated invocations with no
// orientation change leave connection state untouched. Runs on the queue.
func (c *CameraController) propagateOrientation() {
	c.mu.Lock()
	mode := c.mode
	preview := c.preview
	isSetUp := c.isSetUp
	c.mu.Unlock()
	if !isSetUp {
		return
	}

	current := c.tracker.Current()

	for _, conn := range c.captureConnections(mode) {
		if conn == nil || !conn.IsVideoOrientationSupported() {
			continue
		}
		next := orientation.Capture(current, conn.VideoOrientation())
		if next != avdevice.OrientationUnset && next != conn.VideoOrientation() {
			conn.SetVideoOrientation(next)
		}
	}

	if preview != nil && !c.opts.keepViewOrientation {
		conn := preview.Connection()
		if conn != nil && conn.IsVideoOrientationSupported() {
			next := orientation.Preview(current, conn.VideoOrientation(), c.opts.interfaceOrientation)
			if next != avdevice.OrientationUnset && next != conn.VideoOrientation() {
				conn.SetVideoOrientation(next)
			}
		}
	}

	if mode.IsVideo() && c.outputs.movieOutput != nil {
		if loc, ok := c.opts.locations.Last(); ok {
			c.outputs.movieOutput.SetLocationMetadata(avdevice.LocationMetadata{
				Latitude:  loc.Latitude,
				Longitude: loc.Longitude,
				Altitude:  loc.Altitude,
				Time:      loc.Time,
			})
		}
	}
}

func (c *CameraController) captureConnections(mode CameraOutputMode) []avdevice.Connection {
	var conns []avdevice.Connection
	if mode.IsVideo() {
		if c.outputs.movieOutput != nil {
			conns = append(conns, c.outputs.movieOutput.Connection(avdevice.Video))
		}
	} else if c.outputs.photoOutput != nil {
		conns = append(conns, c.outputs.photoOutput.Connection(avdevice.Video))
	}
	return conns
}

func (c *CameraController) deliverState(done func(CameraState), state CameraState) {
	if done == nil {
		return
	}
	c.opts.dispatch(func() { done(state) })
}

// showError publishes a user-facing error when the host opted in to
// automatic error display.
func (c *CameraController) showError(title, message string) {
	c.publishErrorDisplay(title, message, false)
}

// showAdvisory publishes a capability warning for an operation that still
// went ahead.
func (c *CameraController) showAdvisory(title, message string) {
	c.publishErrorDisplay(title, message, true)
}

func (c *CameraController) publishErrorDisplay(title, message string, advisory bool) {
	if !c.opts.showErrors {
		return
	}
	c.bus.Publish(events.ErrorDisplayEvent{Title: title, Message: message, Advisory: advisory})
}

// OnErrorDisplay subscribes to user-facing error notifications. The returned
// function unsubscribes.
func (c *CameraController) OnErrorDisplay(h func(title, message string)) func() {
	return c.bus.Subscribe(func(e events.ErrorDisplayEvent) { h(e.Title, e.Message) })
}

// OnFocusReticle subscribes to focus-indicator requests in preview-surface
// coordinates.
func (c *CameraController) OnFocusReticle(h func(x, y float64)) func() {
	return c.bus.Subscribe(func(e events.FocusReticleEvent) { h(e.X, e.Y) })
}

// OnDeviceFlip subscribes to camera-change notifications.
func (c *CameraController) OnDeviceFlip(h func(device string)) func() {
	return c.bus.Subscribe(func(e events.DeviceFlipEvent) { h(e.Device) })
}

// OnShutter subscribes to shutter-flash animation requests.
func (c *CameraController) OnShutter(h func()) func() {
	return c.bus.Subscribe(func(events.ShutterEvent) { h() })
}
