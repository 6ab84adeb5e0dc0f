package camsession

import (
	"github.com/camkit/camsession/pkg/avdevice"
	"github.com/camkit/camsession/pkg/location"
	"github.com/camkit/camsession/pkg/medialib"
	"github.com/camkit/camsession/pkg/orientation"
	"github.com/camkit/camsession/pkg/permission"
)

type controllerOptions struct {
	backend   avdevice.Backend
	authority permission.Authority
	library   medialib.Service
	locations location.Provider
	motion    orientation.MotionProvider

	album                string
	writeToLibrary       bool
	mirrorFrontCamera    bool
	keepViewOrientation  bool
	interfaceOrientation avdevice.VideoOrientation
	focusMode            avdevice.FocusMode
	showErrors           bool
	animateShutter       bool
	quality              CameraOutputQuality

	dispatch func(func())
}

func defaultOptions() controllerOptions {
	return controllerOptions{
		backend:              avdevice.DefaultBackend(),
		authority:            permission.Static{},
		locations:            location.None{},
		writeToLibrary:       true,
		interfaceOrientation: avdevice.OrientationPortrait,
		focusMode:            avdevice.FocusContinuousAuto,
		animateShutter:       true,
		quality:              QualityHigh,
		dispatch:             func(f func()) { go f() },
	}
}

// Option configures a CameraController.
type Option func(*controllerOptions)

// WithBackend selects the capture stack. Defaults to the registered
// platform backend.
func WithBackend(b avdevice.Backend) Option {
	return func(o *controllerOptions) { o.backend = b }
}

// WithAuthority sets the permission authority consulted for camera,
// microphone and photo-library access.
func WithAuthority(a permission.Authority) Option {
	return func(o *controllerOptions) { o.authority = a }
}

// WithLibrary sets the media library captures are persisted into. Without a
// library, capture results carry raw bytes and file paths only.
func WithLibrary(s medialib.Service) Option {
	return func(o *controllerOptions) { o.library = s }
}

// WithAlbum files persisted assets under the named album.
func WithAlbum(name string) Option {
	return func(o *controllerOptions) { o.album = name }
}

// WithoutLibraryPersistence disables writing finished captures to the media
// library even when one is configured.
func WithoutLibraryPersistence() Option {
	return func(o *controllerOptions) { o.writeToLibrary = false }
}

// WithLocationProvider enables geotagging of stills and movies.
func WithLocationProvider(p location.Provider) Option {
	return func(o *controllerOptions) { o.locations = p }
}

// WithMotionProvider enables orientation tracking from gravity samples.
func WithMotionProvider(p orientation.MotionProvider) Option {
	return func(o *controllerOptions) { o.motion = p }
}

// WithFrontCameraMirroring mirrors stills captured with the front camera,
// when the connection supports it.
func WithFrontCameraMirroring() Option {
	return func(o *controllerOptions) { o.mirrorFrontCamera = true }
}

// WithFixedViewOrientation keeps the preview connection's orientation
// untouched by the orientation tracker.
func WithFixedViewOrientation() Option {
	return func(o *controllerOptions) { o.keepViewOrientation = true }
}

// WithInterfaceOrientation sets the fallback orientation used for the
// preview when the device lies flat before any estimate exists.
func WithInterfaceOrientation(v avdevice.VideoOrientation) Option {
	return func(o *controllerOptions) { o.interfaceOrientation = v }
}

// WithFocusMode sets the focus mode applied on a focus tap.
func WithFocusMode(m avdevice.FocusMode) Option {
	return func(o *controllerOptions) { o.focusMode = m }
}

// WithAutomaticErrorDisplay routes errors to the error-display event stream
// in addition to completion callbacks.
func WithAutomaticErrorDisplay() Option {
	return func(o *controllerOptions) { o.showErrors = true }
}

// WithoutShutterAnimation suppresses the shutter-flash event on stills.
func WithoutShutterAnimation() Option {
	return func(o *controllerOptions) { o.animateShutter = false }
}

// WithQuality sets the initial output quality.
func WithQuality(q CameraOutputQuality) Option {
	return func(o *controllerOptions) { o.quality = q }
}

// WithCompletionDispatcher routes completion callbacks and events through
// the given executor, typically the host's UI loop. The default spawns a
// goroutine per delivery.
func WithCompletionDispatcher(dispatch func(func())) Option {
	return func(o *controllerOptions) { o.dispatch = dispatch }
}
