package camsession

import "errors"

var (
	// ErrSessionMissing means an operation needs a set-up capture session.
	ErrSessionMissing = errors.New("camsession: capture session is not set up")
	// ErrWrongOutputMode means the session's output mode does not support
	// the requested operation.
	ErrWrongOutputMode = errors.New("camsession: operation not allowed in current output mode")
	// ErrCameraUnavailable means no camera hardware is present.
	ErrCameraUnavailable = errors.New("camsession: no camera hardware available")
	// ErrPermissionDenied means the host lacks the required authorization.
	ErrPermissionDenied = errors.New("camsession: permission denied")
	// ErrDeviceSetup means a device could not be wired into the session.
	ErrDeviceSetup = errors.New("camsession: device setup failed")

	// ErrNoImageData means the hardware produced no image bytes.
	ErrNoImageData = errors.New("camsession: no image data")
	// ErrInvalidImageData means the captured bytes could not be decoded.
	ErrInvalidImageData = errors.New("camsession: invalid image data")
	// ErrNoVideoConnection means the photo output has no video connection.
	ErrNoVideoConnection = errors.New("camsession: no video connection")
	// ErrNoSampleBuffer means the recording produced no sample data.
	ErrNoSampleBuffer = errors.New("camsession: no sample buffer")
	// ErrAssetNotSaved means the media library did not persist the asset.
	ErrAssetNotSaved = errors.New("camsession: asset not saved")
)
