package camsession

import (
	"image"

	"github.com/camkit/camsession/pkg/medialib"
)

// CaptureContent is what a successful still capture produced. Data is always
// present; Image is the decoded, orientation-corrected frame; Asset is set
// when the photo was persisted into the media library.
type CaptureContent struct {
	Data  []byte
	Image image.Image
	Asset *medialib.Asset
}

// CaptureResult is the outcome of one still-capture request. It is delivered
// exactly once to the request's completion.
type CaptureResult struct {
	Content CaptureContent
	Err     error
}

// Succeeded reports whether the capture completed without a hard failure.
func (r CaptureResult) Succeeded() bool {
	return r.Err == nil
}

func captureFailure(err error) CaptureResult {
	return CaptureResult{Err: err}
}

// VideoResult is the outcome of one video recording. Path points at the
// recorded file; Asset is set when the movie was persisted into the media
// library (Path then refers to the persisted location).
type VideoResult struct {
	Path  string
	Asset *medialib.Asset
	Err   error
}

// VideoCompletion receives the outcome of a recording. A controller holds at
// most one pending completion; it is invoked and cleared exactly once per
// recording.
type VideoCompletion func(VideoResult)
