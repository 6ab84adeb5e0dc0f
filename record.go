package camsession

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/camkit/camsession/pkg/avdevice"
	"github.com/camkit/camsession/pkg/medialib"
)

// StartRecording begins recording video to a freshly named temporary file.
// done is held in the controller's single pending-completion slot and fires
// once, when the recording finishes. Calling StartRecording again before the
// previous recording resolved overwrites the slot; preventing that is the
// caller's responsibility.
func (c *CameraController) StartRecording(done VideoCompletion) {
	c.mu.Lock()
	isSetUp := c.isSetUp
	mode := c.mode
	c.pendingVideo = done
	c.mu.Unlock()

	if !isSetUp {
		c.showError("No capture session", "Set up the camera before recording.")
		c.finishRecording("", ErrSessionMissing)
		return
	}
	if !mode.IsVideo() {
		c.showError("Wrong output mode", "Switch the camera to a video mode to record.")
		c.finishRecording("", ErrWrongOutputMode)
		return
	}

	c.queue.Async(func() {
		movie := c.outputs.movieOutput
		if movie == nil {
			c.finishRecording("", ErrSessionMissing)
			return
		}

		if loc, ok := c.opts.locations.Last(); ok {
			movie.SetLocationMetadata(avdevice.LocationMetadata{
				Latitude:  loc.Latitude,
				Longitude: loc.Longitude,
				Altitude:  loc.Altitude,
				Time:      loc.Time,
			})
		}
		c.applyIllumination()

		path := filepath.Join(os.TempDir(), uuid.NewString()+".mov")
		err := movie.StartRecording(path, func(recorded string, recErr error) {
			// The movie output delivers on its own goroutine; hop back
			// onto the queue before touching shared state.
			c.queue.Async(func() { c.recordingFinished(recorded, recErr) })
		})
		if err != nil {
			c.showError("Recording failed", err.Error())
			c.finishRecording("", fmt.Errorf("%w: %v", ErrNoSampleBuffer, err))
		}
	})
}

// StopRecording ends the in-flight recording. It is a no-op when no
// recording is in progress; the pending completion still fires through the
// movie output's finish event.
func (c *CameraController) StopRecording() {
	c.queue.Async(func() {
		movie := c.outputs.movieOutput
		if movie != nil && movie.IsRecording() {
			movie.StopRecording()
		}
	})
}

// IsRecording reports whether a recording is in progress.
func (c *CameraController) IsRecording() bool {
	recording := false
	c.queue.Sync(func() {
		movie := c.outputs.movieOutput
		recording = movie != nil && movie.IsRecording()
	})
	return recording
}

// recordingFinished handles the movie output's finish event: persist on
// success, surface errors, and resolve the pending completion. Runs on the
// queue.
func (c *CameraController) recordingFinished(path string, recErr error) {
	if recErr != nil {
		c.showError("Recording failed", recErr.Error())
		c.finishRecording(path, recErr)
		return
	}

	if c.opts.library == nil || !c.opts.writeToLibrary {
		c.finishRecording(path, nil)
		return
	}

	if err := c.ensurePhotoLibraryAccess(); err != nil {
		c.finishRecording(path, err)
		return
	}

	asset, err := c.opts.library.Save(medialib.SaveRequest{
		FilePath: path,
		Kind:     medialib.Video,
		Album:    c.opts.album,
		Date:     time.Now(),
		Location: c.locationPtr(),
	})
	if err != nil {
		c.finishRecording(path, fmt.Errorf("%w: %v", ErrAssetNotSaved, err))
		return
	}
	c.finishVideo(VideoResult{Path: asset.Path, Asset: &asset})
}

func (c *CameraController) finishRecording(path string, err error) {
	c.finishVideo(VideoResult{Path: path, Err: err})
}

// finishVideo takes the pending completion out of its slot and invokes it.
// The slot is cleared exactly once regardless of outcome; a finish event
// with no pending completion is dropped.
func (c *CameraController) finishVideo(result VideoResult) {
	c.mu.Lock()
	done := c.pendingVideo
	c.pendingVideo = nil
	c.mu.Unlock()

	if done == nil {
		return
	}
	c.opts.dispatch(func() { done(result) })
}
