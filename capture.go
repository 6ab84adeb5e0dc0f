package camsession

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/camkit/camsession/internal/events"
	"github.com/camkit/camsession/pkg/avdevice"
	"github.com/camkit/camsession/pkg/exifgps"
	"github.com/camkit/camsession/pkg/location"
	"github.com/camkit/camsession/pkg/medialib"
	"github.com/camkit/camsession/pkg/orientation"
	"github.com/camkit/camsession/pkg/permission"
)

// captureJob carries one still request through the pipeline stages.
type captureJob struct {
	data   []byte
	img    image.Image
	asset  *medialib.Asset
	device orientation.Device
}

type captureStage func(*captureJob) error

// CapturePhoto runs the still-image pipeline: capture, decode, orientation
// fix, metadata injection, persistence. done receives the result exactly
// once. Precondition failures are reported without touching the hardware,
// and the request is dropped rather than queued.
func (c *CameraController) CapturePhoto(done func(CaptureResult)) {
	c.mu.Lock()
	isSetUp := c.isSetUp
	mode := c.mode
	c.mu.Unlock()

	if !isSetUp {
		c.showError("No capture session", "Set up the camera before taking pictures.")
		c.deliverCapture(done, captureFailure(ErrSessionMissing))
		return
	}
	if mode != StillImage {
		c.showError("Wrong output mode", "Switch the camera to still-image mode to take pictures.")
		c.deliverCapture(done, captureFailure(ErrWrongOutputMode))
		return
	}

	c.queue.Async(func() {
		job := &captureJob{device: c.tracker.LastGood()}
		stages := []captureStage{
			c.stageCapture,
			c.stageDecode,
			c.stageFixOrientation,
			c.stageInjectMetadata,
			c.stageShutter,
			c.stagePersist,
		}
		for _, stage := range stages {
			if err := stage(job); err != nil {
				c.showError("Capture failed", err.Error())
				c.deliverCapture(done, captureFailure(err))
				return
			}
		}
		c.deliverCapture(done, CaptureResult{Content: CaptureContent{
			Data:  job.data,
			Image: job.img,
			Asset: job.asset,
		}})
	})
}

// stageCapture triggers the hardware capture on the photo output's video
// connection, applying mirroring and the current capture orientation first.
func (c *CameraController) stageCapture(job *captureJob) error {
	photo := c.outputs.photoOutput
	if photo == nil {
		return ErrSessionMissing
	}
	conn := photo.Connection(avdevice.Video)
	if conn == nil {
		return ErrNoVideoConnection
	}

	c.mu.Lock()
	device := c.device
	flash := c.flash
	c.mu.Unlock()

	if device == CameraDeviceFront && c.opts.mirrorFrontCamera && conn.IsVideoMirroringSupported() {
		conn.SetVideoMirrored(true)
	}
	if conn.IsVideoOrientationSupported() {
		next := orientation.Capture(c.tracker.Current(), conn.VideoOrientation())
		if next != avdevice.OrientationUnset && next != conn.VideoOrientation() {
			conn.SetVideoOrientation(next)
		}
	}

	data, err := photo.CapturePhoto(avdevice.PhotoSettings{Flash: illuminationMode(flash)})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoImageData, err)
	}
	if len(data) == 0 {
		return ErrNoImageData
	}
	job.data = data
	return nil
}

func (c *CameraController) stageDecode(job *captureJob) error {
	img, _, err := image.Decode(bytes.NewReader(job.data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImageData, err)
	}
	job.img = img
	return nil
}

// stageFixOrientation rotates the decoded frame so it displays upright for
// the tracked device orientation. When the frame was rotated, the bytes are
// re-encoded so metadata injection and persistence carry the fix.
func (c *CameraController) stageFixOrientation(job *captureJob) error {
	rotated := rotateForOrientation(job.img, job.device)
	if rotated == job.img {
		return nil
	}
	job.img = rotated

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rotated, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImageData, err)
	}
	job.data = buf.Bytes()
	return nil
}

// stageInjectMetadata overlays GPS EXIF fields onto the captured bytes when
// a location fix is available. Original metadata is preserved.
func (c *CameraController) stageInjectMetadata(job *captureJob) error {
	loc, ok := c.opts.locations.Last()
	if !ok {
		return nil
	}
	data, err := exifgps.Inject(job.data, loc, time.Now())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImageData, err)
	}
	job.data = data
	return nil
}

func (c *CameraController) stageShutter(*captureJob) error {
	if c.opts.animateShutter {
		c.bus.Publish(events.ShutterEvent{})
	}
	return nil
}

// stagePersist writes the bytes to a temporary file and hands it to the
// media library, requesting photo-library authorization first if needed.
func (c *CameraController) stagePersist(job *captureJob) error {
	if c.opts.library == nil || !c.opts.writeToLibrary {
		return nil
	}
	if err := c.ensurePhotoLibraryAccess(); err != nil {
		return err
	}

	path := filepath.Join(os.TempDir(), uuid.NewString()+".jpg")
	if err := os.WriteFile(path, job.data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrAssetNotSaved, err)
	}

	asset, err := c.opts.library.Save(medialib.SaveRequest{
		FilePath: path,
		Kind:     medialib.Photo,
		Album:    c.opts.album,
		Date:     time.Now(),
		Location: c.locationPtr(),
	})
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("%w: %v", ErrAssetNotSaved, err)
	}
	job.asset = &asset
	return nil
}

// ensurePhotoLibraryAccess requests photo-library authorization when it has
// not been determined yet, blocking the queue until the single-shot answer
// arrives.
func (c *CameraController) ensurePhotoLibraryAccess() error {
	switch c.opts.authority.Status(permission.PhotoLibrary) {
	case permission.Authorized:
		return nil
	case permission.Denied:
		return ErrPermissionDenied
	}

	granted := make(chan bool, 1)
	c.opts.authority.Request(permission.PhotoLibrary, func(ok bool) {
		granted <- ok
	})
	if !<-granted {
		return ErrPermissionDenied
	}
	return nil
}

func (c *CameraController) locationPtr() *location.Location {
	if loc, ok := c.opts.locations.Last(); ok {
		return &loc
	}
	return nil
}

func (c *CameraController) deliverCapture(done func(CaptureResult), result CaptureResult) {
	if done == nil {
		return
	}
	c.opts.dispatch(func() { done(result) })
}

// rotateForOrientation re-renders img so it is upright for the given device
// orientation. Landscape left is the sensor's native orientation.
func rotateForOrientation(img image.Image, d orientation.Device) image.Image {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	var m f64.Aff3
	var outW, outH int
	switch d {
	case orientation.Portrait:
		m = f64.Aff3{0, -1, h, 1, 0, 0}
		outW, outH = b.Dy(), b.Dx()
	case orientation.PortraitUpsideDown:
		m = f64.Aff3{0, 1, 0, -1, 0, w}
		outW, outH = b.Dy(), b.Dx()
	case orientation.LandscapeRight:
		m = f64.Aff3{-1, 0, w, 0, -1, h}
		outW, outH = b.Dx(), b.Dy()
	default:
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, outW, outH))
	draw.NearestNeighbor.Transform(dst, m, img, b, draw.Src, nil)
	return dst
}
