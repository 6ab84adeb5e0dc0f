//go:build linux

package v4l2cam

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/camkit/camsession/pkg/avdevice"
)

var errCaptureTimeout = errors.New("v4l2cam: timed out waiting for a frame")

// connection stores the rotation and mirroring the orchestration layer
// applies; the MJPEG pass-through does not re-encode, so these are metadata
// for downstream consumers.
type connection struct {
	mu          sync.Mutex
	orientation avdevice.VideoOrientation
	mirrored    bool
}

func (c *connection) IsVideoOrientationSupported() bool { return true }

func (c *connection) VideoOrientation() avdevice.VideoOrientation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orientation
}

func (c *connection) SetVideoOrientation(o avdevice.VideoOrientation) {
	c.mu.Lock()
	c.orientation = o
	c.mu.Unlock()
}

func (c *connection) IsVideoMirroringSupported() bool { return true }

func (c *connection) SetVideoMirrored(m bool) {
	c.mu.Lock()
	c.mirrored = m
	c.mu.Unlock()
}

// photoOutput keeps the most recent MJPEG frame; CapturePhoto hands out the
// next one to arrive.
type photoOutput struct {
	conn   connection
	frames chan []byte
}

func newPhotoOutput() *photoOutput {
	return &photoOutput{frames: make(chan []byte, 1)}
}

func (p *photoOutput) MediaType() avdevice.MediaType { return avdevice.Video }

func (p *photoOutput) Connection(mt avdevice.MediaType) avdevice.Connection {
	if mt != avdevice.Video {
		return nil
	}
	return &p.conn
}

func (p *photoOutput) offer(frame []byte) {
	select {
	case p.frames <- frame:
	default:
		// Drop the stale frame and keep the fresh one.
		select {
		case <-p.frames:
		default:
		}
		select {
		case p.frames <- frame:
		default:
		}
	}
}

func (p *photoOutput) CapturePhoto(avdevice.PhotoSettings) ([]byte, error) {
	select {
	case frame := <-p.frames:
		return frame, nil
	case <-time.After(5 * time.Second):
		return nil, errCaptureTimeout
	}
}

// movieOutput streams MJPEG frames into the recording file, and PCM audio
// into a sidecar next to it when a microphone input is attached.
type movieOutput struct {
	conn connection

	mu        sync.Mutex
	file      *os.File
	audioFile *os.File
	path      string
	done      avdevice.RecordingHandler
	location  avdevice.LocationMetadata
	hasLoc    bool
}

func newMovieOutput() *movieOutput {
	return &movieOutput{}
}

func (m *movieOutput) MediaType() avdevice.MediaType { return avdevice.Video }

func (m *movieOutput) Connection(mt avdevice.MediaType) avdevice.Connection {
	if mt != avdevice.Video {
		return nil
	}
	return &m.conn
}

func (m *movieOutput) SetLocationMetadata(loc avdevice.LocationMetadata) {
	m.mu.Lock()
	m.location = loc
	m.hasLoc = true
	m.mu.Unlock()
}

func (m *movieOutput) StartRecording(path string, done avdevice.RecordingHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.file != nil {
		return errors.New("v4l2cam: recording already in progress")
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	m.file = f
	m.path = path
	m.done = done
	return nil
}

func (m *movieOutput) StopRecording() {
	m.mu.Lock()
	if m.file == nil {
		m.mu.Unlock()
		return
	}
	file := m.file
	audio := m.audioFile
	path := m.path
	done := m.done
	m.file = nil
	m.audioFile = nil
	m.done = nil
	m.mu.Unlock()

	err := file.Close()
	if audio != nil {
		audio.Close()
	}
	if done != nil {
		go done(path, err)
	}
}

func (m *movieOutput) IsRecording() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.file != nil
}

func (m *movieOutput) writeFrame(frame []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.file == nil {
		return
	}
	if _, err := m.file.Write(frame); err != nil {
		logger.Debugf("movie write: %v", err)
	}
}

func (m *movieOutput) writeAudio(chunk []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.file == nil {
		return
	}
	if m.audioFile == nil {
		f, err := os.Create(m.path + ".pcm")
		if err != nil {
			logger.Debugf("audio sidecar: %v", err)
			return
		}
		m.audioFile = f
	}
	if _, err := m.audioFile.Write(chunk); err != nil {
		logger.Debugf("audio write: %v", err)
	}
}

// metadataOutput is a stub: V4L2 has no hardware code detection, so no
// object types are ever available.
type metadataOutput struct {
	mu      sync.Mutex
	types   []avdevice.MetadataObjectType
	handler func([]avdevice.MetadataObject)
}

func newMetadataOutput() *metadataOutput {
	return &metadataOutput{}
}

func (o *metadataOutput) MediaType() avdevice.MediaType { return avdevice.Metadata }

func (o *metadataOutput) Connection(avdevice.MediaType) avdevice.Connection { return nil }

func (o *metadataOutput) AvailableObjectTypes() []avdevice.MetadataObjectType { return nil }

func (o *metadataOutput) SetObjectTypes(types []avdevice.MetadataObjectType) error {
	o.mu.Lock()
	o.types = types
	o.mu.Unlock()
	return nil
}

func (o *metadataOutput) SetHandler(h func([]avdevice.MetadataObject)) {
	o.mu.Lock()
	o.handler = h
	o.mu.Unlock()
}
