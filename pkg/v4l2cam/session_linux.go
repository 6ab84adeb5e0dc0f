//go:build linux

package v4l2cam

import (
	"errors"
	"fmt"
	"sync"

	"github.com/blackjack/webcam"

	"github.com/camkit/camsession/pkg/avdevice"
	"github.com/camkit/camsession/pkg/microphone"
)

// Pixel format fourccs, little endian.
const (
	pixFmtMJPEG = webcam.PixelFormat(0x47504A4D) // 'MJPG'
	pixFmtYUYV  = webcam.PixelFormat(0x56595559) // 'YUYV'
)

var errNoVideoInput = errors.New("v4l2cam: session has no video input")

// session is one live V4L2 capture pipeline. The orchestration layer
// serializes all configuration, so the session only guards its own frame
// pump.
type session struct {
	mu      sync.Mutex
	state   avdevice.State
	preset  avdevice.Preset
	inputs  []avdevice.Input
	outputs []avdevice.Output

	cam  *webcam.Webcam
	stop chan struct{}
}

func newSession() *session {
	return &session{
		state:  avdevice.StateIdle,
		preset: avdevice.PresetHigh,
	}
}

func (s *session) BeginConfiguration()  {}
func (s *session) CommitConfiguration() {}

func (s *session) AddInput(in avdevice.Input) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, in)
	return nil
}

func (s *session) RemoveInput(in avdevice.Input) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.inputs {
		if existing == in {
			s.inputs = append(s.inputs[:i], s.inputs[i+1:]...)
			return
		}
	}
}

func (s *session) Inputs() []avdevice.Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]avdevice.Input(nil), s.inputs...)
}

func (s *session) CanAddOutput(out avdevice.Output) bool {
	// Metadata detection has no V4L2 counterpart.
	return out.MediaType() != avdevice.Metadata
}

func (s *session) AddOutput(out avdevice.Output) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs = append(s.outputs, out)
	return nil
}

func (s *session) RemoveOutput(out avdevice.Output) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.outputs {
		if existing == out {
			s.outputs = append(s.outputs[:i], s.outputs[i+1:]...)
			return
		}
	}
}

func (s *session) Outputs() []avdevice.Output {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]avdevice.Output(nil), s.outputs...)
}

func (s *session) SetPreset(p avdevice.Preset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch p {
	case avdevice.PresetLow, avdevice.PresetMedium, avdevice.PresetHigh, avdevice.PresetPhoto:
		s.preset = p
		return nil
	default:
		return fmt.Errorf("v4l2cam: preset %q not supported", p)
	}
}

func (s *session) Preset() avdevice.Preset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preset
}

func (s *session) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == avdevice.StateRunning
}

func (s *session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Update(avdevice.StateRunning, s.startLocked)
}

func (s *session) startLocked() error {
	device := s.videoDevice()
	if device == nil {
		return errNoVideoInput
	}

	cam, err := webcam.Open(device.ID())
	if err != nil {
		return fmt.Errorf("v4l2cam: open %s: %w", device.ID(), err)
	}

	width, height := s.frameSizeForPreset()
	if _, _, _, err := cam.SetImageFormat(pixFmtMJPEG, width, height); err != nil {
		cam.Close()
		return fmt.Errorf("v4l2cam: mjpeg %dx%d: %w", width, height, err)
	}
	if err := cam.StartStreaming(); err != nil {
		cam.Close()
		return fmt.Errorf("v4l2cam: start streaming: %w", err)
	}

	if d, ok := device.(*Device); ok {
		d.attach(cam)
	}
	s.startMicrophone()

	s.cam = cam
	s.stop = make(chan struct{})
	go s.pump(cam, s.stop)
	return nil
}

func (s *session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Update(avdevice.StateIdle, func() error {
		if s.cam == nil {
			return nil
		}
		close(s.stop)
		s.cam.StopStreaming()
		s.cam.Close()
		if d, ok := s.videoDevice().(*Device); ok {
			d.attach(nil)
		}
		s.stopMicrophone()
		s.cam = nil
		return nil
	})
}

func (s *session) videoDevice() avdevice.Device {
	for _, in := range s.inputs {
		if in.Device().MediaType() == avdevice.Video {
			return in.Device()
		}
	}
	return nil
}

func (s *session) startMicrophone() {
	for _, in := range s.inputs {
		mic, ok := in.Device().(*microphone.Device)
		if !ok {
			continue
		}
		if err := mic.Capture(func(chunk []byte) {
			s.deliverAudio(chunk)
		}); err != nil {
			logger.Warnf("microphone: %v", err)
		}
		return
	}
}

func (s *session) stopMicrophone() {
	for _, in := range s.inputs {
		if mic, ok := in.Device().(*microphone.Device); ok {
			mic.StopCapture()
		}
	}
}

// frameSizeForPreset trades resolution for performance the way quality
// presets ask for.
func (s *session) frameSizeForPreset() (uint32, uint32) {
	switch s.preset {
	case avdevice.PresetLow:
		return 640, 480
	case avdevice.PresetMedium:
		return 1280, 720
	case avdevice.PresetPhoto:
		return 2592, 1944
	default:
		return 1920, 1080
	}
}

// pump reads frames off the camera and fans them out to the attached
// outputs until stopped.
func (s *session) pump(cam *webcam.Webcam, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		err := cam.WaitForFrame(5)
		switch err.(type) {
		case nil:
		case *webcam.Timeout:
			continue
		default:
			logger.Debugf("pump: %v", err)
			return
		}

		frame, err := cam.ReadFrame()
		if err != nil {
			logger.Debugf("pump read: %v", err)
			return
		}
		if len(frame) == 0 {
			continue
		}

		// The buffer is recycled by the driver; hand out a copy.
		copied := make([]byte, len(frame))
		copy(copied, frame)
		s.deliverVideo(copied)
	}
}

func (s *session) deliverVideo(frame []byte) {
	s.mu.Lock()
	outputs := append([]avdevice.Output(nil), s.outputs...)
	s.mu.Unlock()

	for _, out := range outputs {
		switch o := out.(type) {
		case *photoOutput:
			o.offer(frame)
		case *movieOutput:
			o.writeFrame(frame)
		}
	}
}

func (s *session) deliverAudio(chunk []byte) {
	s.mu.Lock()
	outputs := append([]avdevice.Output(nil), s.outputs...)
	s.mu.Unlock()

	for _, out := range outputs {
		if o, ok := out.(*movieOutput); ok {
			o.writeAudio(chunk)
		}
	}
}
