package camsession

import (
	"errors"
	"sync"
	"time"

	"github.com/camkit/camsession/pkg/avdevice"
	"github.com/camkit/camsession/pkg/orientation"
)

// fakeDevice is an instrumented avdevice.Device.
type fakeDevice struct {
	id  string
	pos avdevice.Position
	mt  avdevice.MediaType

	flash       bool
	torch       bool
	maxZoom     float64
	minExposure time.Duration
	maxExposure time.Duration
	supportsPOI bool

	mu             sync.Mutex
	lockCount      int
	unlockCount    int
	zoom           float64
	flashMode      avdevice.IlluminationMode
	torchMode      avdevice.IlluminationMode
	torchSet       int
	flashSet       int
	focusPoint     avdevice.Point
	exposurePoint  avdevice.Point
	focusMode      avdevice.FocusMode
	exposureMode   avdevice.ExposureMode
	customExposure time.Duration
}

func newFakeCamera(id string, pos avdevice.Position) *fakeDevice {
	return &fakeDevice{
		id:          id,
		pos:         pos,
		mt:          avdevice.Video,
		maxZoom:     4,
		minExposure: time.Second / 8000,
		maxExposure: time.Second / 4,
		supportsPOI: true,
	}
}

func (d *fakeDevice) ID() string                    { return d.id }
func (d *fakeDevice) Label() string                 { return d.id }
func (d *fakeDevice) Position() avdevice.Position   { return d.pos }
func (d *fakeDevice) MediaType() avdevice.MediaType { return d.mt }

func (d *fakeDevice) HasFlash() bool { return d.flash }
func (d *fakeDevice) HasTorch() bool { return d.torch }
func (d *fakeDevice) IsFlashModeSupported(avdevice.IlluminationMode) bool {
	return d.flash
}
func (d *fakeDevice) IsTorchModeSupported(avdevice.IlluminationMode) bool {
	return d.torch
}

func (d *fakeDevice) SetFlashMode(m avdevice.IlluminationMode) {
	d.flashMode = m
	d.flashSet++
}

func (d *fakeDevice) SetTorchMode(m avdevice.IlluminationMode) {
	d.torchMode = m
	d.torchSet++
}

func (d *fakeDevice) LockForConfiguration() error {
	d.mu.Lock()
	d.lockCount++
	d.mu.Unlock()
	return nil
}

func (d *fakeDevice) UnlockForConfiguration() {
	d.mu.Lock()
	d.unlockCount++
	d.mu.Unlock()
}

func (d *fakeDevice) MaxZoomFactor() float64  { return d.maxZoom }
func (d *fakeDevice) SetZoomFactor(f float64) { d.zoom = f }

func (d *fakeDevice) IsFocusPointOfInterestSupported() bool      { return d.supportsPOI }
func (d *fakeDevice) IsFocusModeSupported(avdevice.FocusMode) bool { return d.supportsPOI }
func (d *fakeDevice) SetFocusPointOfInterest(p avdevice.Point)   { d.focusPoint = p }
func (d *fakeDevice) SetFocusMode(m avdevice.FocusMode)          { d.focusMode = m }

func (d *fakeDevice) IsExposurePointOfInterestSupported() bool    { return d.supportsPOI }
func (d *fakeDevice) SetExposurePointOfInterest(p avdevice.Point) { d.exposurePoint = p }
func (d *fakeDevice) MinExposureDuration() time.Duration          { return d.minExposure }
func (d *fakeDevice) MaxExposureDuration() time.Duration          { return d.maxExposure }
func (d *fakeDevice) SetExposureMode(m avdevice.ExposureMode)     { d.exposureMode = m }
func (d *fakeDevice) SetCustomExposure(t time.Duration)           { d.customExposure = t }

type fakeInput struct {
	device avdevice.Device
}

func (i *fakeInput) Device() avdevice.Device { return i.device }

type fakeConnection struct {
	orientationSupported bool
	mirroringSupported   bool

	mu          sync.Mutex
	orientation avdevice.VideoOrientation
	setCount    int
	mirrored    bool
}

func newFakeConnection() *fakeConnection {
	return &fakeConnection{orientationSupported: true, mirroringSupported: true}
}

func (c *fakeConnection) IsVideoOrientationSupported() bool { return c.orientationSupported }

func (c *fakeConnection) VideoOrientation() avdevice.VideoOrientation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orientation
}

func (c *fakeConnection) SetVideoOrientation(o avdevice.VideoOrientation) {
	c.mu.Lock()
	c.orientation = o
	c.setCount++
	c.mu.Unlock()
}

func (c *fakeConnection) orientationSets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setCount
}

func (c *fakeConnection) IsVideoMirroringSupported() bool { return c.mirroringSupported }

func (c *fakeConnection) SetVideoMirrored(m bool) {
	c.mu.Lock()
	c.mirrored = m
	c.mu.Unlock()
}

type fakePhotoOutput struct {
	conn *fakeConnection

	mu       sync.Mutex
	data     []byte
	err      error
	captures int
}

func newFakePhotoOutput(data []byte) *fakePhotoOutput {
	return &fakePhotoOutput{conn: newFakeConnection(), data: data}
}

func (p *fakePhotoOutput) MediaType() avdevice.MediaType { return avdevice.Video }

func (p *fakePhotoOutput) Connection(mt avdevice.MediaType) avdevice.Connection {
	if mt != avdevice.Video {
		return nil
	}
	return p.conn
}

func (p *fakePhotoOutput) CapturePhoto(avdevice.PhotoSettings) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.captures++
	return p.data, p.err
}

func (p *fakePhotoOutput) captureCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.captures
}

type fakeMovieOutput struct {
	conn *fakeConnection

	mu        sync.Mutex
	recording bool
	path      string
	done      avdevice.RecordingHandler
	startErr  error
	location  *avdevice.LocationMetadata
	stops     int
}

func newFakeMovieOutput() *fakeMovieOutput {
	return &fakeMovieOutput{conn: newFakeConnection()}
}

func (m *fakeMovieOutput) MediaType() avdevice.MediaType { return avdevice.Video }

func (m *fakeMovieOutput) Connection(mt avdevice.MediaType) avdevice.Connection {
	if mt != avdevice.Video {
		return nil
	}
	return m.conn
}

func (m *fakeMovieOutput) SetLocationMetadata(loc avdevice.LocationMetadata) {
	m.mu.Lock()
	m.location = &loc
	m.mu.Unlock()
}

func (m *fakeMovieOutput) StartRecording(path string, done avdevice.RecordingHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startErr != nil {
		return m.startErr
	}
	m.recording = true
	m.path = path
	m.done = done
	return nil
}

func (m *fakeMovieOutput) StopRecording() {
	m.mu.Lock()
	if !m.recording {
		m.stops++
		m.mu.Unlock()
		return
	}
	m.recording = false
	done := m.done
	path := m.path
	m.done = nil
	m.mu.Unlock()
	if done != nil {
		done(path, nil)
	}
}

// finish simulates the hardware ending the recording with an error.
func (m *fakeMovieOutput) finish(err error) {
	m.mu.Lock()
	m.recording = false
	done := m.done
	path := m.path
	m.done = nil
	m.mu.Unlock()
	if done != nil {
		done(path, err)
	}
}

func (m *fakeMovieOutput) IsRecording() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recording
}

type fakeMetadataOutput struct {
	session *fakeSession

	mu          sync.Mutex
	available   []avdevice.MetadataObjectType
	types       []avdevice.MetadataObjectType
	handler     func([]avdevice.MetadataObject)
	typesErr    error
	refuseTypes error
}

func (o *fakeMetadataOutput) MediaType() avdevice.MediaType { return avdevice.Metadata }

func (o *fakeMetadataOutput) Connection(avdevice.MediaType) avdevice.Connection { return nil }

func (o *fakeMetadataOutput) AvailableObjectTypes() []avdevice.MetadataObjectType {
	return o.available
}

func (o *fakeMetadataOutput) SetObjectTypes(types []avdevice.MetadataObjectType) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil || !o.session.hasOutput(o) {
		o.typesErr = errors.New("not attached")
		return o.typesErr
	}
	if o.refuseTypes != nil {
		o.typesErr = o.refuseTypes
		return o.typesErr
	}
	o.types = types
	return nil
}

func (o *fakeMetadataOutput) SetHandler(h func([]avdevice.MetadataObject)) {
	o.mu.Lock()
	o.handler = h
	o.mu.Unlock()
}

func (o *fakeMetadataOutput) emit(objects []avdevice.MetadataObject) {
	o.mu.Lock()
	h := o.handler
	o.mu.Unlock()
	if h != nil {
		h(objects)
	}
}

// fakeSession records configuration brackets and membership.
type fakeSession struct {
	mu          sync.Mutex
	inputs      []avdevice.Input
	outputs     []avdevice.Output
	preset      avdevice.Preset
	badPresets  map[avdevice.Preset]bool
	running     bool
	configDepth int
	maxInputs   int // high-water mark of simultaneous video inputs
	commits     int
	refuseMeta  bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{preset: avdevice.PresetHigh}
}

func (s *fakeSession) BeginConfiguration() {
	s.mu.Lock()
	s.configDepth++
	s.mu.Unlock()
}

func (s *fakeSession) CommitConfiguration() {
	s.mu.Lock()
	s.configDepth--
	s.commits++
	s.mu.Unlock()
}

func (s *fakeSession) AddInput(in avdevice.Input) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, in)
	if n := s.videoInputCountLocked(); n > s.maxInputs {
		s.maxInputs = n
	}
	return nil
}

func (s *fakeSession) RemoveInput(in avdevice.Input) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.inputs {
		if existing == in {
			s.inputs = append(s.inputs[:i], s.inputs[i+1:]...)
			return
		}
	}
}

func (s *fakeSession) Inputs() []avdevice.Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]avdevice.Input(nil), s.inputs...)
}

func (s *fakeSession) videoInputCountLocked() int {
	n := 0
	for _, in := range s.inputs {
		if in.Device().MediaType() == avdevice.Video {
			n++
		}
	}
	return n
}

func (s *fakeSession) videoInputCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videoInputCountLocked()
}

func (s *fakeSession) CanAddOutput(out avdevice.Output) bool {
	if out.MediaType() == avdevice.Metadata && s.refuseMeta {
		return false
	}
	return true
}

func (s *fakeSession) AddOutput(out avdevice.Output) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs = append(s.outputs, out)
	return nil
}

func (s *fakeSession) RemoveOutput(out avdevice.Output) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.outputs {
		if existing == out {
			s.outputs = append(s.outputs[:i], s.outputs[i+1:]...)
			return
		}
	}
}

func (s *fakeSession) Outputs() []avdevice.Output {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]avdevice.Output(nil), s.outputs...)
}

func (s *fakeSession) hasOutput(out avdevice.Output) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.outputs {
		if existing == out {
			return true
		}
	}
	return false
}

func (s *fakeSession) SetPreset(p avdevice.Preset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.badPresets[p] {
		return errors.New("preset not supported")
	}
	s.preset = p
	return nil
}

func (s *fakeSession) Preset() avdevice.Preset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preset
}

func (s *fakeSession) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	return nil
}

func (s *fakeSession) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

func (s *fakeSession) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// fakeBackend wires the fakes together.
type fakeBackend struct {
	back  *fakeDevice
	front *fakeDevice
	mic   *fakeDevice

	mu       sync.Mutex
	sessions []*fakeSession
	photo    *fakePhotoOutput
	movie    *fakeMovieOutput
	meta     *fakeMetadataOutput
	inputErr error

	photoData    []byte
	metaAvail    []avdevice.MetadataObjectType
	metaTypesErr error
}

func newFakeBackend() *fakeBackend {
	back := newFakeCamera("cam-back", avdevice.PositionBack)
	back.flash = true
	back.torch = true
	front := newFakeCamera("cam-front", avdevice.PositionFront)
	mic := &fakeDevice{id: "mic-0", mt: avdevice.Audio}
	return &fakeBackend{back: back, front: front, mic: mic}
}

func (b *fakeBackend) Devices(mt avdevice.MediaType) []avdevice.Device {
	switch mt {
	case avdevice.Video:
		var out []avdevice.Device
		if b.back != nil {
			out = append(out, b.back)
		}
		if b.front != nil {
			out = append(out, b.front)
		}
		return out
	case avdevice.Audio:
		if b.mic != nil {
			return []avdevice.Device{b.mic}
		}
	}
	return nil
}

func (b *fakeBackend) DeviceAt(pos avdevice.Position, mt avdevice.MediaType) (avdevice.Device, bool) {
	if mt == avdevice.Audio {
		if b.mic == nil {
			return nil, false
		}
		return b.mic, true
	}
	switch pos {
	case avdevice.PositionBack:
		if b.back != nil {
			return b.back, true
		}
	case avdevice.PositionFront:
		if b.front != nil {
			return b.front, true
		}
	}
	return nil, false
}

func (b *fakeBackend) NewSession() avdevice.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := newFakeSession()
	b.sessions = append(b.sessions, s)
	return s
}

func (b *fakeBackend) lastSession() *fakeSession {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.sessions) == 0 {
		return nil
	}
	return b.sessions[len(b.sessions)-1]
}

func (b *fakeBackend) NewInput(d avdevice.Device) (avdevice.Input, error) {
	if b.inputErr != nil {
		return nil, b.inputErr
	}
	return &fakeInput{device: d}, nil
}

func (b *fakeBackend) NewPhotoOutput() avdevice.PhotoOutput {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.photo = newFakePhotoOutput(b.photoData)
	return b.photo
}

func (b *fakeBackend) NewMovieOutput() avdevice.MovieOutput {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.movie = newFakeMovieOutput()
	return b.movie
}

func (b *fakeBackend) NewMetadataOutput() avdevice.MetadataOutput {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.meta = &fakeMetadataOutput{
		session:     b.lastSessionLocked(),
		available:   b.metaAvail,
		refuseTypes: b.metaTypesErr,
	}
	return b.meta
}

func (b *fakeBackend) lastSessionLocked() *fakeSession {
	if len(b.sessions) == 0 {
		return nil
	}
	return b.sessions[len(b.sessions)-1]
}

// fakePreview is a preview surface of the given pixel size.
type fakePreview struct {
	conn   *fakeConnection
	width  float64
	height float64
}

func newFakePreview(w, h float64) *fakePreview {
	return &fakePreview{conn: newFakeConnection(), width: w, height: h}
}

func (p *fakePreview) Connection() avdevice.Connection { return p.conn }

func (p *fakePreview) CaptureDevicePoint(x, y float64) avdevice.Point {
	return avdevice.Point{X: x / p.width, Y: y / p.height}
}

func (p *fakePreview) ContainsPoint(x, y float64) bool {
	return x >= 0 && x <= p.width && y >= 0 && y <= p.height
}

// fakeMotion delivers gravity samples by hand.
type fakeMotion struct {
	mu        sync.Mutex
	available bool
	fn        func(orientation.GravitySample)
	stops     int
}

func (m *fakeMotion) Available() bool { return m.available }

func (m *fakeMotion) Start(_ time.Duration, fn func(orientation.GravitySample)) error {
	m.mu.Lock()
	m.fn = fn
	m.mu.Unlock()
	return nil
}

func (m *fakeMotion) Stop() {
	m.mu.Lock()
	m.stops++
	m.mu.Unlock()
}

// push feeds one gravity sample through the provider callback.
func (m *fakeMotion) push(g orientation.GravitySample) {
	m.mu.Lock()
	fn := m.fn
	m.mu.Unlock()
	if fn != nil {
		fn(g)
	}
}

// newTestController builds a controller over the fake backend with
// synchronous completion dispatch.
func newTestController(b *fakeBackend, opts ...Option) *CameraController {
	base := []Option{
		WithBackend(b),
		WithCompletionDispatcher(func(f func()) { f() }),
	}
	return New(append(base, opts...)...)
}

// flush waits for all queued reconfiguration work to finish.
func (c *CameraController) flush() {
	c.queue.Sync(func() {})
}
