package avdevice

// Session is one live capture pipeline: a set of inputs feeding a set of
// outputs. All mutation must happen inside a BeginConfiguration /
// CommitConfiguration bracket, and the caller is responsible for never
// interleaving brackets from different goroutines.
type Session interface {
	BeginConfiguration()
	CommitConfiguration()

	AddInput(Input) error
	RemoveInput(Input)
	Inputs() []Input

	CanAddOutput(Output) bool
	AddOutput(Output) error
	RemoveOutput(Output)
	Outputs() []Output

	// SetPreset applies a quality preset. An unsupported preset returns an
	// error and leaves the previous preset in effect.
	SetPreset(Preset) error
	Preset() Preset

	Start() error
	Stop()
	IsRunning() bool
}

// Backend creates sessions and resolves devices for one capture stack.
type Backend interface {
	// Devices enumerates devices of the given media type.
	Devices(MediaType) []Device
	// DeviceAt resolves the device at a position, if present.
	DeviceAt(Position, MediaType) (Device, bool)

	NewSession() Session
	// NewInput wraps a device into an input. It fails when the device is
	// busy or access to it has been revoked.
	NewInput(Device) (Input, error)
	NewPhotoOutput() PhotoOutput
	NewMovieOutput() MovieOutput
	NewMetadataOutput() MetadataOutput
}

// PreviewSurface is the host-provided sink that renders the live preview. It
// converts UI coordinates into device points of interest.
type PreviewSurface interface {
	Connection() Connection
	// CaptureDevicePoint maps a point in the surface's coordinate space to
	// a normalized device point of interest.
	CaptureDevicePoint(x, y float64) Point
	// ContainsPoint reports whether the point lies within the surface.
	ContainsPoint(x, y float64) bool
}
