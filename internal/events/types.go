package events

// Event type constants for kelindar/event.
const (
	TypeErrorDisplay uint32 = iota + 1
	TypeFocusReticle
	TypeDeviceFlip
	TypeShutter
	TypeQRCode
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// ErrorDisplayEvent carries a user-facing error: a short title and a longer
// message. Both advisory and hard errors flow through here.
type ErrorDisplayEvent struct {
	Title   string
	Message string
	// Advisory is true for capability warnings that did not abort the
	// operation.
	Advisory bool
}

func (e ErrorDisplayEvent) Type() uint32 { return TypeErrorDisplay }

// FocusReticleEvent asks the UI to show a transient focus indicator at the
// given point in preview-surface coordinates.
type FocusReticleEvent struct {
	X, Y float64
}

func (e FocusReticleEvent) Type() uint32 { return TypeFocusReticle }

// DeviceFlipEvent reports that the active camera changed, so the UI can run
// its flip transition. Suppressed during teardown.
type DeviceFlipEvent struct {
	Device string
}

func (e DeviceFlipEvent) Type() uint32 { return TypeDeviceFlip }

// ShutterEvent asks the UI to run a brief shutter-flash animation.
type ShutterEvent struct{}

func (e ShutterEvent) Type() uint32 { return TypeShutter }

// QRCodeEvent carries one decoded machine-readable code value.
type QRCodeEvent struct {
	Value string
}

func (e QRCodeEvent) Type() uint32 { return TypeQRCode }
