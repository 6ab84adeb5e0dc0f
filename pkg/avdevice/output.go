package avdevice

import "time"

// Output is a data sink wired into a session.
type Output interface {
	MediaType() MediaType
	// Connection returns the output's connection for the given media type,
	// or nil when the output has no such connection (for example, no video
	// input is attached yet).
	Connection(MediaType) Connection
}

// PhotoSettings configures a single still capture.
type PhotoSettings struct {
	Flash IlluminationMode
}

// PhotoOutput captures encoded still images.
type PhotoOutput interface {
	Output
	// CapturePhoto blocks until the hardware delivers the encoded image
	// bytes for one still frame.
	CapturePhoto(PhotoSettings) ([]byte, error)
}

// LocationMetadata is geotagging information attached to a movie file.
type LocationMetadata struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
	Time      time.Time
}

// RecordingHandler is invoked once when a movie recording finishes, with the
// path the movie was written to.
type RecordingHandler func(path string, err error)

// MovieOutput records movie files.
type MovieOutput interface {
	Output
	StartRecording(path string, done RecordingHandler) error
	// StopRecording is a no-op when no recording is in progress.
	StopRecording()
	IsRecording() bool
	SetLocationMetadata(LocationMetadata)
}

// MetadataObjectType names a kind of machine-readable code.
type MetadataObjectType string

const (
	ObjectTypeQR      MetadataObjectType = "qr"
	ObjectTypeAztec   MetadataObjectType = "aztec"
	ObjectTypeDataMtx MetadataObjectType = "datamatrix"
	ObjectTypeEAN13   MetadataObjectType = "ean13"
	ObjectTypeEAN8    MetadataObjectType = "ean8"
	ObjectTypePDF417  MetadataObjectType = "pdf417"
)

// MetadataObject is one detected machine-readable code.
type MetadataObject struct {
	Type MetadataObjectType
	// StringValue is the decoded payload, empty when the code could not be
	// decoded to a string.
	StringValue string
}

// MetadataOutput reports machine-readable codes found in the video stream.
type MetadataOutput interface {
	Output
	AvailableObjectTypes() []MetadataObjectType
	// SetObjectTypes restricts detection to the given types. It fails when
	// the output is not attached to a session yet.
	SetObjectTypes([]MetadataObjectType) error
	SetHandler(func([]MetadataObject))
}
