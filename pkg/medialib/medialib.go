// Package medialib abstracts the media library that finished photos and
// videos are persisted into, optionally inside named albums.
package medialib

import (
	"errors"
	"time"

	"github.com/camkit/camsession/pkg/location"
)

var (
	// ErrNotSaved is returned when the library accepted the request but
	// could not produce a saved asset.
	ErrNotSaved = errors.New("medialib: asset was not saved")
)

// Kind tells whether an asset is a photo or a video.
type Kind string

const (
	Photo Kind = "photo"
	Video Kind = "video"
)

// SaveRequest asks the library to persist one file.
type SaveRequest struct {
	// FilePath is the temporary file to ingest. The library owns the file
	// after a successful save.
	FilePath string
	Kind     Kind
	// Album is the album to file the asset under; created if absent. Empty
	// means the library root.
	Album    string
	Date     time.Time
	Location *location.Location
}

// Asset references a persisted photo or video.
type Asset struct {
	ID      string
	Kind    Kind
	Album   string
	Path    string
	SavedAt time.Time
}

// Service persists capture results into the user's media library.
type Service interface {
	Save(SaveRequest) (Asset, error)
}
