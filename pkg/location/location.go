// Package location abstracts the host's location-tracking service.
package location

import "time"

// Location is one fix from the location service.
type Location struct {
	Latitude           float64
	Longitude          float64
	Altitude           float64
	HorizontalAccuracy float64
	Time               time.Time
}

// Provider exposes the most recent, best-horizontal-accuracy fix.
type Provider interface {
	// Last returns the best available fix, or false when none exists.
	Last() (Location, bool)
}

// Fixed is a Provider that always reports the same location. Useful for
// tests and for stationary installations.
type Fixed Location

func (f Fixed) Last() (Location, bool) {
	return Location(f), true
}

// None is a Provider without a fix.
type None struct{}

func (None) Last() (Location, bool) {
	return Location{}, false
}
