// Package exifgps injects GPS metadata into encoded JPEG images. Existing
// EXIF tags are preserved; the GPS IFD is overlaid with the supplied fix.
package exifgps

import (
	"bytes"
	"fmt"
	"math"
	"time"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"

	"github.com/camkit/camsession/pkg/location"
)

// DMS is a coordinate in degrees, minutes and decimal seconds.
type DMS struct {
	Degrees int
	Minutes int
	Seconds float64
}

// ToDMS converts a decimal coordinate to its absolute DMS representation.
// The hemisphere is carried separately by the reference letter.
func ToDMS(decimal float64) DMS {
	abs := math.Abs(decimal)
	deg := math.Floor(abs)
	minFloat := (abs - deg) * 60
	min := math.Floor(minFloat)
	sec := (minFloat - min) * 60
	return DMS{Degrees: int(deg), Minutes: int(min), Seconds: sec}
}

// LatitudeRef returns the hemisphere reference letter for a latitude.
func LatitudeRef(lat float64) string {
	if lat < 0 {
		return "S"
	}
	return "N"
}

// LongitudeRef returns the hemisphere reference letter for a longitude.
func LongitudeRef(lon float64) string {
	if lon < 0 {
		return "W"
	}
	return "E"
}

func (d DMS) rationals() []exifcommon.Rational {
	return []exifcommon.Rational{
		{Numerator: uint32(d.Degrees), Denominator: 1},
		{Numerator: uint32(d.Minutes), Denominator: 1},
		{Numerator: uint32(math.Round(d.Seconds * 100)), Denominator: 100},
	}
}

// Inject returns a copy of jpegData with the GPS IFD set from loc. The
// timestamp is recorded in UTC. All other metadata in the image is kept
// as-is.
func Inject(jpegData []byte, loc location.Location, now time.Time) ([]byte, error) {
	jmp := jpegstructure.NewJpegMediaParser()
	intfc, err := jmp.ParseBytes(jpegData)
	if err != nil {
		return nil, fmt.Errorf("exifgps: parse jpeg: %w", err)
	}
	sl := intfc.(*jpegstructure.SegmentList)

	rootIb, err := sl.ConstructExifBuilder()
	if err != nil {
		// No EXIF block yet; start from an empty one.
		im, errMap := exifcommon.NewIfdMappingWithStandard()
		if errMap != nil {
			return nil, fmt.Errorf("exifgps: ifd mapping: %w", errMap)
		}
		ti := exif.NewTagIndex()
		rootIb = exif.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder)
	}

	gpsIb, err := exif.GetOrCreateIbFromRootIb(rootIb, "IFD/GPSInfo")
	if err != nil {
		return nil, fmt.Errorf("exifgps: gps ifd: %w", err)
	}

	utc := now.UTC()
	altRef := byte(0)
	alt := loc.Altitude
	if alt < 0 {
		// Below sea level.
		altRef = 1
		alt = -alt
	}

	tags := []struct {
		name  string
		value interface{}
	}{
		{"GPSVersionID", []byte{2, 3, 0, 0}},
		{"GPSLatitudeRef", LatitudeRef(loc.Latitude)},
		{"GPSLatitude", ToDMS(loc.Latitude).rationals()},
		{"GPSLongitudeRef", LongitudeRef(loc.Longitude)},
		{"GPSLongitude", ToDMS(loc.Longitude).rationals()},
		{"GPSAltitudeRef", []byte{altRef}},
		{"GPSAltitude", []exifcommon.Rational{{Numerator: uint32(math.Round(alt * 100)), Denominator: 100}}},
		{"GPSTimeStamp", []exifcommon.Rational{
			{Numerator: uint32(utc.Hour()), Denominator: 1},
			{Numerator: uint32(utc.Minute()), Denominator: 1},
			{Numerator: uint32(utc.Second()), Denominator: 1},
		}},
		{"GPSDateStamp", utc.Format("2006:01:02")},
	}
	for _, tag := range tags {
		if err := gpsIb.SetStandardWithName(tag.name, tag.value); err != nil {
			return nil, fmt.Errorf("exifgps: set %s: %w", tag.name, err)
		}
	}

	if err := sl.SetExif(rootIb); err != nil {
		return nil, fmt.Errorf("exifgps: set exif: %w", err)
	}

	out := new(bytes.Buffer)
	if err := sl.Write(out); err != nil {
		return nil, fmt.Errorf("exifgps: write jpeg: %w", err)
	}
	return out.Bytes(), nil
}
