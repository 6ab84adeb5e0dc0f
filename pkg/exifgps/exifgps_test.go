package exifgps

import (
	"bytes"
	"image"
	"image/jpeg"
	"testing"
	"time"

	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camkit/camsession/pkg/location"
)

func TestToDMS(t *testing.T) {
	munich := ToDMS(48.137154)
	assert.Equal(t, 48, munich.Degrees)
	assert.Equal(t, 8, munich.Minutes)
	assert.InDelta(t, 13.75, munich.Seconds, 0.01)

	// Negative coordinates convert to their absolute DMS; the hemisphere is
	// carried by the reference letter.
	sydney := ToDMS(-33.8688)
	assert.Equal(t, 33, sydney.Degrees)
	assert.Equal(t, 52, sydney.Minutes)
	assert.InDelta(t, 7.68, sydney.Seconds, 0.01)

	zero := ToDMS(0)
	assert.Equal(t, DMS{}, DMS{Degrees: zero.Degrees, Minutes: zero.Minutes})
}

func TestHemisphereRefs(t *testing.T) {
	assert.Equal(t, "N", LatitudeRef(48.1))
	assert.Equal(t, "S", LatitudeRef(-33.9))
	assert.Equal(t, "N", LatitudeRef(0))
	assert.Equal(t, "E", LongitudeRef(11.6))
	assert.Equal(t, "W", LongitudeRef(-122.4))
	assert.Equal(t, "E", LongitudeRef(0))
}

func encodeJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestInject(t *testing.T) {
	src := encodeJPEG(t)
	loc := location.Location{
		Latitude:  48.137154,
		Longitude: 11.576124,
		Altitude:  520.4,
	}
	when := time.Date(2024, 6, 1, 14, 30, 45, 0, time.UTC)

	out, err := Inject(src, loc, when)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.NotEqual(t, src, out)

	// The result is still a parseable JPEG with a GPS IFD.
	intfc, err := jpegstructure.NewJpegMediaParser().ParseBytes(out)
	require.NoError(t, err)
	sl := intfc.(*jpegstructure.SegmentList)

	_, _, tags, err := sl.DumpExif()
	require.NoError(t, err)

	found := map[string]string{}
	for _, tag := range tags {
		if tag.IfdPath == "IFD/GPSInfo" {
			found[tag.TagName] = tag.FormattedFirst
		}
	}
	assert.Equal(t, "N", found["GPSLatitudeRef"])
	assert.Equal(t, "E", found["GPSLongitudeRef"])
	assert.Contains(t, found, "GPSLatitude")
	assert.Contains(t, found, "GPSLongitude")
	assert.Contains(t, found, "GPSAltitude")
	assert.Equal(t, "2024:06:01", found["GPSDateStamp"])
}

func TestInjectSouthernHemisphereBelowSeaLevel(t *testing.T) {
	src := encodeJPEG(t)
	loc := location.Location{
		Latitude:  -31.5,
		Longitude: -68.5,
		Altitude:  -12,
	}

	out, err := Inject(src, loc, time.Now())
	require.NoError(t, err)

	intfc, err := jpegstructure.NewJpegMediaParser().ParseBytes(out)
	require.NoError(t, err)
	sl := intfc.(*jpegstructure.SegmentList)

	_, _, tags, err := sl.DumpExif()
	require.NoError(t, err)
	refs := map[string]string{}
	for _, tag := range tags {
		if tag.IfdPath == "IFD/GPSInfo" {
			refs[tag.TagName] = tag.FormattedFirst
		}
	}
	assert.Equal(t, "S", refs["GPSLatitudeRef"])
	assert.Equal(t, "W", refs["GPSLongitudeRef"])
}

// Freshly encoded JPEGs carry no EXIF segment, so Inject has to start from
// an empty builder before it can add the GPS IFD.
func TestInjectBuildsExifFromScratch(t *testing.T) {
	src := encodeJPEG(t)

	intfc, err := jpegstructure.NewJpegMediaParser().ParseBytes(src)
	require.NoError(t, err)
	_, err = intfc.(*jpegstructure.SegmentList).ConstructExifBuilder()
	require.Error(t, err, "source must not carry an EXIF block")

	out, err := Inject(src, location.Location{Latitude: 48.1, Longitude: 11.6}, time.Now())
	require.NoError(t, err)

	intfc, err = jpegstructure.NewJpegMediaParser().ParseBytes(out)
	require.NoError(t, err)
	_, _, tags, err := intfc.(*jpegstructure.SegmentList).DumpExif()
	require.NoError(t, err)
	assert.NotEmpty(t, tags)
}

func TestInjectRejectsGarbage(t *testing.T) {
	_, err := Inject([]byte("definitely not a jpeg"), location.Location{}, time.Now())
	assert.Error(t, err)
}

func TestInjectedImageStillDecodes(t *testing.T) {
	src := encodeJPEG(t)
	out, err := Inject(src, location.Location{Latitude: 1, Longitude: 2}, time.Now())
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
}
