package metadata

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/geo/s2"
	"github.com/rwcarlsen/goexif/exif"
	"go.uber.org/zap"

	"pothole-report/model"
)

var (
	ErrUnreadable = errors.New("unreadable image")
	ErrNoExif     = errors.New("no EXIF metadata")
	ErrNoGPS      = errors.New("no GPS data")
	ErrNoDateTime = errors.New("no capture date/time")
)

// Extractor reads capture time and GPS position from image metadata.
type Extractor struct {
	Log *zap.Logger
}

func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{Log: logger}
}

// Extract reads one image. Missing metadata is not an error: the
// returned photo simply has no TakenAt or LonLat. An error is returned
// only when the file cannot be read as a JPEG or PNG image.
func (e *Extractor) Extract(path string) (model.Photo, error) {
	photo := model.Photo{FilePath: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return photo, fmt.Errorf("%w: %s: %v", ErrUnreadable, filepath.Base(path), err)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return photo, fmt.Errorf("%w: %s: %v", ErrUnreadable, filepath.Base(path), err)
	}

	x, err := decodeExif(path, data)
	if err != nil {
		e.Log.Debug("no EXIF metadata",
			zap.String("file", filepath.Base(path)),
			zap.Error(err),
		)
		return photo, nil
	}

	if taken, err := dateTime(x); err == nil {
		photo.TakenAt = &taken
	} else {
		e.Log.Debug("no capture time in EXIF",
			zap.String("file", filepath.Base(path)),
			zap.Error(err),
		)
	}

	if lat, lon, err := coordinates(x); err == nil {
		photo.LonLat = model.NewGeoPoint(lat, lon)
	} else {
		e.Log.Debug("no usable GPS position in EXIF",
			zap.String("file", filepath.Base(path)),
			zap.Error(err),
		)
	}
	return photo, nil
}

func decodeExif(path string, data []byte) (*exif.Exif, error) {
	var r io.Reader = bytes.NewReader(data)
	if strings.EqualFold(filepath.Ext(path), ".png") || bytes.HasPrefix(data, pngSignature) {
		raw, err := pngExifChunk(data)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(raw)
	}
	x, err := exif.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoExif, err)
	}
	return x, nil
}

func coordinates(x *exif.Exif) (float64, float64, error) {
	lat, lon, err := x.LatLong()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrNoGPS, err)
	}
	if !ValidCoordinate(lat, lon) {
		return 0, 0, fmt.Errorf("%w: coordinate %f,%f out of range", ErrNoGPS, lat, lon)
	}
	return lat, lon, nil
}

// dateTime prefers DateTimeOriginal and falls back to DateTime.
func dateTime(x *exif.Exif) (time.Time, error) {
	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		tag, err = x.Get(exif.DateTime)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", ErrNoDateTime, err)
		}
	}
	value, err := tag.StringVal()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrNoDateTime, err)
	}
	return ParseDateTime(value)
}

// ValidCoordinate reports whether lat/lon are finite and within range.
func ValidCoordinate(lat, lon float64) bool {
	return s2.LatLngFromDegrees(lat, lon).IsValid()
}

// ParseDateTime parses the EXIF "YYYY:MM:DD HH:MM:SS" form, ignoring
// trailing NULs and anything after the seconds field.
func ParseDateTime(value string) (time.Time, error) {
	value = strings.TrimSpace(strings.TrimRight(value, "\x00"))
	if len(value) > 19 {
		value = value[:19]
	}
	t, err := time.ParseInLocation("2006:01:02 15:04:05", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrNoDateTime, err)
	}
	return t, nil
}
