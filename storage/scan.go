package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"pothole-report/model"
)

// Extractor reads metadata from a single image file.
type Extractor interface {
	Extract(path string) (model.Photo, error)
}

// ScanResult is the outcome of reading every image in a folder. Photos
// keeps the listing order; Located holds only photos with GPS, ordered
// by capture time.
type ScanResult struct {
	Photos     []model.Photo
	Located    []model.Photo
	Unreadable []string
	NoGPS      []string
}

// Earliest returns the earliest-dated photo with GPS.
func (r *ScanResult) Earliest() (model.Photo, bool) {
	if len(r.Located) == 0 {
		return model.Photo{}, false
	}
	return r.Located[0], true
}

// ImageNames lists every image file found, readable or not.
func (r *ScanResult) ImageNames() []string {
	names := make([]string, len(r.Photos))
	for i, p := range r.Photos {
		names[i] = p.Name()
	}
	return names
}

// Scan lists the folder and extracts metadata from each image. Images
// that cannot be read or have no GPS are recorded and skipped; skip
// reasons are logged at debug level.
func (s *LocalPhotoStorage) Scan(ctx context.Context, extractor Extractor) (*ScanResult, error) {
	paths, err := s.ListPhotos()
	if err != nil {
		return nil, err
	}

	result := &ScanResult{}
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.Log.Debug("processing image",
			zap.String("file", filepath.Base(path)),
			zap.Int("index", i+1),
			zap.Int("total", len(paths)),
		)

		photo, err := extractor.Extract(path)
		if photo.FilePath == "" {
			photo.FilePath = path
		}
		result.Photos = append(result.Photos, photo)

		if err != nil {
			result.Unreadable = append(result.Unreadable, photo.Name())
			s.Log.Debug("skipped image", zap.String("file", photo.Name()), zap.String("reason", "unreadable"), zap.Error(err))
			continue
		}
		if !photo.HasGPS() {
			result.NoGPS = append(result.NoGPS, photo.Name())
			s.Log.Debug("skipped image", zap.String("file", photo.Name()), zap.String("reason", "no GPS"))
			continue
		}
		result.Located = append(result.Located, photo)
	}

	SortByTakenAt(result.Located)
	return result, nil
}

// SortByTakenAt orders photos earliest first. Undated photos go last;
// ties break on file name.
func SortByTakenAt(photos []model.Photo) {
	sort.SliceStable(photos, func(i, j int) bool {
		a, b := photos[i], photos[j]
		switch {
		case a.TakenAt != nil && b.TakenAt != nil:
			if !a.TakenAt.Equal(*b.TakenAt) {
				return a.TakenAt.Before(*b.TakenAt)
			}
		case a.TakenAt != nil:
			return true
		case b.TakenAt != nil:
			return false
		}
		return filepath.Base(a.FilePath) < filepath.Base(b.FilePath)
	})
}

// ExportAll writes upload copies of every listed photo. Failures are
// logged and counted; the first one is returned alongside the count of
// successful exports.
func (s *LocalPhotoStorage) ExportAll(photos []model.Photo) (int, error) {
	var (
		saved    int
		firstErr error
	)
	for _, p := range photos {
		if _, err := s.SavePhoto(p.FilePath); err != nil {
			s.Log.Warn("export failed", zap.String("file", p.Name()), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		saved++
	}
	if firstErr != nil {
		return saved, errors.Join(errors.New("some photos could not be exported"), firstErr)
	}
	return saved, nil
}
