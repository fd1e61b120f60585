package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

const (
	DefaultMaxDimension = 1600
	exportQuality       = 85
)

var (
	ErrNotDirectory = errors.New("not a directory")
	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}
)

type PhotoStorage interface {
	ListPhotos() ([]string, error)
	SavePhoto(path string) (string, error)
}

// LocalPhotoStorage reads photos from Directory and, when ExportDir is
// set, writes upload-ready copies there.
type LocalPhotoStorage struct {
	Directory    string
	ExportDir    string
	MaxDimension int
	Log          *zap.Logger
}

func NewLocalPhotoStorage(directory string, logger *zap.Logger) *LocalPhotoStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalPhotoStorage{
		Directory:    directory,
		MaxDimension: DefaultMaxDimension,
		Log:          logger,
	}
}

// ListPhotos returns the JPG/PNG files directly inside Directory, sorted
// by name.
func (s *LocalPhotoStorage) ListPhotos() ([]string, error) {
	info, err := os.Stat(s.Directory)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, s.Directory)
	}

	entries, err := os.ReadDir(s.Directory)
	if err != nil {
		return nil, fmt.Errorf("reading folder %s: %w", s.Directory, err)
	}

	var paths []string
	for _, entry := range entries {
		if !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		path := filepath.Join(s.Directory, entry.Name())
		// follows symlinks
		if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool {
		return filepath.Base(paths[i]) < filepath.Base(paths[j])
	})
	return paths, nil
}

// SavePhoto writes an auto-oriented JPEG copy of path into ExportDir,
// scaled down to fit MaxDimension. The copy keeps the base name with a
// .jpg extension, so a.png and a.jpg in one folder share a destination.
func (s *LocalPhotoStorage) SavePhoto(path string) (string, error) {
	if s.ExportDir == "" {
		return "", errors.New("no export directory configured")
	}
	if sameDir(s.ExportDir, filepath.Dir(path)) {
		return "", fmt.Errorf("export directory %s would overwrite the originals", s.ExportDir)
	}
	if err := os.MkdirAll(s.ExportDir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}

	maxDim := s.MaxDimension
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	dst := filepath.Join(s.ExportDir, ExportName(path))
	if err := imaging.Save(img, dst, imaging.JPEGQuality(exportQuality)); err != nil {
		return "", fmt.Errorf("saving %s: %w", dst, err)
	}

	s.Log.Debug("exported photo",
		zap.String("source", path),
		zap.String("destination", dst),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
	)
	return dst, nil
}

// ExportName is the file name of the upload copy of path.
func ExportName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".jpg"
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
