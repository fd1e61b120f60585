package metadata

import (
	"github.com/golang/geo/s2"

	"pothole-report/model"
)

const earthRadiusMetres = 6371008.8

// DistanceMetres is the great-circle distance between two points.
func DistanceMetres(a, b *model.GeoPoint) float64 {
	if a == nil || b == nil {
		return 0
	}
	from := s2.LatLngFromDegrees(a.Lat(), a.Lon())
	to := s2.LatLngFromDegrees(b.Lat(), b.Lon())
	return from.Distance(to).Radians() * earthRadiusMetres
}

// FarthestFrom returns the located photo farthest from origin and its
// distance. ok is false when no other photo has a position.
func FarthestFrom(origin model.Photo, photos []model.Photo) (farthest model.Photo, metres float64, ok bool) {
	for _, p := range photos {
		if !p.HasGPS() || p.FilePath == origin.FilePath {
			continue
		}
		d := DistanceMetres(origin.LonLat, p.LonLat)
		if !ok || d > metres {
			farthest, metres, ok = p, d, true
		}
	}
	return farthest, metres, ok
}
