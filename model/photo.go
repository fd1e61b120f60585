package model

import (
	"path/filepath"
	"time"
)

type Photo struct {
	FilePath string     `json:"file_path" yaml:"file_path"`
	TakenAt  *time.Time `json:"taken_at,omitempty" yaml:"taken_at,omitempty"`
	LonLat   *GeoPoint  `json:"lonlat,omitempty" yaml:"lonlat,omitempty"`
}

// Name is the base file name, used in listings and the report title.
func (p Photo) Name() string {
	return filepath.Base(p.FilePath)
}

func (p Photo) HasGPS() bool {
	return p.LonLat != nil
}

type GeoPoint struct {
	Type        string    `json:"type,omitempty" yaml:"type,omitempty"`
	Coordinates []float64 `json:"coordinates,omitempty" yaml:"coordinates,omitempty"` // [longitude, latitude]
}

func NewGeoPoint(lat, lon float64) *GeoPoint {
	return &GeoPoint{
		Type:        "Point",
		Coordinates: []float64{lon, lat},
	}
}

func (g *GeoPoint) Lat() float64 {
	if g == nil || len(g.Coordinates) < 2 {
		return 0
	}
	return g.Coordinates[1]
}

func (g *GeoPoint) Lon() float64 {
	if g == nil || len(g.Coordinates) < 1 {
		return 0
	}
	return g.Coordinates[0]
}
