package geo

import (
	"errors"
	"math"
)

// EarthRadiusKm is the mean radius used for all distance calculations.
const EarthRadiusKm = 6367.0

var ErrInvalidPoint = errors.New("invalid coordinates")

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return ErrInvalidPoint
	}
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return ErrInvalidPoint
	}
	return nil
}

// Haversine returns the great-circle distance in kilometers. Arguments are degrees.
func Haversine(lon1, lat1, lon2, lat2 float64) float64 {
	lon1, lat1, lon2, lat2 = radians(lon1), radians(lat1), radians(lon2), radians(lat2)
	dlon := lon2 - lon1
	dlat := lat2 - lat1
	a := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	return 2 * math.Asin(math.Sqrt(a)) * EarthRadiusKm
}

// DistanceKm is Haversine over two points.
func DistanceKm(a, b Point) float64 {
	return Haversine(a.Lng, a.Lat, b.Lng, b.Lat)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
