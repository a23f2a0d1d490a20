package util

import (
	"math"

	"github.com/Krajiyah/ble-walkie/pkg/models"
)

// EarthRadius is the mean earth radius in meters
const EarthRadius = 6371008.8

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// SurfaceDistance returns the haversine great-circle distance in meters
func SurfaceDistance(a, b models.Fix) float64 {
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Latitude))*math.Cos(radians(b.Latitude))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadius * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Distance returns the straight line distance in meters, combining surface distance and altitude delta
func Distance(a, b models.Fix) float64 {
	return math.Hypot(SurfaceDistance(a, b), math.Abs(a.Altitude-b.Altitude))
}
