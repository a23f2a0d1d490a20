package util

import (
	"math"
	"testing"

	"github.com/Krajiyah/ble-walkie/pkg/models"
	"gotest.tools/assert"
)

func assertClose(t *testing.T, actual, expected, tolerance float64) {
	assert.Assert(t, math.Abs(actual-expected) <= tolerance, "expected %f got %f", expected, actual)
}

func TestDistanceAltitudeOnly(t *testing.T) {
	a := models.Fix{Latitude: 48.8584, Longitude: 2.2945, Altitude: 35}
	b := models.Fix{Latitude: 48.8584, Longitude: 2.2945, Altitude: 45}
	assertClose(t, Distance(a, b), 10, 1e-9)
	assertClose(t, Distance(b, a), 10, 1e-9)
}

func TestDistanceOneDegreeLatitude(t *testing.T) {
	a := models.Fix{Latitude: 10, Longitude: 20, Altitude: 5}
	b := models.Fix{Latitude: 11, Longitude: 20, Altitude: 5}
	expected := EarthRadius * math.Pi / 180
	assertClose(t, Distance(a, b), expected, 1e-3)
	assertClose(t, Distance(a, b), 111195, 1)
}

func TestDistanceCombinesLegs(t *testing.T) {
	a := models.Fix{Latitude: 0, Longitude: 0, Altitude: 0}
	b := models.Fix{Latitude: 0, Longitude: 0.001, Altitude: 100}
	surface := SurfaceDistance(a, b)
	assertClose(t, surface, 111.195, 0.01)
	assertClose(t, Distance(a, b), math.Sqrt(surface*surface+100*100), 1e-9)
}

func TestDistanceIdentical(t *testing.T) {
	a := models.Fix{Latitude: -33.8568, Longitude: 151.2153, Altitude: 12}
	assert.Equal(t, Distance(a, a), 0.0)
}
