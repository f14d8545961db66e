package geo

import (
	"math"
	"math/rand"

	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/models"
)

const earthRadiusKm = 6371.0

// Distance returns the distance in kilometers between two locations using
// the equirectangular approximation. Delivery zones span a few kilometers,
// so the planar projection stays well within a meter of the great-circle
// answer while being much cheaper per order.
func Distance(a, b models.Location) float64 {
	meanLat := (a.Lat + b.Lat) / 2 * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180 * math.Cos(meanLat)
	return earthRadiusKm * math.Sqrt(dLat*dLat+dLon*dLon)
}

// SampleInDisk draws a destination uniformly over the disk around center
// whose radius is 1.5 times the effective radius min(avgRadiusKm,
// maxRangeKm). The sqrt draw makes the density uniform in area, which puts
// the expected distance at exactly the average radius. It returns the
// candidate and its true distance from center; enforcing the hard range
// limit is the caller's job.
func SampleInDisk(rng *rand.Rand, center models.Location, avgRadiusKm, maxRangeKm float64) (models.Location, float64) {
	effective := math.Min(avgRadiusKm, maxRangeKm)
	r := 1.5 * effective * math.Sqrt(rng.Float64())
	theta := 2 * math.Pi * rng.Float64()

	dLat := r * math.Cos(theta) / earthRadiusKm * 180 / math.Pi
	dLon := r * math.Sin(theta) / (earthRadiusKm * math.Cos(center.Lat*math.Pi/180)) * 180 / math.Pi

	dest := models.Location{
		Lat: center.Lat + dLat,
		Lon: center.Lon + dLon,
	}
	return dest, Distance(center, dest)
}
