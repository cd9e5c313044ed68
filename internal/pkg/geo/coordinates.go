package geo

import "math"

// Valid reports whether lat/lon are finite and inside the WGS84 ranges.
func Valid(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Bounds accumulates the bounding box of a set of points. The zero value is
// an empty box.
type Bounds struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
	n              int
}

// Extend adds a point; invalid points are ignored.
func (b *Bounds) Extend(lat, lon float64) {
	if !Valid(lat, lon) {
		return
	}
	if b.n == 0 {
		b.MinLat, b.MaxLat, b.MinLon, b.MaxLon = lat, lat, lon, lon
	} else {
		b.MinLat = math.Min(b.MinLat, lat)
		b.MaxLat = math.Max(b.MaxLat, lat)
		b.MinLon = math.Min(b.MinLon, lon)
		b.MaxLon = math.Max(b.MaxLon, lon)
	}
	b.n++
}

func (b *Bounds) Empty() bool {
	return b.n == 0
}

// Center is the midpoint of the box, or fallback when the box is empty.
func (b *Bounds) Center(fallbackLat, fallbackLon float64) (float64, float64) {
	if b.Empty() {
		return fallbackLat, fallbackLon
	}
	return (b.MinLat + b.MaxLat) / 2, (b.MinLon + b.MaxLon) / 2
}
