// Package geojson turns the aid-location CSV into a GeoJSON FeatureCollection
// the map layer can load directly.
package geojson

import (
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/FACorreiaa/aid-map/internal/pkg/csvtable"
	"github.com/FACorreiaa/aid-map/internal/pkg/geo"
)

const (
	ColumnLat = "Lat"
	ColumnLon = "Lon"
)

type Point struct {
	Type string `json:"type"`
	// Coordinates are [lon, lat], GeoJSON order.
	Coordinates [2]float64 `json:"coordinates"`
}

type Feature struct {
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties"`
	Geometry   *Point            `json:"geometry"`
}

type FeatureCollection struct {
	Type string `json:"type"`
	// BBox is [west, south, east, north] over all located features.
	BBox     []float64 `json:"bbox,omitempty"`
	Features []Feature `json:"features"`
}

// FromTable builds one Feature per row. Rows without a usable Lat/Lon pair
// keep their properties and get a null geometry.
func FromTable(t *csvtable.Table) FeatureCollection {
	fc := FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]Feature, 0, t.Len()),
	}
	var bounds geo.Bounds

	for i := 0; i < t.Len(); i++ {
		f := Feature{
			Type:       "Feature",
			Properties: t.Record(i),
		}
		lat, latOK := parseFloat(t.Get(i, ColumnLat))
		lon, lonOK := parseFloat(t.Get(i, ColumnLon))
		if latOK && lonOK && geo.Valid(lat, lon) {
			f.Geometry = &Point{Type: "Point", Coordinates: [2]float64{lon, lat}}
			bounds.Extend(lat, lon)
		}
		fc.Features = append(fc.Features, f)
	}

	if !bounds.Empty() {
		fc.BBox = []float64{bounds.MinLon, bounds.MinLat, bounds.MaxLon, bounds.MaxLat}
	}
	return fc
}

// Write encodes fc with two-space indentation and without HTML escaping.
func Write(w io.Writer, fc FeatureCollection) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return errors.Wrap(enc.Encode(fc), "encode geojson")
}

// ConvertFile reads the CSV at in and writes its GeoJSON to out. It returns the
// number of features written. An empty CSV yields an empty collection.
func ConvertFile(in, out string) (int, error) {
	t, err := csvtable.ReadFile(in)
	if errors.Is(err, csvtable.ErrNoHeader) {
		t, err = csvtable.New(nil), nil
	}
	if err != nil {
		return 0, err
	}
	fc := FromTable(t)

	f, err := os.Create(out)
	if err != nil {
		return 0, errors.Wrapf(err, "create %s", out)
	}
	if err := Write(f, fc); err != nil {
		_ = f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, errors.Wrapf(err, "close %s", out)
	}
	return len(fc.Features), nil
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
