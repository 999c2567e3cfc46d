// Package geo prepares the map datasets used by the web front end: a
// trimmed permit-area layer, a bus stop layer built from GTFS feeds and a
// static borough outline image.
package geo

import (
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"
)

// ReadFeatureCollection loads a GeoJSON feature collection.
func ReadFeatureCollection(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// WriteFeatureCollection writes fc as compact GeoJSON.
func WriteFeatureCollection(path string, fc *geojson.FeatureCollection) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write geojson: %w", err)
	}
	return nil
}
