// Package export serializes station cluster assignments to geospatial
// formats for map display.
package export

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/overcast-analytics/climate-cli/internal/model"
)

// GeoJSON renders assignments as a FeatureCollection of station points.
// Each feature is identified by its station id and carries the assigned
// cluster index as a property.
func GeoJSON(assignments []model.StationAssignment) ([]byte, error) {
	fc := geojson.FeatureCollection{
		Features: make([]*geojson.Feature, len(assignments)),
	}
	for i, a := range assignments {
		fc.Features[i] = &geojson.Feature{
			ID:       a.StationID,
			Geometry: geom.NewPointFlat(geom.XY, []float64{a.Lon, a.Lat}),
			Properties: map[string]any{
				"cluster": a.Cluster,
			},
		}
	}

	data, err := json.Marshal(&fc)
	if err != nil {
		return nil, eris.Wrap(err, "export: marshal feature collection")
	}
	return data, nil
}

// WriteGeoJSON renders assignments and writes them to path.
func WriteGeoJSON(path string, assignments []model.StationAssignment) error {
	data, err := GeoJSON(assignments)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	return nil
}
