package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overcast-analytics/climate-cli/internal/model"
)

func sampleAssignments() []model.StationAssignment {
	return []model.StationAssignment{
		{StationID: "42572610000", Lat: 37.62, Lon: -122.38, Cluster: 3},
		{StationID: "42572530000", Lat: 41.98, Lon: -87.90, Cluster: 7},
	}
}

func TestGeoJSON(t *testing.T) {
	data, err := GeoJSON(sampleAssignments())
	require.NoError(t, err)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Type     string `json:"type"`
			ID       string `json:"id"`
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties struct {
				Cluster int `json:"cluster"`
			} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &fc))

	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)

	sf := fc.Features[0]
	assert.Equal(t, "Feature", sf.Type)
	assert.Equal(t, "42572610000", sf.ID)
	assert.Equal(t, "Point", sf.Geometry.Type)
	// GeoJSON order is [lon, lat].
	require.Len(t, sf.Geometry.Coordinates, 2)
	assert.InDelta(t, -122.38, sf.Geometry.Coordinates[0], 1e-9)
	assert.InDelta(t, 37.62, sf.Geometry.Coordinates[1], 1e-9)
	assert.Equal(t, 3, sf.Properties.Cluster)

	assert.Equal(t, 7, fc.Features[1].Properties.Cluster)
}

func TestGeoJSONEmpty(t *testing.T) {
	data, err := GeoJSON(nil)
	require.NoError(t, err)
	assert.Contains(t, string(data), "FeatureCollection")
}

func TestWriteGeoJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clusters.geojson")
	require.NoError(t, WriteGeoJSON(path, sampleAssignments()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "42572610000")
}
