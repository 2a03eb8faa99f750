package export

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"

	"github.com/overcast-analytics/climate-cli/internal/model"
)

// WriteShapefile writes assignments as a point shapefile with STATION and
// CLUSTER attributes. go-shp creates the companion .shx and .dbf files
// alongside path.
func WriteShapefile(path string, assignments []model.StationAssignment) error {
	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return eris.Wrapf(err, "export: create shapefile %s", path)
	}
	defer w.Close()

	fields := []shp.Field{
		shp.StringField("STATION", 11),
		shp.NumberField("CLUSTER", 4),
	}
	w.SetFields(fields)

	for i, a := range assignments {
		w.Write(&shp.Point{X: a.Lon, Y: a.Lat})
		if err := w.WriteAttribute(i, 0, a.StationID); err != nil {
			return eris.Wrapf(err, "export: write station attribute for %s", a.StationID)
		}
		if err := w.WriteAttribute(i, 1, a.Cluster); err != nil {
			return eris.Wrapf(err, "export: write cluster attribute for %s", a.StationID)
		}
	}

	return nil
}
