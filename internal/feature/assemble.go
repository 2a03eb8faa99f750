package feature

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/overcast-analytics/climate-cli/internal/model"
)

// ErrNoStations reports an empty join: no station appears in every input,
// so there is nothing to cluster.
var ErrNoStations = eris.New("feature: no stations survived the join")

// Assemble joins the maximum and minimum temperature profiles with station
// coordinates, keeping only stations present in all three inputs. Each
// record's vector is the tmax profile followed by the tmin profile. The
// result is sorted by station id so downstream positional indexing is
// reproducible across runs.
func Assemble(tmax, tmin map[string][]int, coords map[string]model.Station) ([]model.StationProfile, error) {
	profiles := make([]model.StationProfile, 0, len(tmax))
	for id, maxVals := range tmax {
		minVals, ok := tmin[id]
		if !ok {
			continue
		}
		station, ok := coords[id]
		if !ok {
			continue
		}

		vector := make([]int, 0, len(maxVals)+len(minVals))
		vector = append(vector, maxVals...)
		vector = append(vector, minVals...)

		profiles = append(profiles, model.StationProfile{
			ID:     id,
			Vector: vector,
			Lat:    station.Lat,
			Lon:    station.Lon,
		})
	}

	if len(profiles) == 0 {
		return nil, ErrNoStations
	}

	sort.Slice(profiles, func(i, j int) bool { return profiles[i].ID < profiles[j].ID })

	zap.L().Info("feature: dataset assembled",
		zap.Int("stations", len(profiles)),
		zap.Int("dimensions", len(profiles[0].Vector)),
	)
	return profiles, nil
}
