package ghcn

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/overcast-analytics/climate-cli/internal/model"
)

// Metadata row layout (fixed-width): station id in columns 0-11, latitude
// in 12-20, longitude in 21-30.
const (
	invIDEnd    = 11
	invLatStart = 12
	invLatEnd   = 20
	invLonStart = 21
	invLonEnd   = 30
)

// ParseStations reads a GHCN-M .inv metadata file and returns the stations
// that fall inside the region filter, keyed by station id. Rows too short
// to carry coordinates are rejected; unparsable coordinates are an error
// identifying the offending station.
func ParseStations(r io.Reader, filter RegionFilter) (map[string]model.Station, error) {
	stations := make(map[string]model.Station)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		row := scanner.Text()
		if len(row) < invLonEnd {
			return nil, eris.Errorf("ghcn: metadata row %d too short (%d chars)", line, len(row))
		}

		id := row[:invIDEnd]
		if !strings.HasPrefix(id, filter.CountryCode) {
			continue
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(row[invLatStart:invLatEnd]), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "ghcn: station %s: parse latitude", id)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(row[invLonStart:invLonEnd]), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "ghcn: station %s: parse longitude", id)
		}

		if lat >= filter.MaxLat || lon <= filter.MinLon {
			continue
		}

		stations[id] = model.Station{ID: id, Lat: lat, Lon: lon}
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "ghcn: read metadata")
	}

	zap.L().Debug("ghcn: metadata parsed",
		zap.Int("rows", line),
		zap.Int("stations", len(stations)),
	)
	return stations, nil
}
