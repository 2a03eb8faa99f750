// Package feature turns raw station observations into the fixed-length
// seasonal profiles the clustering engine consumes.
package feature

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/overcast-analytics/climate-cli/internal/ghcn"
	"github.com/overcast-analytics/climate-cli/internal/model"
)

// ErrNoMonthData reports a station that passed the year-count filter but
// has no usable reading at some calendar month, leaving that component of
// its profile undefined.
var ErrNoMonthData = eris.New("feature: no readings for calendar month")

// Aggregator averages a station's monthly readings across years into one
// 12-value profile. Rows must arrive grouped by contiguous station id,
// which is how GHCN data files are ordered; the aggregator flushes a
// station when the id changes.
type Aggregator struct {
	minYears int

	current string
	rows    [][12]int
	out     map[string][]int

	kept    int
	dropped int
	failed  error
}

// NewAggregator creates an Aggregator. A station is emitted only when it
// contributes strictly more than minYears rows inside the analysis window.
func NewAggregator(minYears int) *Aggregator {
	return &Aggregator{
		minYears: minYears,
		out:      make(map[string][]int),
	}
}

// Add feeds one station-year of readings. Safe to call after a flush
// failure; the error is surfaced by Finish.
func (a *Aggregator) Add(row model.YearRow) {
	if a.failed != nil {
		return
	}
	if row.StationID != a.current {
		a.flush()
		a.current = row.StationID
		a.rows = a.rows[:0]
	}
	a.rows = append(a.rows, row.Values)
}

// Finish flushes the final station and returns every surviving station's
// averaged monthly profile.
func (a *Aggregator) Finish() (map[string][]int, error) {
	a.flush()
	if a.failed != nil {
		return nil, a.failed
	}
	zap.L().Debug("feature: aggregation complete",
		zap.Int("stations", a.kept),
		zap.Int("dropped", a.dropped),
	)
	return a.out, nil
}

// flush averages the accumulated rows for the current station. Stations
// below the year-count threshold are dropped silently: sparse coverage is
// expected, not an error.
func (a *Aggregator) flush() {
	if a.current == "" || a.failed != nil {
		return
	}
	if len(a.rows) <= a.minYears {
		a.dropped++
		return
	}

	profile := make([]int, 12)
	for month := 0; month < 12; month++ {
		sum, count := 0, 0
		for _, values := range a.rows {
			if values[month] == ghcn.MissingValue {
				continue
			}
			sum += values[month]
			count++
		}
		if count == 0 {
			a.failed = eris.Wrapf(ErrNoMonthData, "station %s month %d", a.current, month+1)
			return
		}
		profile[month] = roundDiv(sum, count)
	}

	a.out[a.current] = profile
	a.kept++
}

// roundDiv divides and rounds to the nearest integer, matching the
// round-half-away-from-zero behavior of math.Round.
func roundDiv(sum, count int) int {
	return int(math.Round(float64(sum) / float64(count)))
}
