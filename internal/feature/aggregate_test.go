package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overcast-analytics/climate-cli/internal/ghcn"
	"github.com/overcast-analytics/climate-cli/internal/model"
)

func yearRow(id string, year int, month, value int) model.YearRow {
	row := model.YearRow{StationID: id, Year: year}
	for i := range row.Values {
		row.Values[i] = ghcn.MissingValue
	}
	row.Values[month] = value
	return row
}

func fullRow(id string, year int, value int) model.YearRow {
	row := model.YearRow{StationID: id, Year: year}
	for i := range row.Values {
		row.Values[i] = value
	}
	return row
}

func TestAggregatorAverages(t *testing.T) {
	agg := NewAggregator(1)
	agg.Add(fullRow("A", 1990, 100))
	agg.Add(fullRow("A", 1991, 200))

	out, err := agg.Finish()
	require.NoError(t, err)
	require.Contains(t, out, "A")
	for month, v := range out["A"] {
		assert.Equal(t, 150, v, "month %d", month+1)
	}
}

func TestAggregatorRoundsToNearest(t *testing.T) {
	agg := NewAggregator(1)
	agg.Add(fullRow("A", 1990, 100))
	agg.Add(fullRow("A", 1991, 101))
	agg.Add(fullRow("A", 1992, 101))

	out, err := agg.Finish()
	require.NoError(t, err)
	// 302/3 = 100.67 rounds to 101
	assert.Equal(t, 101, out["A"][0])
}

func TestAggregatorExcludesSentinel(t *testing.T) {
	agg := NewAggregator(1)
	a := fullRow("A", 1990, 100)
	a.Values[3] = ghcn.MissingValue
	agg.Add(a)
	agg.Add(fullRow("A", 1991, 300))

	out, err := agg.Finish()
	require.NoError(t, err)
	// April has a single non-missing reading, all other months have two.
	assert.Equal(t, 300, out["A"][3])
	assert.Equal(t, 200, out["A"][0])
}

func TestAggregatorDropsSparseStations(t *testing.T) {
	agg := NewAggregator(2)
	agg.Add(fullRow("SPARSE", 1990, 100))
	agg.Add(fullRow("SPARSE", 1991, 100)) // exactly minYears: still dropped
	agg.Add(fullRow("DENSE", 1990, 100))
	agg.Add(fullRow("DENSE", 1991, 100))
	agg.Add(fullRow("DENSE", 1992, 100))

	out, err := agg.Finish()
	require.NoError(t, err)
	assert.NotContains(t, out, "SPARSE")
	assert.Contains(t, out, "DENSE")
}

func TestAggregatorGroupsByContiguousID(t *testing.T) {
	agg := NewAggregator(1)
	agg.Add(fullRow("A", 1990, 100))
	agg.Add(fullRow("A", 1991, 100))
	agg.Add(fullRow("B", 1990, 200))
	agg.Add(fullRow("B", 1991, 200))

	out, err := agg.Finish()
	require.NoError(t, err)
	assert.Equal(t, 100, out["A"][0])
	assert.Equal(t, 200, out["B"][0])
}

func TestAggregatorEmptyMonthFails(t *testing.T) {
	agg := NewAggregator(1)
	// Two years, but January is missing in both.
	agg.Add(yearRow("A", 1990, 5, 100))
	agg.Add(yearRow("A", 1991, 5, 200))

	// All months except June have zero readings; month 1 is reported first.
	_, err := agg.Finish()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoMonthData)
	assert.Contains(t, err.Error(), "station A")
	assert.Contains(t, err.Error(), "month 1")
}

func TestAggregatorEmpty(t *testing.T) {
	out, err := NewAggregator(20).Finish()
	require.NoError(t, err)
	assert.Empty(t, out)
}
