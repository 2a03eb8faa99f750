package ghcn

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overcast-analytics/climate-cli/internal/model"
)

func datRow(id string, year int, values [12]int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-11s%4dTMAX", id, year)
	for _, v := range values {
		fmt.Fprintf(&sb, "%5d   ", v)
	}
	return sb.String()
}

func flatValues(v int) [12]int {
	var vals [12]int
	for i := range vals {
		vals[i] = v
	}
	return vals
}

func eligible(ids ...string) map[string]model.Station {
	m := make(map[string]model.Station, len(ids))
	for _, id := range ids {
		m[id] = model.Station{ID: id}
	}
	return m
}

func scanAll(t *testing.T, input string, opts ScanOptions) []model.YearRow {
	t.Helper()
	var rows []model.YearRow
	err := ScanObservations(strings.NewReader(input), opts, func(r model.YearRow) error {
		rows = append(rows, r)
		return nil
	})
	require.NoError(t, err)
	return rows
}

func TestScanObservations(t *testing.T) {
	input := datRow("42572610000", 1995, [12]int{1522, 1582, 1752, 1972, 2082, 2252, 2082, 2302, 2472, 2022, 1582, 1522})

	opts := ScanOptions{MinYear: 1981, MaxYear: 2010, Eligible: eligible("42572610000")}
	rows := scanAll(t, input, opts)

	require.Len(t, rows, 1)
	assert.Equal(t, "42572610000", rows[0].StationID)
	assert.Equal(t, 1995, rows[0].Year)
	assert.Equal(t, 1522, rows[0].Values[0])
	assert.Equal(t, 2472, rows[0].Values[8])
}

func TestScanObservationsKeepsSentinel(t *testing.T) {
	values := flatValues(100)
	values[5] = MissingValue
	input := datRow("42572610000", 1999, values)

	opts := ScanOptions{MinYear: 1981, MaxYear: 2010, Eligible: eligible("42572610000")}
	rows := scanAll(t, input, opts)

	require.Len(t, rows, 1)
	assert.Equal(t, MissingValue, rows[0].Values[5])
}

func TestScanObservationsWindow(t *testing.T) {
	input := strings.Join([]string{
		datRow("42572610000", 1980, flatValues(1)),
		datRow("42572610000", 1981, flatValues(2)),
		datRow("42572610000", 2010, flatValues(3)),
		datRow("42572610000", 2011, flatValues(4)),
	}, "\n")

	opts := ScanOptions{MinYear: 1981, MaxYear: 2010, Eligible: eligible("42572610000")}
	rows := scanAll(t, input, opts)

	require.Len(t, rows, 2)
	assert.Equal(t, 1981, rows[0].Year)
	assert.Equal(t, 2010, rows[1].Year)
}

func TestScanObservationsSkipsIneligible(t *testing.T) {
	input := strings.Join([]string{
		datRow("42572610000", 1995, flatValues(1)),
		datRow("10160355000", 1995, flatValues(2)), // not in eligible set
	}, "\n")

	opts := ScanOptions{MinYear: 1981, MaxYear: 2010, Eligible: eligible("42572610000")}
	rows := scanAll(t, input, opts)

	require.Len(t, rows, 1)
	assert.Equal(t, "42572610000", rows[0].StationID)
}

func TestScanObservationsShortRow(t *testing.T) {
	opts := ScanOptions{MinYear: 1981, MaxYear: 2010, Eligible: eligible("42572610000")}
	err := ScanObservations(strings.NewReader("42572610000 1995"), opts, func(model.YearRow) error {
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too short")
}

func TestScanObservationsYieldError(t *testing.T) {
	input := datRow("42572610000", 1995, flatValues(1))
	opts := ScanOptions{MinYear: 1981, MaxYear: 2010, Eligible: eligible("42572610000")}

	stop := fmt.Errorf("stop")
	err := ScanObservations(strings.NewReader(input), opts, func(model.YearRow) error {
		return stop
	})
	assert.ErrorIs(t, err, stop)
}

func TestFindFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"ghcnm.tmax.v3.2.2.20140104.qca.inv",
		"ghcnm.tmax.v3.2.2.20140104.qca.dat",
	} {
		require.NoError(t, writeEmpty(dir, name))
	}

	files, err := FindFiles(dir, ElementTMax)
	require.NoError(t, err)
	assert.Contains(t, files.Inv, "qca.inv")
	assert.Contains(t, files.Dat, "qca.dat")

	_, err = FindFiles(dir, ElementTMin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tmin")
}

func writeEmpty(dir, name string) error {
	return os.WriteFile(filepath.Join(dir, name), nil, 0o644)
}
