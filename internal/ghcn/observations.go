package ghcn

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/overcast-analytics/climate-cli/internal/model"
)

// Data row layout (fixed-width): station id in columns 0-11, year in
// 11-15, element code in 15-19, then twelve monthly values of five
// characters each at a stride of eight (skipping the three per-value
// flag characters).
const (
	datYearStart   = 11
	datYearEnd     = 15
	datValueStart  = 19
	datValueWidth  = 5
	datValueStride = 8
	datRowMinLen   = datValueStart + 11*datValueStride + datValueWidth
)

// ScanOptions restricts which data rows are yielded.
type ScanOptions struct {
	// MinYear and MaxYear bound the analysis window, inclusive.
	MinYear int
	MaxYear int
	// Eligible limits rows to known station ids. Rows for other stations
	// are skipped, not an error: the data file covers the whole network.
	Eligible map[string]model.Station
}

// ScanObservations reads a GHCN-M .dat file and calls yield for every row
// inside the year window belonging to an eligible station, in file order.
// GHCN data files are sorted by station, so consumers see each station's
// rows contiguously. A non-nil error from yield aborts the scan.
func ScanObservations(r io.Reader, opts ScanOptions, yield func(model.YearRow) error) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		row := scanner.Text()
		if len(row) < datRowMinLen {
			return eris.Errorf("ghcn: data row %d too short (%d chars)", line, len(row))
		}

		id := row[:invIDEnd]
		if _, ok := opts.Eligible[id]; !ok {
			continue
		}

		year, err := strconv.Atoi(strings.TrimSpace(row[datYearStart:datYearEnd]))
		if err != nil {
			return eris.Wrapf(err, "ghcn: station %s: parse year at row %d", id, line)
		}
		if year < opts.MinYear || year > opts.MaxYear {
			continue
		}

		values, err := parseMonthlyValues(row)
		if err != nil {
			return eris.Wrapf(err, "ghcn: station %s year %d", id, year)
		}

		if err := yield(model.YearRow{StationID: id, Year: year, Values: values}); err != nil {
			return err
		}
	}
	return eris.Wrap(scanner.Err(), "ghcn: read data")
}

// parseMonthlyValues extracts the twelve monthly readings from a data row.
func parseMonthlyValues(row string) ([12]int, error) {
	var values [12]int
	for i := 0; i < 12; i++ {
		start := datValueStart + i*datValueStride
		raw := strings.TrimSpace(row[start : start+datValueWidth])
		v, err := strconv.Atoi(raw)
		if err != nil {
			return values, eris.Wrapf(err, "parse month %d value %q", i+1, raw)
		}
		values[i] = v
	}
	return values, nil
}
