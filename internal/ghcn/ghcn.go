// Package ghcn parses Global Historical Climatology Network monthly
// (GHCN-M v3) fixed-width metadata and data files.
package ghcn

import (
	"path/filepath"

	"github.com/rotisserie/eris"
)

// MissingValue is the GHCN sentinel marking a missing monthly reading.
const MissingValue = -9999

// Elements understood by the pipeline. GHCN-M ships one metadata/data file
// pair per element.
const (
	ElementTMax = "tmax"
	ElementTMin = "tmin"
)

// RegionFilter restricts station metadata to a geographic region. The
// defaults used by the pipeline select the continental USA: country code
// prefix 425, latitude below 49, longitude east of -130.
type RegionFilter struct {
	CountryCode string
	MaxLat      float64
	MinLon      float64
}

// Files is a located metadata/data file pair for one element.
type Files struct {
	Inv string
	Dat string
}

// FindFiles locates the .inv and .dat files for an element in dataDir.
// GHCN-M file names embed a dataset version and build date, so the lookup
// is by glob rather than exact name.
func FindFiles(dataDir, element string) (Files, error) {
	inv, err := globOne(filepath.Join(dataDir, "ghcnm."+element+".*.inv"))
	if err != nil {
		return Files{}, eris.Wrapf(err, "ghcn: locate %s metadata", element)
	}
	dat, err := globOne(filepath.Join(dataDir, "ghcnm."+element+".*.dat"))
	if err != nil {
		return Files{}, eris.Wrapf(err, "ghcn: locate %s data", element)
	}
	return Files{Inv: inv, Dat: dat}, nil
}

func globOne(pattern string) (string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", eris.Wrap(err, "glob")
	}
	if len(matches) == 0 {
		return "", eris.Errorf("no file matches %s", pattern)
	}
	// Glob results are sorted; the last match is the newest build.
	return matches[len(matches)-1], nil
}
