package model

// Station identifies a climate station and its location. Stations are
// loaded once from GHCN metadata and never mutated afterwards.
type Station struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// YearRow is one station-year of raw monthly readings as parsed from a
// GHCN data file. Values use the GHCN missing-value sentinel; consumers
// are expected to filter it out.
type YearRow struct {
	StationID string
	Year      int
	Values    [12]int
}

// StationProfile is a station's combined seasonal feature vector plus its
// coordinates. Vector holds the 12 monthly maximum normals followed by the
// 12 monthly minimum normals; the coordinates never participate in
// distance calculations.
type StationProfile struct {
	ID     string
	Vector []int
	Lat    float64
	Lon    float64
}
