package model

import "time"

// Run records one completed clustering run.
type Run struct {
	ID         string    `json:"id"`
	K          int       `json:"k"`
	Iterations int       `json:"iterations"`
	Seed       int64     `json:"seed"`
	Stations   int       `json:"stations"`
	Clusters   int       `json:"clusters"`
	Distortion float64   `json:"distortion"`
	CreatedAt  time.Time `json:"created_at"`
}

// StationAssignment maps one station to the cluster it was assigned in a
// run. Order matches the assembled input record order within a run.
type StationAssignment struct {
	StationID string  `json:"station_id"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Cluster   int     `json:"cluster"`
}
