// Package pipeline orchestrates the clustering run: metadata load,
// aggregation, assembly, k-means, persistence.
package pipeline

import (
	"context"
	"math/rand/v2"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/overcast-analytics/climate-cli/internal/config"
	"github.com/overcast-analytics/climate-cli/internal/feature"
	"github.com/overcast-analytics/climate-cli/internal/ghcn"
	"github.com/overcast-analytics/climate-cli/internal/kmeans"
	"github.com/overcast-analytics/climate-cli/internal/model"
	"github.com/overcast-analytics/climate-cli/internal/store"
)

// Pipeline runs the full station clustering flow against local GHCN files.
type Pipeline struct {
	cfg *config.Config
	st  store.Store
}

// New creates a Pipeline. The store may be nil, in which case the run is
// not persisted.
func New(cfg *config.Config, st store.Store) *Pipeline {
	return &Pipeline{cfg: cfg, st: st}
}

// Outcome is the result of one clustering run.
type Outcome struct {
	Run         model.Run
	Assignments []model.StationAssignment
}

// Run executes the pipeline once. The effective random seed is recorded
// in the outcome so a run can be reproduced exactly.
func (p *Pipeline) Run(ctx context.Context) (*Outcome, error) {
	log := zap.L().With(zap.String("component", "pipeline"))

	coords, err := p.loadStations()
	if err != nil {
		return nil, err
	}
	log.Info("station metadata loaded", zap.Int("stations", len(coords)))

	tmax, err := p.aggregate(ghcn.ElementTMax, coords)
	if err != nil {
		return nil, err
	}
	tmin, err := p.aggregate(ghcn.ElementTMin, coords)
	if err != nil {
		return nil, err
	}

	profiles, err := feature.Assemble(tmax, tmin, coords)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: assemble dataset")
	}

	seed := p.cfg.Cluster.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	centroids := kmeans.SeedCentroids(rng, p.cfg.Cluster.K, p.cfg.Cluster.ShiftMax)

	points := make([][]int, len(profiles))
	for i, profile := range profiles {
		points[i] = profile.Vector
	}

	var observer kmeans.Observer
	if p.cfg.Cluster.Verbose {
		observer = func(iteration int, distortion float64) {
			log.Info("distortion",
				zap.Int("iteration", iteration),
				zap.Float64("value", distortion),
			)
		}
	}

	result, err := kmeans.Run(points, centroids, p.cfg.Cluster.Iterations, observer)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: cluster")
	}

	assignments := make([]model.StationAssignment, len(profiles))
	for i, profile := range profiles {
		assignments[i] = model.StationAssignment{
			StationID: profile.ID,
			Lat:       profile.Lat,
			Lon:       profile.Lon,
			Cluster:   result.Assignments[i],
		}
	}

	outcome := &Outcome{
		Run: model.Run{
			K:          p.cfg.Cluster.K,
			Iterations: p.cfg.Cluster.Iterations,
			Seed:       seed,
			Stations:   len(profiles),
			Clusters:   len(result.Centroids),
			Distortion: result.Distortion,
		},
		Assignments: assignments,
	}

	if p.st != nil {
		stored, err := p.st.CreateRun(ctx, outcome.Run, outcome.Assignments)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: persist run")
		}
		outcome.Run = *stored
		log.Info("run persisted", zap.String("run_id", stored.ID))
	}

	return outcome, nil
}

// loadStations parses both elements' metadata and keeps stations present
// in both, inside the configured region.
func (p *Pipeline) loadStations() (map[string]model.Station, error) {
	filter := ghcn.RegionFilter{
		CountryCode: p.cfg.GHCN.CountryCode,
		MaxLat:      p.cfg.GHCN.MaxLat,
		MinLon:      p.cfg.GHCN.MinLon,
	}

	tmaxStations, err := p.parseMetadata(ghcn.ElementTMax, filter)
	if err != nil {
		return nil, err
	}
	tminStations, err := p.parseMetadata(ghcn.ElementTMin, filter)
	if err != nil {
		return nil, err
	}

	coords := make(map[string]model.Station, len(tmaxStations))
	for id, station := range tmaxStations {
		if _, ok := tminStations[id]; ok {
			coords[id] = station
		}
	}
	return coords, nil
}

func (p *Pipeline) parseMetadata(element string, filter ghcn.RegionFilter) (map[string]model.Station, error) {
	files, err := ghcn.FindFiles(p.cfg.GHCN.DataDir, element)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(files.Inv)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: open %s metadata", element)
	}
	defer f.Close() //nolint:errcheck

	stations, err := ghcn.ParseStations(f, filter)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: parse %s metadata", element)
	}
	return stations, nil
}

// aggregate streams one element's data file through the feature
// aggregator, restricted to eligible stations and the analysis window.
func (p *Pipeline) aggregate(element string, eligible map[string]model.Station) (map[string][]int, error) {
	files, err := ghcn.FindFiles(p.cfg.GHCN.DataDir, element)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(files.Dat)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: open %s data", element)
	}
	defer f.Close() //nolint:errcheck

	agg := feature.NewAggregator(p.cfg.GHCN.MinYears)
	opts := ghcn.ScanOptions{
		MinYear:  p.cfg.GHCN.MinYear,
		MaxYear:  p.cfg.GHCN.MaxYear,
		Eligible: eligible,
	}
	err = ghcn.ScanObservations(f, opts, func(row model.YearRow) error {
		agg.Add(row)
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: scan %s data", element)
	}

	profiles, err := agg.Finish()
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: aggregate %s", element)
	}
	zap.L().Debug("element aggregated",
		zap.String("element", element),
		zap.Int("stations", len(profiles)),
	)
	return profiles, nil
}
