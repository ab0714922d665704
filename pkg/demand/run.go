package demand

import (
	"context"
	"fmt"

	"github.com/ChicagoDave/neededschools/pkg/validation"
)

// Source supplies regions and facilities for one computation.
type Source interface {
	Regions(ctx context.Context) ([]Region, error)
	Facilities(ctx context.Context) ([]Facility, error)
}

// EngineFunc builds a containment engine for a facility set.
type EngineFunc func(facilities []Facility) (Containment, error)

// Outcome is the full result of a Run.
// Regions and Facilities are kept for exports that need the geometry.
type Outcome struct {
	Regions    []Region           `json:"-"`
	Facilities []Facility         `json:"-"`
	Results    []RegionResult     `json:"results"`
	Report     *validation.Report `json:"report"`
	Summary    Summary            `json:"summary"`
}

// Run reads both layers from src and aggregates them. Any source failure
// aborts the run with no results.
func Run(ctx context.Context, src Source, newEngine EngineFunc, capacity float64) (*Outcome, error) {
	if err := ValidateCapacity(capacity); err != nil {
		return nil, err
	}

	regions, err := src.Regions(ctx)
	if err != nil {
		return nil, wrapUnavailable("regions", err)
	}
	facilities, err := src.Facilities(ctx)
	if err != nil {
		return nil, wrapUnavailable("facilities", err)
	}

	engine, err := newEngine(facilities)
	if err != nil {
		return nil, fmt.Errorf("building containment engine: %w", err)
	}

	results, report, err := Aggregate(regions, facilities, capacity, engine)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Regions:    regions,
		Facilities: facilities,
		Results:    results,
		Report:     report,
		Summary:    Summarize(results),
	}, nil
}

func wrapUnavailable(layer string, err error) error {
	if isUnavailable(err) {
		return err
	}
	return Unavailable(layer, err)
}
