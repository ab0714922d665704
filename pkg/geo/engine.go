package geo

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"

	"github.com/ChicagoDave/neededschools/pkg/demand"
)

// indexedPoint lets a facility location live in the quadtree while
// remembering its position in the input slice.
type indexedPoint struct {
	p   orb.Point
	idx int
}

func (ip indexedPoint) Point() orb.Point {
	return ip.p
}

// Engine is a planar containment engine over a fixed facility set.
// It satisfies demand.Containment and demand.CandidateFinder.
type Engine struct {
	tree  *quadtree.Quadtree
	count int
}

// NewEngine indexes the facility locations.
func NewEngine(facilities []demand.Facility) (*Engine, error) {
	e := &Engine{count: len(facilities)}
	if len(facilities) == 0 {
		return e, nil
	}

	for _, f := range facilities {
		if !finite(f.Location) {
			return nil, fmt.Errorf("%w: facility %q location %v", ErrDegenerate, f.ID, f.Location)
		}
	}

	bound := facilities[0].Location.Bound()
	for _, f := range facilities[1:] {
		bound = bound.Extend(f.Location)
	}
	e.tree = quadtree.New(bound.Pad(1))
	for i, f := range facilities {
		if err := e.tree.Add(indexedPoint{p: f.Location, idx: i}); err != nil {
			return nil, fmt.Errorf("indexing facility %q: %w", f.ID, err)
		}
	}
	return e, nil
}

// NewContainment adapts NewEngine to demand.EngineFunc.
func NewContainment(facilities []demand.Facility) (demand.Containment, error) {
	return NewEngine(facilities)
}

// Contains reports whether the facility lies within the region.
func (e *Engine) Contains(r demand.Region, f demand.Facility) (bool, error) {
	if r.SRID != 0 && f.SRID != 0 && r.SRID != f.SRID {
		return false, fmt.Errorf("%w: region SRID %d does not match facility %q SRID %d",
			demand.ErrGeometry, r.SRID, f.ID, f.SRID)
	}
	ok, err := Contains(r.Geometry, f.Location)
	if err != nil {
		return false, fmt.Errorf("%w: facility %q: %w", demand.ErrGeometry, f.ID, err)
	}
	return ok, nil
}

// Candidates returns the sorted indices of facilities inside the region's
// bounding box.
func (e *Engine) Candidates(r demand.Region) ([]int, error) {
	if err := Validate(r.Geometry); err != nil {
		return nil, fmt.Errorf("%w: %w", demand.ErrGeometry, err)
	}
	if e.tree == nil {
		return nil, nil
	}
	found := e.tree.InBound(nil, r.Geometry.Bound())
	idx := make([]int, 0, len(found))
	for _, p := range found {
		idx = append(idx, p.(indexedPoint).idx)
	}
	sort.Ints(idx)
	return idx, nil
}

// Len is the number of indexed facilities.
func (e *Engine) Len() int {
	return e.count
}
