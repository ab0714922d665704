package scene2d

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/ChicagoDave/neededschools/pkg/demand"
	"github.com/ChicagoDave/neededschools/pkg/geo"
)

// Assemble2D converts a computation into a 2D scene suitable for SVG
// rendering. Regions without geometry are left out of the scene but still
// counted in the metadata.
func Assemble2D(out *demand.Outcome, capacity float64) *Scene2D {
	regions := assembleRegions(out.Regions, out.Results)
	schools := assembleSchools(out.Facilities)
	return &Scene2D{
		Metadata: Metadata{
			Capacity:    capacity,
			Population:  out.Summary.Population,
			RegionCount: out.Summary.Regions,
			Flagged:     out.Summary.Flagged,
			SchoolCount: len(out.Facilities),
			Additional:  out.Summary.Additional,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
		Bounds:  assembleBounds(out.Regions, out.Facilities),
		Regions: regions,
		Schools: schools,
		Legend:  assembleLegend(regions),
	}
}

func assembleRegions(regions []demand.Region, results []demand.RegionResult) []Region2D {
	result := make([]Region2D, 0, len(results))
	for i, r := range results {
		if i >= len(regions) || regions[i].Geometry == nil {
			continue
		}
		g := regions[i].Geometry

		r2 := Region2D{
			Name:  r.Region,
			Rings: ringsToCoords(g),
			Class: classOf(r),
		}
		if r.Flagged() {
			r2.Error = r.Err.Error()
		} else {
			r2.Label = r.Label()
			r2.Population = r.Population
			r2.Required = r.Required
			r2.Existing = r.Existing
			r2.Additional = r.Additional
		}
		if err := geo.Validate(g); err == nil {
			lp := geo.LabelPoint(g)
			r2.LabelAt = [2]float64{lp[0], lp[1]}
			r2.Area = geo.Area(g)
		}
		result = append(result, r2)
	}
	return result
}

func classOf(r demand.RegionResult) string {
	switch {
	case r.Flagged():
		return ClassFlagged
	case r.Additional > 0:
		return ClassShortage
	default:
		return ClassServed
	}
}

func assembleSchools(facilities []demand.Facility) []School2D {
	result := make([]School2D, 0, len(facilities))
	for _, f := range facilities {
		result = append(result, School2D{
			ID:       f.ID,
			Position: [2]float64{f.Location[0], f.Location[1]},
		})
	}
	return result
}

func assembleLegend(regions []Region2D) []Class {
	legend := []Class{
		{Name: ClassServed, Description: "enough schools for the population"},
		{Name: ClassShortage, Description: "additional schools needed"},
		{Name: ClassFlagged, Description: "skipped: bad population or geometry"},
	}
	for _, r := range regions {
		for i := range legend {
			if legend[i].Name == r.Class {
				legend[i].Count++
			}
		}
	}
	return legend
}

func assembleBounds(regions []demand.Region, facilities []demand.Facility) Bounds {
	var (
		b   orb.Bound
		set bool
	)
	extend := func(o orb.Bound) {
		if !set {
			b, set = o, true
			return
		}
		b = b.Union(o)
	}
	for _, r := range regions {
		if r.Geometry != nil {
			extend(r.Geometry.Bound())
		}
	}
	for _, f := range facilities {
		extend(f.Location.Bound())
	}
	return Bounds{
		Min: [2]float64{b.Min[0], b.Min[1]},
		Max: [2]float64{b.Max[0], b.Max[1]},
	}
}

// ringsToCoords flattens the rings of a polygonal geometry into coordinate
// lists. Other geometry types yield no rings.
func ringsToCoords(g orb.Geometry) [][][2]float64 {
	var polys []orb.Polygon
	switch t := g.(type) {
	case orb.Polygon:
		polys = []orb.Polygon{t}
	case orb.MultiPolygon:
		polys = t
	}

	var rings [][][2]float64
	for _, p := range polys {
		for _, r := range p {
			coords := make([][2]float64, len(r))
			for i, pt := range r {
				coords[i] = [2]float64{pt[0], pt[1]}
			}
			rings = append(rings, coords)
		}
	}
	return rings
}
