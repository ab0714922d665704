package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Area returns the planar area of a polygonal geometry in squared CRS units.
func Area(g orb.Geometry) float64 {
	return planar.Area(g)
}

// LabelPoint returns a point for placing a region's label: the area centroid
// when it falls inside the geometry, otherwise the centre of the bounding box
// of the largest polygon.
func LabelPoint(g orb.Geometry) orb.Point {
	c, _ := planar.CentroidArea(g)
	if ok, err := Contains(g, c); err == nil && ok {
		return c
	}
	if mp, ok := g.(orb.MultiPolygon); ok && len(mp) > 0 {
		largest := mp[0]
		for _, p := range mp[1:] {
			if planar.Area(p) > planar.Area(largest) {
				largest = p
			}
		}
		return largest.Bound().Center()
	}
	return g.Bound().Center()
}
