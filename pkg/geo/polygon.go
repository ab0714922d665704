package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// ErrNotPolygonal is returned when a region geometry is not a polygon or
// multipolygon.
var ErrNotPolygonal = errors.New("geometry is not polygonal")

// ErrDegenerate is returned for rings with fewer than three vertices or
// non-finite coordinates.
var ErrDegenerate = errors.New("degenerate geometry")

// Contains reports whether pt lies within g using half-open ray casting.
//
// Crossings are counted over every ring of every polygon (even-odd rule),
// so holes are excluded. A point exactly on an edge belongs to the polygon
// whose interior lies on its +X side for a vertical edge, or its +Y side
// for a horizontal edge. Two polygons that share an edge or vertex never
// both contain a point on it.
func Contains(g orb.Geometry, pt orb.Point) (bool, error) {
	if !finite(pt) {
		return false, fmt.Errorf("%w: point %v", ErrDegenerate, pt)
	}
	switch v := g.(type) {
	case orb.Polygon:
		return polygonContains(v, pt)
	case orb.MultiPolygon:
		for _, p := range v {
			ok, err := polygonContains(p, pt)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	case nil:
		return false, fmt.Errorf("%w: nil geometry", ErrNotPolygonal)
	default:
		return false, fmt.Errorf("%w: %s", ErrNotPolygonal, g.GeoJSONType())
	}
}

func polygonContains(p orb.Polygon, pt orb.Point) (bool, error) {
	if len(p) == 0 {
		return false, fmt.Errorf("%w: polygon has no rings", ErrDegenerate)
	}
	if !p.Bound().Contains(pt) {
		// Still validate so a broken ring is reported no matter where the
		// facility lies.
		return false, Validate(p)
	}
	inside := false
	for _, ring := range p {
		if err := validateRing(ring); err != nil {
			return false, err
		}
		if crossings(ring, pt)%2 == 1 {
			inside = !inside
		}
	}
	return inside, nil
}

// crossings counts the edges of ring crossed by a ray from pt towards +X.
// A trailing closing vertex equal to the first is harmless: it adds a
// zero-length edge that is never crossed.
func crossings(ring orb.Ring, pt orb.Point) int {
	n := len(ring)
	count := 0
	j := n - 1
	for i := 0; i < n; i++ {
		vi := ring[i]
		vj := ring[j]
		if (vi[1] > pt[1]) != (vj[1] > pt[1]) &&
			pt[0] < (vj[0]-vi[0])*(pt[1]-vi[1])/(vj[1]-vi[1])+vi[0] {
			count++
		}
		j = i
	}
	return count
}

// Validate checks that every ring of a polygonal geometry has at least three
// distinct vertices and finite coordinates.
func Validate(g orb.Geometry) error {
	switch v := g.(type) {
	case orb.Polygon:
		if len(v) == 0 {
			return fmt.Errorf("%w: polygon has no rings", ErrDegenerate)
		}
		for _, r := range v {
			if err := validateRing(r); err != nil {
				return err
			}
		}
		return nil
	case orb.MultiPolygon:
		if len(v) == 0 {
			return fmt.Errorf("%w: multipolygon has no polygons", ErrDegenerate)
		}
		for _, p := range v {
			if err := Validate(p); err != nil {
				return err
			}
		}
		return nil
	case nil:
		return fmt.Errorf("%w: nil geometry", ErrNotPolygonal)
	default:
		return fmt.Errorf("%w: %s", ErrNotPolygonal, g.GeoJSONType())
	}
}

func validateRing(r orb.Ring) error {
	n := len(r)
	if n > 1 && r[0] == r[n-1] {
		n--
	}
	if n < 3 {
		return fmt.Errorf("%w: ring has %d vertices, need at least 3", ErrDegenerate, n)
	}
	for _, p := range r {
		if !finite(p) {
			return fmt.Errorf("%w: vertex %v", ErrDegenerate, p)
		}
	}
	return nil
}

func finite(p orb.Point) bool {
	return !math.IsNaN(p[0]) && !math.IsInf(p[0], 0) &&
		!math.IsNaN(p[1]) && !math.IsInf(p[1], 0)
}
