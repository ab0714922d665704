package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/ChicagoDave/neededschools/pkg/demand"
)

const tolerance = 0.01

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func square(x0, y0, size float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{x0, y0}, {x0 + size, y0}, {x0 + size, y0 + size}, {x0, y0 + size}, {x0, y0},
	}}
}

func mustContain(t *testing.T, g orb.Geometry, pt orb.Point) bool {
	t.Helper()
	ok, err := Contains(g, pt)
	if err != nil {
		t.Fatalf("Contains(%v) failed: %v", pt, err)
	}
	return ok
}

// --- Containment tests ---

func TestContainsSquare(t *testing.T) {
	sq := square(0, 0, 10)
	if !mustContain(t, sq, orb.Point{5, 5}) {
		t.Error("expected (5,5) inside square")
	}
	if mustContain(t, sq, orb.Point{15, 5}) {
		t.Error("expected (15,5) outside square")
	}
	if mustContain(t, sq, orb.Point{-1, 5}) {
		t.Error("expected (-1,5) outside square")
	}
}

func TestContainsUnclosedRing(t *testing.T) {
	tri := orb.Polygon{orb.Ring{{0, 0}, {10, 0}, {0, 10}}}
	if !mustContain(t, tri, orb.Point{2, 2}) {
		t.Error("expected (2,2) inside open triangle")
	}
}

func TestContainsHole(t *testing.T) {
	donut := orb.Polygon{
		orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		orb.Ring{{3, 3}, {7, 3}, {7, 7}, {3, 7}, {3, 3}},
	}
	if mustContain(t, donut, orb.Point{5, 5}) {
		t.Error("expected (5,5) in the hole to be outside")
	}
	if !mustContain(t, donut, orb.Point{1, 1}) {
		t.Error("expected (1,1) inside the donut")
	}
}

func TestContainsMultiPolygon(t *testing.T) {
	mp := orb.MultiPolygon{square(0, 0, 10), square(20, 0, 10)}
	if !mustContain(t, mp, orb.Point{25, 5}) {
		t.Error("expected (25,5) inside second part")
	}
	if mustContain(t, mp, orb.Point{15, 5}) {
		t.Error("expected (15,5) in the gap to be outside")
	}
}

// A point on the edge shared by two adjacent squares belongs to exactly one
// of them: the square on its +X side.
func TestSharedVerticalEdgeAttributedOnce(t *testing.T) {
	left := square(0, 0, 10)
	right := square(10, 0, 10)
	pt := orb.Point{10, 5}

	inLeft := mustContain(t, left, pt)
	inRight := mustContain(t, right, pt)
	if inLeft {
		t.Error("point on shared edge should not belong to the left square")
	}
	if !inRight {
		t.Error("point on shared edge should belong to the right square")
	}
}

func TestSharedHorizontalEdgeAttributedOnce(t *testing.T) {
	below := square(0, 0, 10)
	above := square(0, 10, 10)
	pt := orb.Point{5, 10}

	if mustContain(t, below, pt) {
		t.Error("point on shared edge should not belong to the lower square")
	}
	if !mustContain(t, above, pt) {
		t.Error("point on shared edge should belong to the upper square")
	}
}

func TestSharedVertexAttributedOnce(t *testing.T) {
	grid := []orb.Polygon{square(0, 0, 10), square(10, 0, 10), square(0, 10, 10), square(10, 10, 10)}
	pt := orb.Point{10, 10}

	owners := 0
	for i, sq := range grid {
		if mustContain(t, sq, pt) {
			owners++
			if i != 3 {
				t.Errorf("shared vertex attributed to square %d, want 3", i)
			}
		}
	}
	if owners != 1 {
		t.Errorf("shared vertex owned by %d squares, want 1", owners)
	}
}

func TestContainsErrors(t *testing.T) {
	if _, err := Contains(orb.Point{1, 1}, orb.Point{1, 1}); !errors.Is(err, ErrNotPolygonal) {
		t.Errorf("expected ErrNotPolygonal for point geometry, got %v", err)
	}
	if _, err := Contains(nil, orb.Point{1, 1}); !errors.Is(err, ErrNotPolygonal) {
		t.Errorf("expected ErrNotPolygonal for nil geometry, got %v", err)
	}
	line := orb.Polygon{orb.Ring{{0, 0}, {10, 0}, {0, 0}}}
	if _, err := Contains(line, orb.Point{50, 50}); !errors.Is(err, ErrDegenerate) {
		t.Errorf("expected ErrDegenerate for two-vertex ring, got %v", err)
	}
	nan := orb.Polygon{orb.Ring{{0, 0}, {math.NaN(), 0}, {10, 10}, {0, 10}}}
	if _, err := Contains(nan, orb.Point{5, 5}); !errors.Is(err, ErrDegenerate) {
		t.Errorf("expected ErrDegenerate for NaN vertex, got %v", err)
	}
	if _, err := Contains(square(0, 0, 10), orb.Point{math.Inf(1), 0}); !errors.Is(err, ErrDegenerate) {
		t.Errorf("expected ErrDegenerate for infinite point, got %v", err)
	}
}

// --- Measure tests ---

func TestArea(t *testing.T) {
	if !approxEqual(Area(square(0, 0, 10)), 100, tolerance) {
		t.Errorf("expected area 100, got %f", Area(square(0, 0, 10)))
	}
}

func TestLabelPointSquare(t *testing.T) {
	p := LabelPoint(square(0, 0, 10))
	if !approxEqual(p[0], 5, tolerance) || !approxEqual(p[1], 5, tolerance) {
		t.Errorf("expected label point (5,5), got %v", p)
	}
}

func TestLabelPointConcave(t *testing.T) {
	// U shape: the centroid falls in the notch.
	u := orb.Polygon{orb.Ring{{0, 0}, {30, 0}, {30, 30}, {20, 30}, {20, 5}, {10, 5}, {10, 30}, {0, 30}, {0, 0}}}
	p := LabelPoint(u)
	if p != u.Bound().Center() {
		t.Errorf("expected bound centre fallback, got %v", p)
	}
}

// --- Engine tests ---

func TestEngineCandidates(t *testing.T) {
	facilities := []demand.Facility{
		{ID: "a", Location: orb.Point{1, 1}},
		{ID: "b", Location: orb.Point{50, 50}},
		{ID: "c", Location: orb.Point{9, 2}},
	}
	e, err := NewEngine(facilities)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if e.Len() != 3 {
		t.Errorf("Len = %d, want 3", e.Len())
	}

	idx, err := e.Candidates(demand.Region{Name: "r", Geometry: square(0, 0, 10)})
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(idx) != 2 || idx[0] != 0 || idx[1] != 2 {
		t.Errorf("candidates = %v, want [0 2]", idx)
	}
}

func TestEngineEmpty(t *testing.T) {
	e, err := NewEngine(nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	idx, err := e.Candidates(demand.Region{Name: "r", Geometry: square(0, 0, 10)})
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(idx) != 0 {
		t.Errorf("expected no candidates, got %v", idx)
	}
}

func TestEngineSRIDMismatch(t *testing.T) {
	e, _ := NewEngine(nil)
	_, err := e.Contains(
		demand.Region{Name: "r", Geometry: square(0, 0, 10), SRID: 4326},
		demand.Facility{ID: "f", Location: orb.Point{1, 1}, SRID: 3857},
	)
	if !errors.Is(err, demand.ErrGeometry) {
		t.Errorf("expected ErrGeometry for SRID mismatch, got %v", err)
	}
}

func TestEngineRejectsNonFiniteFacility(t *testing.T) {
	_, err := NewEngine([]demand.Facility{{ID: "x", Location: orb.Point{math.NaN(), 0}}})
	if !errors.Is(err, ErrDegenerate) {
		t.Errorf("expected ErrDegenerate, got %v", err)
	}
}
