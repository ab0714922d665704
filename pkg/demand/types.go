package demand

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Region is an administrative area with a population figure.
// Geometry is opaque here; only a Containment implementation inspects it.
type Region struct {
	Name       string
	Population Value
	Geometry   orb.Geometry
	SRID       int
}

// Facility is the point location of an existing school.
type Facility struct {
	ID       string
	Location orb.Point
	SRID     int
}

// RegionResult is the demand/supply outcome for one region.
// Err is non-nil when the region was flagged and its counts are not meaningful.
type RegionResult struct {
	Region     string  `json:"region"`
	Population float64 `json:"population"`
	Required   int     `json:"required"`
	Existing   int     `json:"existing"`
	Additional int     `json:"additional"`
	Err        error   `json:"-"`
}

// Flagged reports whether the region failed validation or containment.
func (r RegionResult) Flagged() bool {
	return r.Err != nil
}

// Label is the map-layer annotation for the region.
func (r RegionResult) Label() string {
	return fmt.Sprintf("%s = %d", r.Region, r.Additional)
}

// Summary totals a result set, ignoring flagged regions.
type Summary struct {
	Regions    int     `json:"regions"`
	Flagged    int     `json:"flagged"`
	Population float64 `json:"population"`
	Required   int     `json:"required"`
	Existing   int     `json:"existing"`
	Additional int     `json:"additional"`
}

// Summarize totals the unflagged results.
func Summarize(results []RegionResult) Summary {
	var s Summary
	s.Regions = len(results)
	for _, r := range results {
		if r.Flagged() {
			s.Flagged++
			continue
		}
		s.Population += r.Population
		s.Required += r.Required
		s.Existing += r.Existing
		s.Additional += r.Additional
	}
	return s
}
