package demand

import (
	"errors"
	"fmt"
	"math"

	"github.com/ChicagoDave/neededschools/pkg/validation"
)

// Containment decides whether a facility lies within a region.
type Containment interface {
	Contains(r Region, f Facility) (bool, error)
}

// CandidateFinder is implemented by containment engines that can narrow the
// facilities worth testing for a region, usually with a spatial index.
// Candidates returns indices into the facility slice the engine was built from.
type CandidateFinder interface {
	Candidates(r Region) ([]int, error)
}

// ValidateCapacity checks that capacity is a finite positive number.
func ValidateCapacity(capacity float64) error {
	if math.IsNaN(capacity) || math.IsInf(capacity, 0) || capacity <= 0 {
		return fmt.Errorf("%w: capacity must be a finite number > 0, got %v", ErrInvalidConfiguration, capacity)
	}
	return nil
}

// maxCount is 2^63, the first float64 that does not fit in an int64.
const maxCount = float64(1 << 63)

// RequiredCount returns population/capacity rounded half to even, so a
// ratio of exactly 2.5 needs 2 schools and 3.5 needs 4. A ratio that is not
// finite or does not fit in an int fails with ErrInvalidInput.
func RequiredCount(population, capacity float64) (int, error) {
	if err := ValidateCapacity(capacity); err != nil {
		return 0, err
	}
	n := math.RoundToEven(population / capacity)
	if math.IsNaN(n) || n >= maxCount || n < -maxCount || n > math.MaxInt {
		return 0, fmt.Errorf("%w: population %v over capacity %v needs %v schools, out of range",
			ErrInvalidInput, population, capacity, n)
	}
	return int(n), nil
}

// Deficit is the number of additional facilities needed, never negative.
func Deficit(required, existing int) int {
	return max(0, required-existing)
}

// Aggregate computes one RegionResult per region, in input order.
//
// An invalid capacity fails the whole call before any work is done. Regions
// with a bad population or a failed containment test are flagged: their
// result carries Err and the report lists them, while every other region is
// still computed. Callers wanting all-or-nothing behaviour check report.Valid.
func Aggregate(regions []Region, facilities []Facility, capacity float64, c Containment) ([]RegionResult, *validation.Report, error) {
	if err := ValidateCapacity(capacity); err != nil {
		return nil, nil, err
	}
	if c == nil {
		return nil, nil, fmt.Errorf("%w: no containment engine", ErrInvalidConfiguration)
	}

	report := validation.NewReport()
	results := make([]RegionResult, len(regions))

	// Populations and required counts are settled up front so no
	// containment query runs for a region that cannot produce a result.
	valid := make([]bool, len(regions))
	required := make([]int, len(regions))
	for i, r := range regions {
		results[i] = RegionResult{Region: r.Name}
		if err := checkPopulation(r.Population); err != nil {
			flag(&results[i], report, validation.LevelInput, "population", err, r.Population.Raw)
			continue
		}
		n, err := RequiredCount(r.Population.Number, capacity)
		if err != nil {
			flag(&results[i], report, validation.LevelInput, "population", err, r.Population.Number)
			continue
		}
		results[i].Population = r.Population.Number
		required[i] = n
		valid[i] = true
	}

	finder, _ := c.(CandidateFinder)
	for i, r := range regions {
		if !valid[i] {
			continue
		}
		existing, err := countContained(r, facilities, c, finder)
		if err != nil {
			flag(&results[i], report, validation.LevelGeometry, "", err, nil)
			continue
		}
		results[i].Required = required[i]
		results[i].Existing = existing
		results[i].Additional = Deficit(required[i], existing)
	}

	return results, report, nil
}

func countContained(r Region, facilities []Facility, c Containment, finder CandidateFinder) (int, error) {
	if finder != nil {
		idx, err := finder.Candidates(r)
		if err != nil {
			return 0, asGeometryError(err)
		}
		n := 0
		for _, i := range idx {
			if i < 0 || i >= len(facilities) {
				return 0, fmt.Errorf("%w: candidate index %d out of range", ErrGeometry, i)
			}
			ok, err := c.Contains(r, facilities[i])
			if err != nil {
				return 0, asGeometryError(err)
			}
			if ok {
				n++
			}
		}
		return n, nil
	}

	n := 0
	for _, f := range facilities {
		ok, err := c.Contains(r, f)
		if err != nil {
			return 0, asGeometryError(err)
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func asGeometryError(err error) error {
	if errors.Is(err, ErrGeometry) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrGeometry, err)
}

func flag(res *RegionResult, report *validation.Report, level validation.Level, field string, err error, actual any) {
	rerr := &RegionError{Region: res.Region, Field: field, Err: err}
	res.Err = rerr
	result := validation.Result{
		Level:   level,
		Message: rerr.Error(),
		Region:  res.Region,
	}
	if field != "" {
		result.Path = field
		result.ActualValue = actual
		result.Expected = "finite number >= 0"
	}
	report.AddError(result)
}

// CheckPopulations validates every region's population without running any
// containment query.
func CheckPopulations(regions []Region) *validation.Report {
	report := validation.NewReport()
	for _, r := range regions {
		if err := checkPopulation(r.Population); err != nil {
			res := RegionResult{Region: r.Name}
			flag(&res, report, validation.LevelInput, "population", err, r.Population.Raw)
		}
	}
	return report
}
