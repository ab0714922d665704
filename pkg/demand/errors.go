package demand

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is returned when the capacity is missing,
	// zero, negative or not finite.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidInput flags a region whose population is missing,
	// negative or non-numeric.
	ErrInvalidInput = errors.New("invalid input")

	// ErrGeometry flags a region whose containment test could not be
	// evaluated.
	ErrGeometry = errors.New("geometry error")

	// ErrDataSourceUnavailable is returned when regions or facilities
	// cannot be read from a source.
	ErrDataSourceUnavailable = errors.New("data source unavailable")
)

// RegionError attributes a failure to a single region.
type RegionError struct {
	Region string
	Field  string
	Err    error
}

func (e *RegionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("region %q: field %q: %v", e.Region, e.Field, e.Err)
	}
	return fmt.Sprintf("region %q: %v", e.Region, e.Err)
}

func (e *RegionError) Unwrap() error {
	return e.Err
}

// Unavailable wraps err as a data source failure for the named layer.
func Unavailable(layer string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDataSourceUnavailable, layer, err)
}

func isUnavailable(err error) bool {
	return errors.Is(err, ErrDataSourceUnavailable)
}
