// Package export renders aggregation results as tables and map layers.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ChicagoDave/neededschools/pkg/demand"
)

// Header is the column layout of tabular exports.
var Header = []string{"Region", "Schools Needed", "Current Schools", "Additional Schools"}

// Options control which results are exported.
type Options struct {
	// IncludeFlagged adds flagged regions with an Error column instead of
	// skipping them.
	IncludeFlagged bool
}

func (o Options) header() []string {
	if !o.IncludeFlagged {
		return Header
	}
	return append(append([]string{}, Header...), "Error")
}

// rows converts results to export rows, skipping flagged regions unless
// requested.
func (o Options) rows(results []demand.RegionResult) [][]any {
	out := make([][]any, 0, len(results))
	for _, r := range results {
		switch {
		case !r.Flagged():
			row := []any{r.Region, r.Required, r.Existing, r.Additional}
			if o.IncludeFlagged {
				row = append(row, "")
			}
			out = append(out, row)
		case o.IncludeFlagged:
			out = append(out, []any{r.Region, "", "", "", r.Err.Error()})
		}
	}
	return out
}

// ToFile creates path, including parent directories, and passes it to
// write.
func ToFile(path string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
