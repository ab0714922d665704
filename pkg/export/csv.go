package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/ChicagoDave/neededschools/pkg/demand"
)

// WriteCSV writes the results table with a fixed header row.
func WriteCSV(w io.Writer, results []demand.RegionResult, opts Options) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(opts.header()); err != nil {
		return err
	}
	for _, row := range opts.rows(results) {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
