package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ChicagoDave/neededschools/pkg/demand"
)

const (
	resultsSheet = "Schools"
	summarySheet = "Summary"
)

// WriteXLSX writes a workbook with the results table on one sheet and the
// totals on another.
func WriteXLSX(w io.Writer, results []demand.RegionResult, capacity float64, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return err
	}

	header := opts.header()
	if err := setRow(f, resultsSheet, 1, toAny(header)); err != nil {
		return err
	}
	for i, row := range opts.rows(results) {
		if err := setRow(f, resultsSheet, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetPanes(resultsSheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	s := demand.Summarize(results)
	summary := [][]any{
		{"Capacity per school", capacity},
		{"Regions", s.Regions},
		{"Flagged regions", s.Flagged},
		{"Population", s.Population},
		{"Schools needed", s.Required},
		{"Current schools", s.Existing},
		{"Additional schools", s.Additional},
	}
	for i, row := range summary {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
