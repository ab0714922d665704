package main

import (
	"fmt"
	"io"

	"github.com/ChicagoDave/neededschools/pkg/demand"
	"github.com/ChicagoDave/neededschools/pkg/validation"
)

func printValidationReport(w io.Writer, r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Fprintf(w, "ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			printResult(w, e)
		}
		fmt.Fprintln(w)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "WARNINGS (%d):\n", len(r.Warnings))
		for _, e := range r.Warnings {
			printResult(w, e)
		}
		fmt.Fprintln(w)
	}

	if len(r.Info) > 0 {
		fmt.Fprintf(w, "INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Fprintf(w, "  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Fprintln(w)
	}

	if r.Valid {
		fmt.Fprintf(w, "Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Fprintf(w, "Result: INVALID (%s)\n", r.Summary)
	}
}

func printResult(w io.Writer, e validation.Result) {
	fmt.Fprintf(w, "  [%s] %s\n", e.Level, e.Message)
	if e.Path != "" {
		fmt.Fprintf(w, "    -> %s = %v\n", e.Path, e.ActualValue)
	}
	if e.Expected != "" {
		fmt.Fprintf(w, "    expected: %s\n", e.Expected)
	}
	for _, s := range e.Suggestions {
		fmt.Fprintf(w, "    * %s\n", s)
	}
}

func printResults(w io.Writer, out *demand.Outcome, capacity float64) {
	fmt.Fprintf(w, "School needs (capacity %g)\n", capacity)
	fmt.Fprintln(w, "===========================")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-24s %12s %8s %8s %10s\n", "Region", "Population", "Needed", "Current", "Additional")
	fmt.Fprintf(w, "%-24s %12s %8s %8s %10s\n",
		"------------------------", "------------", "--------", "--------", "----------")
	for _, r := range out.Results {
		if r.Flagged() {
			status := "flagged"
			if errs := out.Report.ErrorsFor(r.Region); len(errs) > 0 {
				status = string(errs[0].Level)
			}
			fmt.Fprintf(w, "%-24s %12s %8s %8s %10s\n", r.Region, "-", "-", "-", status)
			continue
		}
		fmt.Fprintf(w, "%-24s %12.0f %8d %8d %10d\n", r.Region, r.Population, r.Required, r.Existing, r.Additional)
	}

	s := out.Summary
	fmt.Fprintf(w, "%-24s %12.0f %8d %8d %10d\n", "TOTAL", s.Population, s.Required, s.Existing, s.Additional)

	if s.Flagged > 0 {
		counts := out.Report.CountByLevel()
		fmt.Fprintf(w, "\nFlagged regions: %d (input %d, geometry %d)\n",
			s.Flagged, counts[validation.LevelInput], counts[validation.LevelGeometry])
	}
}
