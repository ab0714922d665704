package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ChicagoDave/neededschools/internal/pipeline"
	"github.com/ChicagoDave/neededschools/pkg/config"
	"github.com/ChicagoDave/neededschools/pkg/demand"
	"github.com/ChicagoDave/neededschools/pkg/validation"
)

var (
	errInvalidProject = errors.New("project has validation errors")
	errStrict         = errors.New("strict mode: regions flagged, no output written")
)

// checkSchema runs schema validation and prints the report when it fails.
func checkSchema(w io.Writer, p *config.Project) error {
	report := validation.ValidateSchema(p)
	if report.Valid {
		return nil
	}
	printValidationReport(w, report)
	return fmt.Errorf("%w: %w", demand.ErrInvalidConfiguration, errInvalidProject)
}

func runCompute(ctx context.Context, w io.Writer, p *config.Project, logger *slog.Logger) error {
	if err := checkSchema(w, p); err != nil {
		return err
	}

	out, err := pipeline.Compute(ctx, p, p.Capacity, logger)
	if err != nil {
		return err
	}

	printResults(w, out, p.Capacity)
	if out.Summary.Flagged > 0 {
		fmt.Fprintln(w)
		printValidationReport(w, out.Report)
		if p.Strict {
			return fmt.Errorf("%w: %w", errStrict, out.Report.Err())
		}
	}

	written, err := pipeline.Export(p, out, p.Capacity)
	for _, path := range written {
		logger.Info("wrote output", "path", path)
	}
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func runValidate(ctx context.Context, w io.Writer, p *config.Project) error {
	report := pipeline.Validate(ctx, p)
	printValidationReport(w, report)
	if !report.Valid {
		return errInvalidProject
	}
	return nil
}

func runFields(ctx context.Context, w io.Writer, p *config.Project) error {
	fields, err := pipeline.Fields(ctx, p)
	if err != nil {
		return err
	}
	for _, f := range fields {
		marker := " "
		if f == p.Regions.PopulationField {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\n", marker, f)
	}
	return nil
}
