// Package pipeline wires a project's sources, the containment engine and
// the exports together for the CLI and the HTTP server.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ChicagoDave/neededschools/pkg/config"
	"github.com/ChicagoDave/neededschools/pkg/demand"
	"github.com/ChicagoDave/neededschools/pkg/export"
	"github.com/ChicagoDave/neededschools/pkg/geo"
	"github.com/ChicagoDave/neededschools/pkg/source"
	"github.com/ChicagoDave/neededschools/pkg/validation"
)

// Compute opens the project's sources and aggregates them at the given
// capacity. An invalid capacity fails before any source is opened.
func Compute(ctx context.Context, p *config.Project, capacity float64, logger *slog.Logger) (*demand.Outcome, error) {
	if err := demand.ValidateCapacity(capacity); err != nil {
		return nil, err
	}
	start := time.Now()
	logger = logger.With("run", uuid.NewString())

	src, err := source.Open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	out, err := demand.Run(ctx, src, geo.NewContainment, capacity)
	if err != nil {
		return nil, err
	}

	logger.Info("computed school needs",
		"regions", out.Summary.Regions,
		"flagged", out.Summary.Flagged,
		"additional", out.Summary.Additional,
		"capacity", capacity,
		"elapsed", time.Since(start))
	for _, name := range out.Report.FlaggedRegions() {
		logger.Warn("region flagged", "region", name)
	}
	return out, nil
}

// Validate runs schema validation and, when the schema is sound, checks
// every region's population. No containment query runs.
func Validate(ctx context.Context, p *config.Project) *validation.Report {
	report := validation.ValidateSchema(p)
	if !report.Valid {
		return report
	}

	src, err := source.Open(ctx, p)
	if err != nil {
		report.AddError(validation.Result{Level: validation.LevelSource, Message: err.Error()})
		return report
	}
	defer src.Close()

	regions, err := src.Regions(ctx)
	if err != nil {
		report.AddError(validation.Result{Level: validation.LevelSource, Message: err.Error()})
		return report
	}
	report.Merge(demand.CheckPopulations(regions))
	report.AddInfo(validation.Result{
		Level:   validation.LevelInput,
		Message: fmt.Sprintf("%d regions read", len(regions)),
	})
	return report
}

// Fields lists the region layer's attribute fields.
func Fields(ctx context.Context, p *config.Project) ([]string, error) {
	src, err := source.Open(ctx, p)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return src.Fields(ctx)
}

// Export writes every output the project configures and returns the paths
// written.
func Export(p *config.Project, out *demand.Outcome, capacity float64) ([]string, error) {
	opts := export.Options{IncludeFlagged: p.Output.IncludeFlagged}

	targets := []struct {
		path  string
		write func(io.Writer) error
	}{
		{p.Output.CSV, func(w io.Writer) error {
			return export.WriteCSV(w, out.Results, opts)
		}},
		{p.Output.XLSX, func(w io.Writer) error {
			return export.WriteXLSX(w, out.Results, capacity, opts)
		}},
		{p.Output.GeoJSON, func(w io.Writer) error {
			return export.WriteGeoJSON(w, out.Regions, out.Results, opts)
		}},
	}

	var written []string
	for _, t := range targets {
		if t.path == "" {
			continue
		}
		path := p.Resolve(t.path)
		if err := export.ToFile(path, t.write); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
