package validation

import (
	"fmt"
	"strings"
)

// Level indicates which stage produced the result: the project file, a
// region's attributes, a region's geometry, or reading a layer.
type Level string

const (
	LevelSchema   Level = "schema"
	LevelInput    Level = "input"
	LevelGeometry Level = "geometry"
	LevelSource   Level = "source"
)

// Severity indicates how critical a validation result is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Result is a single validation finding.
type Result struct {
	Level       Level    `json:"level"`
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
	Path        string   `json:"path,omitempty"`
	Region      string   `json:"region,omitempty"`
	ActualValue any      `json:"actual_value,omitempty"`
	Expected    string   `json:"expected,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Report is the complete validation output.
type Report struct {
	Valid    bool     `json:"valid"`
	Errors   []Result `json:"errors"`
	Warnings []Result `json:"warnings"`
	Info     []Result `json:"info"`
	Summary  string   `json:"summary"`
}

// NewReport creates an empty valid report.
func NewReport() *Report {
	r := &Report{
		Valid:    true,
		Errors:   []Result{},
		Warnings: []Result{},
		Info:     []Result{},
	}
	r.updateSummary()
	return r
}

// AddError adds an error result and marks the report invalid.
func (r *Report) AddError(result Result) {
	result.Severity = SeverityError
	r.Errors = append(r.Errors, result)
	r.Valid = false
	r.updateSummary()
}

// AddWarning adds a warning result.
func (r *Report) AddWarning(result Result) {
	result.Severity = SeverityWarning
	r.Warnings = append(r.Warnings, result)
	r.updateSummary()
}

// AddInfo adds an informational result.
func (r *Report) AddInfo(result Result) {
	result.Severity = SeverityInfo
	r.Info = append(r.Info, result)
	r.updateSummary()
}

// Merge combines another report into this one. A nil report is ignored.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Info = append(r.Info, other.Info...)
	if !other.Valid {
		r.Valid = false
	}
	r.updateSummary()
}

// FlaggedRegions returns the names of regions with at least one error,
// in the order they were first reported.
func (r *Report) FlaggedRegions() []string {
	seen := make(map[string]bool)
	var names []string
	for _, e := range r.Errors {
		if e.Region == "" || seen[e.Region] {
			continue
		}
		seen[e.Region] = true
		names = append(names, e.Region)
	}
	return names
}

// ErrorsFor returns the error results recorded against one region.
func (r *Report) ErrorsFor(region string) []Result {
	var out []Result
	for _, e := range r.Errors {
		if e.Region == region {
			out = append(out, e)
		}
	}
	return out
}

// CountByLevel counts error results per level.
func (r *Report) CountByLevel() map[Level]int {
	counts := make(map[Level]int)
	for _, e := range r.Errors {
		counts[e.Level]++
	}
	return counts
}

// Err returns nil for a valid report, otherwise an error whose message lists
// every error result.
func (r *Report) Err() error {
	if r.Valid {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return fmt.Errorf("%s: %s", r.Summary, strings.Join(msgs, "; "))
}

func (r *Report) updateSummary() {
	r.Summary = fmt.Sprintf("%d errors, %d warnings, %d info",
		len(r.Errors), len(r.Warnings), len(r.Info))
}
