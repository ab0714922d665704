package validation

import (
	"fmt"
	"math"

	"github.com/ChicagoDave/neededschools/pkg/config"
)

// ValidateSchema checks a parsed project for structural problems before any
// data source is opened.
func ValidateSchema(p *config.Project) *Report {
	r := NewReport()

	validateCapacity(p, r)
	validateLayer("regions", p.Regions, true, r)
	validateLayer("facilities", p.Facilities, false, r)
	validateDatabase(p, r)
	validateOutput(p, r)
	validateServer(p, r)

	return r
}

func validateCapacity(p *config.Project, r *Report) {
	if math.IsNaN(p.Capacity) || math.IsInf(p.Capacity, 0) || p.Capacity <= 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "capacity must be a finite number greater than 0",
			Path:        "capacity",
			ActualValue: p.Capacity,
			Expected:    "> 0",
			Suggestions: []string{"Set capacity to the number of people one school serves, e.g. 1000"},
		})
	}
}

func validateLayer(name string, l config.Layer, polygons bool, r *Report) {
	switch l.Kind {
	case config.KindGeoJSON:
		requireField(r, name+".path", l.Path)
	case config.KindCSV:
		requireField(r, name+".path", l.Path)
		if l.WKTField == "" && (l.XField == "" || l.YField == "") {
			r.AddError(Result{
				Level:    LevelSchema,
				Message:  fmt.Sprintf("%s: csv layers need wkt_field or both x_field and y_field", name),
				Path:     name + ".wkt_field",
				Expected: "wkt_field, or x_field and y_field",
			})
		}
		if polygons && l.WKTField == "" {
			r.AddError(Result{
				Level:   LevelSchema,
				Message: fmt.Sprintf("%s: polygon csv layers need wkt_field", name),
				Path:    name + ".wkt_field",
			})
		}
	case config.KindPostGIS:
		requireField(r, name+".table", l.Table)
	case "":
		r.AddError(Result{
			Level:    LevelSchema,
			Message:  fmt.Sprintf("%s.kind is required", name),
			Path:     name + ".kind",
			Expected: "geojson, csv or postgis",
		})
		return
	default:
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("%s.kind %q is not supported", name, l.Kind),
			Path:        name + ".kind",
			ActualValue: l.Kind,
			Expected:    "geojson, csv or postgis",
		})
		return
	}

	if polygons {
		requireField(r, name+".name_field", l.NameField)
		requireField(r, name+".population_field", l.PopulationField)
	}
	if l.SRID < 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("%s.srid must not be negative", name),
			Path:        name + ".srid",
			ActualValue: l.SRID,
			Expected:    ">= 0",
		})
	}
}

func validateDatabase(p *config.Project, r *Report) {
	usesDB := p.Regions.Kind == config.KindPostGIS || p.Facilities.Kind == config.KindPostGIS
	if usesDB && p.Database.URL == "" {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "postgis layers need a database URL",
			Path:        "database.url",
			Suggestions: []string{"Set NEEDEDSCHOOLS_DATABASE_URL or database.url"},
		})
	}
	if !usesDB && p.Database.URL != "" {
		r.AddInfo(Result{
			Level:   LevelSchema,
			Message: "database.url is set but no layer uses postgis",
			Path:    "database.url",
		})
	}
}

func validateOutput(p *config.Project, r *Report) {
	o := p.Output
	if o.CSV == "" && o.XLSX == "" && o.GeoJSON == "" {
		r.AddWarning(Result{
			Level:       LevelSchema,
			Message:     "no output configured; results are only printed",
			Path:        "output",
			Suggestions: []string{"Set output.csv to export the table"},
		})
	}
}

func validateServer(p *config.Project, r *Report) {
	if p.Server.CacheTTL < 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "server cache TTL must not be negative",
			Path:        "server.cache_ttl",
			ActualValue: p.Server.CacheTTL.String(),
			Expected:    ">= 0",
		})
	}
	for _, o := range p.Server.AllowedOrigins {
		if o == "" {
			r.AddError(Result{
				Level:   LevelSchema,
				Message: "empty entry in server.allowed_origins",
				Path:    "server.allowed_origins",
			})
		}
	}
}

func requireField(r *Report, path, value string) {
	if value == "" {
		r.AddError(Result{
			Level:   LevelSchema,
			Message: fmt.Sprintf("%s is required", path),
			Path:    path,
		})
	}
}
