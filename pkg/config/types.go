package config

import "time"

// Source kinds.
const (
	KindGeoJSON = "geojson"
	KindCSV     = "csv"
	KindPostGIS = "postgis"
)

// DefaultCapacity is the number of people one school serves when no
// capacity is configured.
const DefaultCapacity = 1000

// DefaultNameField is the region name attribute of the admin-level-3
// boundary layers the tool was first used with.
const DefaultNameField = "ADM3_EN"

// Project is the top-level needs.yaml document.
type Project struct {
	Capacity   float64  `yaml:"capacity" json:"capacity"`
	Strict     bool     `yaml:"strict" json:"strict"`
	Regions    Layer    `yaml:"regions" json:"regions"`
	Facilities Layer    `yaml:"facilities" json:"facilities"`
	Database   Database `yaml:"database" json:"database"`
	Output     Output   `yaml:"output" json:"output"`
	Server     Server   `yaml:"server" json:"server"`

	// Dir is the project directory; relative paths resolve against it.
	Dir string `yaml:"-" json:"-"`
}

// Layer describes where one data layer comes from.
type Layer struct {
	Kind string `yaml:"kind" json:"kind"`

	// geojson and csv
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// postgis
	Table          string `yaml:"table,omitempty" json:"table,omitempty"`
	GeometryColumn string `yaml:"geometry_column,omitempty" json:"geometry_column,omitempty"`

	NameField       string `yaml:"name_field,omitempty" json:"name_field,omitempty"`
	PopulationField string `yaml:"population_field,omitempty" json:"population_field,omitempty"`
	IDField         string `yaml:"id_field,omitempty" json:"id_field,omitempty"`

	// csv geometry: either a WKT column or a pair of coordinate columns.
	WKTField string `yaml:"wkt_field,omitempty" json:"wkt_field,omitempty"`
	XField   string `yaml:"x_field,omitempty" json:"x_field,omitempty"`
	YField   string `yaml:"y_field,omitempty" json:"y_field,omitempty"`

	// SRID applied to file geometries; postgis reads it from the column.
	SRID int `yaml:"srid,omitempty" json:"srid,omitempty"`
}

// Database holds the PostGIS connection used by postgis layers.
type Database struct {
	URL string `yaml:"url,omitempty" json:"url,omitempty"`
}

// Redacted returns a copy safe to print or serve.
func (d Database) Redacted() Database {
	if d.URL == "" {
		return d
	}
	return Database{URL: "<redacted>"}
}

// Output lists export destinations. Empty paths are skipped.
type Output struct {
	CSV            string `yaml:"csv,omitempty" json:"csv,omitempty"`
	XLSX           string `yaml:"xlsx,omitempty" json:"xlsx,omitempty"`
	GeoJSON        string `yaml:"geojson,omitempty" json:"geojson,omitempty"`
	IncludeFlagged bool   `yaml:"include_flagged,omitempty" json:"include_flagged,omitempty"`
}

// Server configures the HTTP API.
type Server struct {
	// AllowedOrigins enables CORS for browser map clients. Empty disables it.
	AllowedOrigins []string `yaml:"allowed_origins,omitempty" json:"allowed_origins,omitempty"`
	// CacheTTL keeps computed results per capacity. Zero disables caching.
	CacheTTL time.Duration `yaml:"cache_ttl,omitempty" json:"cache_ttl,omitempty"`
}

// applyDefaults fills values left unset in the file.
// An explicit capacity of 0 is kept so validation can reject it.
func (p *Project) applyDefaults(capacitySet bool) {
	if !capacitySet {
		p.Capacity = DefaultCapacity
	}
	if p.Regions.NameField == "" {
		p.Regions.NameField = DefaultNameField
	}
	if p.Regions.GeometryColumn == "" && p.Regions.Kind == KindPostGIS {
		p.Regions.GeometryColumn = "geom"
	}
	if p.Facilities.GeometryColumn == "" && p.Facilities.Kind == KindPostGIS {
		p.Facilities.GeometryColumn = "geom"
	}
	if p.Regions.WKTField == "" && p.Regions.Kind == KindCSV {
		p.Regions.WKTField = "wkt"
	}
}
