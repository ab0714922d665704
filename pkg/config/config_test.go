package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadProject(t *testing.T) {
	p, err := LoadProject("../../examples/default-region")
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}

	if p.Capacity != 1000 {
		t.Errorf("capacity = %v, want 1000", p.Capacity)
	}
	if p.Strict {
		t.Error("strict = true, want false")
	}
	if p.Regions.Kind != KindGeoJSON {
		t.Errorf("regions.kind = %q, want %q", p.Regions.Kind, KindGeoJSON)
	}
	if p.Regions.NameField != "ADM3_EN" {
		t.Errorf("regions.name_field = %q, want ADM3_EN", p.Regions.NameField)
	}
	if p.Regions.PopulationField != "population" {
		t.Errorf("regions.population_field = %q, want population", p.Regions.PopulationField)
	}
	if p.Facilities.IDField != "school_id" {
		t.Errorf("facilities.id_field = %q, want school_id", p.Facilities.IDField)
	}
	if p.Output.CSV != "out/schools_needed.csv" {
		t.Errorf("output.csv = %q", p.Output.CSV)
	}

	if p.Server.CacheTTL != 30*time.Second {
		t.Errorf("server.cache_ttl = %v, want 30s", p.Server.CacheTTL)
	}
	if len(p.Server.AllowedOrigins) != 1 || p.Server.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("server.allowed_origins = %v", p.Server.AllowedOrigins)
	}

	want := filepath.Join("../../examples/default-region", "regions.geojson")
	if got := p.Resolve(p.Regions.Path); got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
}

func TestLoadProjectMissing(t *testing.T) {
	_, err := LoadProject("/nonexistent/path")
	if err == nil {
		t.Error("expected error for missing project directory")
	}
}

func writeProject(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ProjectFile), []byte(body), 0o644); err != nil {
		t.Fatalf("writing project: %v", err)
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	dir := writeProject(t, `
regions:
  kind: postgis
  table: admin3
  population_field: pop
facilities:
  kind: postgis
  table: schools
`)
	p, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if p.Capacity != DefaultCapacity {
		t.Errorf("capacity = %v, want default %d", p.Capacity, DefaultCapacity)
	}
	if p.Regions.NameField != DefaultNameField {
		t.Errorf("name_field = %q, want %q", p.Regions.NameField, DefaultNameField)
	}
	if p.Regions.GeometryColumn != "geom" || p.Facilities.GeometryColumn != "geom" {
		t.Errorf("geometry columns = %q/%q, want geom", p.Regions.GeometryColumn, p.Facilities.GeometryColumn)
	}
}

func TestLoadKeepsExplicitZeroCapacity(t *testing.T) {
	dir := writeProject(t, "capacity: 0\n")
	p, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if p.Capacity != 0 {
		t.Errorf("capacity = %v, want explicit 0 kept", p.Capacity)
	}
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	dir := writeProject(t, "# nothing configured yet\n")
	p, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if p.Capacity != DefaultCapacity {
		t.Errorf("capacity = %v, want default %d", p.Capacity, DefaultCapacity)
	}
}

func TestLoadNestedCapacityKeyIsNotTopLevel(t *testing.T) {
	dir := writeProject(t, `
regions:
  kind: geojson
  path: regions.geojson
  population_field: capacity
`)
	p, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if p.Capacity != DefaultCapacity {
		t.Errorf("capacity = %v, want default %d", p.Capacity, DefaultCapacity)
	}
}

func TestLoadCapacityTypeError(t *testing.T) {
	dir := writeProject(t, "capacity: lots\n")
	if _, err := LoadProject(dir); err == nil {
		t.Error("expected decode error for non-numeric capacity")
	}
}

func TestLoadBadYAML(t *testing.T) {
	dir := writeProject(t, "capacity: [1, 2\n")
	if _, err := LoadProject(dir); err == nil {
		t.Error("expected parse error")
	}
}

func TestRedacted(t *testing.T) {
	p := &Project{Database: Database{URL: "postgres://user:secret@db/gis"}}
	r := p.Redacted()
	if r.Database.URL != "<redacted>" {
		t.Errorf("redacted URL = %q", r.Database.URL)
	}
	if p.Database.URL == "<redacted>" {
		t.Error("Redacted modified the receiver")
	}
}

func TestResolveAbsolute(t *testing.T) {
	p := &Project{Dir: "/projects/a"}
	if got := p.Resolve("/data/x.geojson"); got != "/data/x.geojson" {
		t.Errorf("Resolve absolute = %q", got)
	}
	if got := p.Resolve(""); got != "" {
		t.Errorf("Resolve empty = %q", got)
	}
}
