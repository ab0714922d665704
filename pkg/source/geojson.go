package source

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/paulmach/orb/geojson"

	"github.com/ChicagoDave/neededschools/pkg/demand"
)

// GeoJSONRegions reads region polygons from a FeatureCollection file.
type GeoJSONRegions struct {
	Path            string
	NameField       string
	PopulationField string
	SRID            int
}

// GeoJSONFacilities reads facility points from a FeatureCollection file.
type GeoJSONFacilities struct {
	Path    string
	IDField string
	SRID    int
}

func readFeatureCollection(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return fc, nil
}

// Regions returns one region per feature, in file order. Geometry problems
// are left for the containment engine to flag per region.
func (g *GeoJSONRegions) Regions(_ context.Context) ([]demand.Region, error) {
	fc, err := readFeatureCollection(g.Path)
	if err != nil {
		return nil, demand.Unavailable("regions", err)
	}

	regions := make([]demand.Region, 0, len(fc.Features))
	for i, f := range fc.Features {
		regions = append(regions, demand.Region{
			Name:       featureName(f, g.NameField, i),
			Population: demand.ParseValue(f.Properties[g.PopulationField]),
			Geometry:   f.Geometry,
			SRID:       g.SRID,
		})
	}
	return regions, nil
}

// Fields returns the sorted union of property keys across all features.
func (g *GeoJSONRegions) Fields(_ context.Context) ([]string, error) {
	fc, err := readFeatureCollection(g.Path)
	if err != nil {
		return nil, demand.Unavailable("regions", err)
	}

	seen := make(map[string]bool)
	var fields []string
	for _, f := range fc.Features {
		for k := range f.Properties {
			if !seen[k] {
				seen[k] = true
				fields = append(fields, k)
			}
		}
	}
	sort.Strings(fields)
	return fields, nil
}

// Facilities returns every point in the file. Non-point features make the
// layer unusable.
func (g *GeoJSONFacilities) Facilities(_ context.Context) ([]demand.Facility, error) {
	fc, err := readFeatureCollection(g.Path)
	if err != nil {
		return nil, demand.Unavailable("facilities", err)
	}

	var out []demand.Facility
	for i, f := range fc.Features {
		pts, err := pointsOf(featureName(f, g.IDField, i), f.Geometry, g.SRID)
		if err != nil {
			return nil, demand.Unavailable("facilities", fmt.Errorf("feature %d: %w", i, err))
		}
		out = append(out, pts...)
	}
	return out, nil
}

// featureName reads the named property, then the feature id, then falls
// back to the feature's position.
func featureName(f *geojson.Feature, field string, i int) string {
	if field != "" {
		if v, ok := f.Properties[field]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	if f.ID != nil {
		return fmt.Sprint(f.ID)
	}
	return fmt.Sprintf("feature-%d", i+1)
}
