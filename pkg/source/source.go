// Package source reads region and facility layers from files or PostGIS.
package source

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/ChicagoDave/neededschools/pkg/config"
	"github.com/ChicagoDave/neededschools/pkg/demand"
)

// RegionLayer supplies region polygons with their attributes.
type RegionLayer interface {
	Regions(ctx context.Context) ([]demand.Region, error)
	Fields(ctx context.Context) ([]string, error)
}

// FacilityLayer supplies facility points.
type FacilityLayer interface {
	Facilities(ctx context.Context) ([]demand.Facility, error)
}

// Source pairs a region layer with a facility layer. It implements
// demand.Source.
type Source struct {
	regions    RegionLayer
	facilities FacilityLayer
	closers    []func()
}

// New builds a Source from two layers.
func New(regions RegionLayer, facilities FacilityLayer) *Source {
	return &Source{regions: regions, facilities: facilities}
}

// Open builds the layers a project describes. PostGIS layers share one
// connection pool, released by Close.
func Open(ctx context.Context, p *config.Project) (*Source, error) {
	s := &Source{}

	var db *DB
	connect := func() (*DB, error) {
		if db != nil {
			return db, nil
		}
		var err error
		db, err = Connect(ctx, p.Database.URL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		return db, nil
	}

	regions, err := openRegions(p, p.Regions, connect)
	if err != nil {
		s.Close()
		return nil, err
	}
	facilities, err := openFacilities(p, p.Facilities, connect)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.regions = regions
	s.facilities = facilities
	return s, nil
}

func openRegions(p *config.Project, l config.Layer, connect func() (*DB, error)) (RegionLayer, error) {
	switch l.Kind {
	case config.KindGeoJSON:
		return &GeoJSONRegions{
			Path:            p.Resolve(l.Path),
			NameField:       l.NameField,
			PopulationField: l.PopulationField,
			SRID:            l.SRID,
		}, nil
	case config.KindCSV:
		return &CSVRegions{
			Path:            p.Resolve(l.Path),
			NameField:       l.NameField,
			PopulationField: l.PopulationField,
			WKTField:        l.WKTField,
			SRID:            l.SRID,
		}, nil
	case config.KindPostGIS:
		db, err := connect()
		if err != nil {
			return nil, demand.Unavailable("regions", err)
		}
		return &PostGISRegions{
			DB:              db,
			Table:           l.Table,
			GeometryColumn:  l.GeometryColumn,
			NameField:       l.NameField,
			PopulationField: l.PopulationField,
		}, nil
	default:
		return nil, fmt.Errorf("%w: regions: unsupported source kind %q", demand.ErrInvalidConfiguration, l.Kind)
	}
}

func openFacilities(p *config.Project, l config.Layer, connect func() (*DB, error)) (FacilityLayer, error) {
	switch l.Kind {
	case config.KindGeoJSON:
		return &GeoJSONFacilities{Path: p.Resolve(l.Path), IDField: l.IDField, SRID: l.SRID}, nil
	case config.KindCSV:
		return &CSVFacilities{
			Path:     p.Resolve(l.Path),
			IDField:  l.IDField,
			WKTField: l.WKTField,
			XField:   l.XField,
			YField:   l.YField,
			SRID:     l.SRID,
		}, nil
	case config.KindPostGIS:
		db, err := connect()
		if err != nil {
			return nil, demand.Unavailable("facilities", err)
		}
		return &PostGISFacilities{
			DB:             db,
			Table:          l.Table,
			GeometryColumn: l.GeometryColumn,
			IDField:        l.IDField,
		}, nil
	default:
		return nil, fmt.Errorf("%w: facilities: unsupported source kind %q", demand.ErrInvalidConfiguration, l.Kind)
	}
}

// Regions implements demand.Source.
func (s *Source) Regions(ctx context.Context) ([]demand.Region, error) {
	return s.regions.Regions(ctx)
}

// Facilities implements demand.Source.
func (s *Source) Facilities(ctx context.Context) ([]demand.Facility, error) {
	return s.facilities.Facilities(ctx)
}

// Fields lists the attribute fields of the region layer, for picking the
// population field.
func (s *Source) Fields(ctx context.Context) ([]string, error) {
	return s.regions.Fields(ctx)
}

// Close releases any database connections.
func (s *Source) Close() {
	for _, c := range s.closers {
		c()
	}
	s.closers = nil
}

// pointsOf flattens point and multipoint geometries into facilities.
// Members of a multipoint get the suffix "#n".
func pointsOf(id string, g orb.Geometry, srid int) ([]demand.Facility, error) {
	switch v := g.(type) {
	case orb.Point:
		return []demand.Facility{{ID: id, Location: v, SRID: srid}}, nil
	case orb.MultiPoint:
		out := make([]demand.Facility, len(v))
		for i, p := range v {
			out[i] = demand.Facility{ID: fmt.Sprintf("%s#%d", id, i+1), Location: p, SRID: srid}
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("facility %q has no geometry", id)
	default:
		return nil, fmt.Errorf("facility %q has %s geometry, want Point", id, g.GeoJSONType())
	}
}
