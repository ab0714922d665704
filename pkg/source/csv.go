package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/ChicagoDave/neededschools/pkg/demand"
)

// CSVRegions reads regions from a delimited table with a WKT geometry column.
type CSVRegions struct {
	Path            string
	NameField       string
	PopulationField string
	WKTField        string
	SRID            int
}

// CSVFacilities reads facilities from a delimited table, with either a WKT
// column or a pair of coordinate columns.
type CSVFacilities struct {
	Path     string
	IDField  string
	WKTField string
	XField   string
	YField   string
	SRID     int
}

type table struct {
	header map[string]int
	names  []string
	rows   [][]string
}

func (t *table) col(name string) (int, error) {
	i, ok := t.header[name]
	if !ok {
		return 0, fmt.Errorf("column %q not found (have %s)", name, strings.Join(t.names, ", "))
	}
	return i, nil
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	names, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty file", path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s header: %w", path, err)
	}
	for i, n := range names {
		names[i] = strings.TrimSpace(strings.TrimPrefix(n, "\ufeff"))
	}

	t := &table{header: make(map[string]int, len(names)), names: names}
	for i, n := range names {
		t.header[n] = i
	}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// Regions returns one region per row, in file order.
func (c *CSVRegions) Regions(_ context.Context) ([]demand.Region, error) {
	regions, err := c.read()
	if err != nil {
		return nil, demand.Unavailable("regions", err)
	}
	return regions, nil
}

func (c *CSVRegions) read() ([]demand.Region, error) {
	t, err := readTable(c.Path)
	if err != nil {
		return nil, err
	}
	nameCol, err := t.col(c.NameField)
	if err != nil {
		return nil, err
	}
	popCol, err := t.col(c.PopulationField)
	if err != nil {
		return nil, err
	}
	geomCol, err := t.col(c.WKTField)
	if err != nil {
		return nil, err
	}

	regions := make([]demand.Region, 0, len(t.rows))
	for i, row := range t.rows {
		name := row[nameCol]
		g, err := wkt.Unmarshal(row[geomCol])
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): parsing %s: %w", i+2, name, c.WKTField, err)
		}
		regions = append(regions, demand.Region{
			Name:       name,
			Population: demand.ParseValue(row[popCol]),
			Geometry:   g,
			SRID:       c.SRID,
		})
	}
	return regions, nil
}

// Fields returns the table header, minus the geometry column.
func (c *CSVRegions) Fields(_ context.Context) ([]string, error) {
	t, err := readTable(c.Path)
	if err != nil {
		return nil, demand.Unavailable("regions", err)
	}
	fields := make([]string, 0, len(t.names))
	for _, n := range t.names {
		if n != c.WKTField {
			fields = append(fields, n)
		}
	}
	return fields, nil
}

// Facilities returns one facility per row, or one per member of a WKT
// multipoint.
func (c *CSVFacilities) Facilities(_ context.Context) ([]demand.Facility, error) {
	out, err := c.read()
	if err != nil {
		return nil, demand.Unavailable("facilities", err)
	}
	return out, nil
}

func (c *CSVFacilities) read() ([]demand.Facility, error) {
	t, err := readTable(c.Path)
	if err != nil {
		return nil, err
	}
	idCol := -1
	if c.IDField != "" {
		if idCol, err = t.col(c.IDField); err != nil {
			return nil, err
		}
	}

	location, err := c.locator(t)
	if err != nil {
		return nil, err
	}

	var out []demand.Facility
	for i, row := range t.rows {
		id := fmt.Sprintf("row-%d", i+2)
		if idCol >= 0 {
			id = row[idCol]
		}
		g, err := location(row)
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", i+2, id, err)
		}
		pts, err := pointsOf(id, g, c.SRID)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, pts...)
	}
	return out, nil
}

func (c *CSVFacilities) locator(t *table) (func([]string) (orb.Geometry, error), error) {
	if c.WKTField != "" {
		col, err := t.col(c.WKTField)
		if err != nil {
			return nil, err
		}
		return func(row []string) (orb.Geometry, error) {
			return wkt.Unmarshal(row[col])
		}, nil
	}

	xCol, err := t.col(c.XField)
	if err != nil {
		return nil, err
	}
	yCol, err := t.col(c.YField)
	if err != nil {
		return nil, err
	}
	return func(row []string) (orb.Geometry, error) {
		x, err := strconv.ParseFloat(strings.TrimSpace(row[xCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", c.XField, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(row[yCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", c.YField, err)
		}
		return orb.Point{x, y}, nil
	}, nil
}
