package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"

	"github.com/ChicagoDave/neededschools/pkg/demand"
)

// DB is a PostGIS connection pool shared by the postgis layers.
type DB struct {
	pool *pgxpool.Pool
}

// Connect opens and pings a pool for the given URL.
func Connect(ctx context.Context, url string) (*DB, error) {
	if url == "" {
		return nil, errors.New("no database URL configured")
	}
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// NewDB wraps an existing pool.
func NewDB(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

// Close releases the pool.
func (d *DB) Close() {
	d.pool.Close()
}

// PostGISRegions reads regions from a polygon table.
type PostGISRegions struct {
	DB              *DB
	Table           string
	GeometryColumn  string
	NameField       string
	PopulationField string
}

// PostGISFacilities reads facilities from a point table.
type PostGISFacilities struct {
	DB             *DB
	Table          string
	GeometryColumn string
	IDField        string
}

// tableIdent splits an optionally schema-qualified table name.
func tableIdent(table string) pgx.Identifier {
	if schema, name, ok := strings.Cut(table, "."); ok {
		return pgx.Identifier{schema, name}
	}
	return pgx.Identifier{table}
}

func column(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func (p *PostGISRegions) query() string {
	geom := column(p.GeometryColumn)
	return fmt.Sprintf(
		"SELECT %s::text, %s::text, ST_AsBinary(%s), COALESCE(ST_SRID(%s), 0) FROM %s ORDER BY 1",
		column(p.NameField), column(p.PopulationField), geom, geom, tableIdent(p.Table).Sanitize(),
	)
}

// Regions returns regions ordered by name. Rows whose geometry cannot be
// decoded get a nil geometry, which the containment engine flags.
func (p *PostGISRegions) Regions(ctx context.Context) ([]demand.Region, error) {
	rows, err := p.DB.pool.Query(ctx, p.query())
	if err != nil {
		return nil, demand.Unavailable("regions", fmt.Errorf("querying %s: %w", p.Table, err))
	}
	defer rows.Close()

	var regions []demand.Region
	for rows.Next() {
		var (
			name *string
			pop  *string
			geom []byte
			srid int
		)
		if err := rows.Scan(&name, &pop, &geom, &srid); err != nil {
			return nil, demand.Unavailable("regions", fmt.Errorf("scanning %s: %w", p.Table, err))
		}
		r := demand.Region{
			Name:     fmt.Sprintf("row-%d", len(regions)+1),
			Geometry: decodeWKB(geom),
			SRID:     srid,
		}
		if name != nil {
			r.Name = *name
		}
		if pop != nil {
			r.Population = demand.ParseValue(*pop)
		}
		regions = append(regions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, demand.Unavailable("regions", fmt.Errorf("reading %s: %w", p.Table, err))
	}
	return regions, nil
}

// Fields lists the table's columns in definition order, minus the geometry.
func (p *PostGISRegions) Fields(ctx context.Context) ([]string, error) {
	schema, name, ok := strings.Cut(p.Table, ".")
	if !ok {
		schema, name = "", p.Table
	}
	rows, err := p.DB.pool.Query(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = COALESCE(NULLIF($1, ''), current_schema())
		  AND table_name = $2
		ORDER BY ordinal_position`, schema, name)
	if err != nil {
		return nil, demand.Unavailable("regions", fmt.Errorf("listing columns of %s: %w", p.Table, err))
	}
	cols, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, demand.Unavailable("regions", fmt.Errorf("listing columns of %s: %w", p.Table, err))
	}

	fields := make([]string, 0, len(cols))
	for _, c := range cols {
		if c != p.GeometryColumn {
			fields = append(fields, c)
		}
	}
	return fields, nil
}

func (p *PostGISFacilities) query() string {
	id := "ctid::text"
	if p.IDField != "" {
		id = column(p.IDField) + "::text"
	}
	geom := column(p.GeometryColumn)
	return fmt.Sprintf(
		"SELECT %s, ST_AsBinary(%s), ST_SRID(%s) FROM %s WHERE %s IS NOT NULL",
		id, geom, geom, tableIdent(p.Table).Sanitize(), geom,
	)
}

// Facilities returns every point in the table.
func (p *PostGISFacilities) Facilities(ctx context.Context) ([]demand.Facility, error) {
	rows, err := p.DB.pool.Query(ctx, p.query())
	if err != nil {
		return nil, demand.Unavailable("facilities", fmt.Errorf("querying %s: %w", p.Table, err))
	}
	defer rows.Close()

	var out []demand.Facility
	for rows.Next() {
		var (
			id   *string
			geom []byte
			srid int
		)
		if err := rows.Scan(&id, &geom, &srid); err != nil {
			return nil, demand.Unavailable("facilities", fmt.Errorf("scanning %s: %w", p.Table, err))
		}
		name := fmt.Sprintf("row-%d", len(out)+1)
		if id != nil {
			name = *id
		}
		g, err := wkb.Unmarshal(geom)
		if err != nil {
			return nil, demand.Unavailable("facilities", fmt.Errorf("facility %q: decoding geometry: %w", name, err))
		}
		pts, err := pointsOf(name, g, srid)
		if err != nil {
			return nil, demand.Unavailable("facilities", err)
		}
		out = append(out, pts...)
	}
	if err := rows.Err(); err != nil {
		return nil, demand.Unavailable("facilities", fmt.Errorf("reading %s: %w", p.Table, err))
	}
	return out, nil
}

func decodeWKB(b []byte) orb.Geometry {
	if len(b) == 0 {
		return nil
	}
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return nil
	}
	return g
}
