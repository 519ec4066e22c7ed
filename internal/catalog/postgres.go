package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/brew-cli/internal/db"
	"github.com/sells-group/brew-cli/internal/model"
)

// Postgres is a Catalog backed by a pgx connection pool.
type Postgres struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres connects to connString and verifies the connection.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*Postgres, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 4
	pgxCfg.MinConns = 1
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			pgxCfg.MaxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			pgxCfg.MinConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &Postgres{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Close does not close it.
func NewPostgresWithPool(pool db.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const postgresMigration = `
CREATE SCHEMA IF NOT EXISTS brew;

CREATE TABLE IF NOT EXISTS brew.grains (
	key       TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	potential DOUBLE PRECISION NOT NULL,
	color     DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS brew.hops (
	key        TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	alpha_acid DOUBLE PRECISION NOT NULL,
	flavors    TEXT[] NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS brew.yeasts (
	key         TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	type        TEXT NOT NULL,
	min_temp    DOUBLE PRECISION NOT NULL,
	max_temp    DOUBLE PRECISION NOT NULL,
	attenuation DOUBLE PRECISION NOT NULL,
	sensitivity DOUBLE PRECISION NOT NULL
);
`

func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (p *Postgres) Close() error {
	if p.closeFn != nil {
		p.closeFn()
	}
	return nil
}

var (
	grainUpsert = db.Upsert{
		Table:   "brew.grains",
		Columns: []string{"key", "name", "potential", "color"},
		Keys:    []string{"key"},
	}
	hopUpsert = db.Upsert{
		Table:   "brew.hops",
		Columns: []string{"key", "name", "alpha_acid", "flavors"},
		Keys:    []string{"key"},
	}
	yeastUpsert = db.Upsert{
		Table:   "brew.yeasts",
		Columns: []string{"key", "name", "type", "min_temp", "max_temp", "attenuation", "sensitivity"},
		Keys:    []string{"key"},
	}
)

// Import bulk-upserts every record of d and returns the number of rows written.
func (p *Postgres) Import(ctx context.Context, d *Data) (int, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}

	grains := make([][]any, 0, len(d.Grains))
	for _, g := range d.Grains {
		grains = append(grains, []any{Key(g.Name), g.Name, g.Potential, g.Color})
	}
	hops := make([][]any, 0, len(d.Hops))
	for _, h := range d.Hops {
		hops = append(hops, []any{Key(h.Name), h.Name, h.AlphaAcid, nonNil(h.Flavors)})
	}
	yeasts := make([][]any, 0, len(d.Yeasts))
	for _, y := range d.Yeasts {
		yeasts = append(yeasts, []any{Key(y.Name), y.Name, string(y.Type), y.MinTemp, y.MaxTemp, y.Attenuation, y.Sensitivity})
	}

	var total int64
	for _, step := range []struct {
		u    db.Upsert
		rows [][]any
	}{
		{grainUpsert, grains},
		{hopUpsert, hops},
		{yeastUpsert, yeasts},
	} {
		n, err := db.BulkUpsert(ctx, p.pool, step.u, step.rows)
		if err != nil {
			return int(total), eris.Wrapf(err, "postgres: import %s", step.u.Table)
		}
		total += n
	}
	return int(total), nil
}

func (p *Postgres) Grain(ctx context.Context, name string) (model.Grain, error) {
	var g model.Grain
	err := p.pool.QueryRow(ctx,
		`SELECT name, potential, color FROM brew.grains WHERE key = $1`, Key(name),
	).Scan(&g.Name, &g.Potential, &g.Color)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Grain{}, notFound("grain", name)
	}
	if err != nil {
		return model.Grain{}, eris.Wrapf(err, "postgres: get grain %s", name)
	}
	return g, nil
}

func (p *Postgres) Hop(ctx context.Context, name string) (model.Hop, error) {
	var h model.Hop
	err := p.pool.QueryRow(ctx,
		`SELECT name, alpha_acid, flavors FROM brew.hops WHERE key = $1`, Key(name),
	).Scan(&h.Name, &h.AlphaAcid, &h.Flavors)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Hop{}, notFound("hop", name)
	}
	if err != nil {
		return model.Hop{}, eris.Wrapf(err, "postgres: get hop %s", name)
	}
	return h, nil
}

func (p *Postgres) Yeast(ctx context.Context, name string) (model.Yeast, error) {
	var (
		y     model.Yeast
		ytype string
	)
	err := p.pool.QueryRow(ctx,
		`SELECT name, type, min_temp, max_temp, attenuation, sensitivity FROM brew.yeasts WHERE key = $1`, Key(name),
	).Scan(&y.Name, &ytype, &y.MinTemp, &y.MaxTemp, &y.Attenuation, &y.Sensitivity)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Yeast{}, notFound("yeast", name)
	}
	if err != nil {
		return model.Yeast{}, eris.Wrapf(err, "postgres: get yeast %s", name)
	}
	y.Type = model.YeastType(ytype)
	return y, nil
}

func (p *Postgres) List(ctx context.Context) (*Data, error) {
	d := &Data{}

	rows, err := p.pool.Query(ctx, `SELECT name, potential, color FROM brew.grains ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list grains")
	}
	d.Grains, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Grain, error) {
		var g model.Grain
		err := row.Scan(&g.Name, &g.Potential, &g.Color)
		return g, err
	})
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan grains")
	}

	rows, err = p.pool.Query(ctx, `SELECT name, alpha_acid, flavors FROM brew.hops ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list hops")
	}
	d.Hops, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Hop, error) {
		var h model.Hop
		err := row.Scan(&h.Name, &h.AlphaAcid, &h.Flavors)
		return h, err
	})
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan hops")
	}

	rows, err = p.pool.Query(ctx,
		`SELECT name, type, min_temp, max_temp, attenuation, sensitivity FROM brew.yeasts ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list yeasts")
	}
	d.Yeasts, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Yeast, error) {
		var (
			y     model.Yeast
			ytype string
		)
		err := row.Scan(&y.Name, &ytype, &y.MinTemp, &y.MaxTemp, &y.Attenuation, &y.Sensitivity)
		y.Type = model.YeastType(ytype)
		return y, err
	})
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan yeasts")
	}
	return d, nil
}
