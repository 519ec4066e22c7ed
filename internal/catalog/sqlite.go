package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/brew-cli/internal/model"
)

// SQLite is a Catalog backed by a modernc.org/sqlite database file.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens the database at dsn and configures WAL mode.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLite{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS grains (
	key       TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	potential REAL NOT NULL,
	color     REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS hops (
	key        TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	alpha_acid REAL NOT NULL,
	flavors    TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS yeasts (
	key         TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	type        TEXT NOT NULL,
	min_temp    REAL NOT NULL,
	max_temp    REAL NOT NULL,
	attenuation REAL NOT NULL,
	sensitivity REAL NOT NULL
);
`

func (s *SQLite) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// Import upserts every record of d in a single transaction and returns the
// number of rows written.
func (s *SQLite) Import(ctx context.Context, d *Data) (int, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin import")
	}
	defer tx.Rollback() //nolint:errcheck

	n := 0
	for _, g := range d.Grains {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO grains (key, name, potential, color) VALUES (?, ?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET name = excluded.name, potential = excluded.potential, color = excluded.color`,
			Key(g.Name), g.Name, g.Potential, g.Color,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: import grain %s", g.Name)
		}
		n++
	}
	for _, h := range d.Hops {
		flavors, err := json.Marshal(nonNil(h.Flavors))
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: marshal flavors")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO hops (key, name, alpha_acid, flavors) VALUES (?, ?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET name = excluded.name, alpha_acid = excluded.alpha_acid, flavors = excluded.flavors`,
			Key(h.Name), h.Name, h.AlphaAcid, string(flavors),
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: import hop %s", h.Name)
		}
		n++
	}
	for _, y := range d.Yeasts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO yeasts (key, name, type, min_temp, max_temp, attenuation, sensitivity) VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET name = excluded.name, type = excluded.type, min_temp = excluded.min_temp,
			 max_temp = excluded.max_temp, attenuation = excluded.attenuation, sensitivity = excluded.sensitivity`,
			Key(y.Name), y.Name, string(y.Type), y.MinTemp, y.MaxTemp, y.Attenuation, y.Sensitivity,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: import yeast %s", y.Name)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit import")
	}
	return n, nil
}

func (s *SQLite) Grain(ctx context.Context, name string) (model.Grain, error) {
	var g model.Grain
	err := s.db.QueryRowContext(ctx,
		`SELECT name, potential, color FROM grains WHERE key = ?`, Key(name),
	).Scan(&g.Name, &g.Potential, &g.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Grain{}, notFound("grain", name)
	}
	if err != nil {
		return model.Grain{}, eris.Wrapf(err, "sqlite: get grain %s", name)
	}
	return g, nil
}

func (s *SQLite) Hop(ctx context.Context, name string) (model.Hop, error) {
	var (
		h       model.Hop
		flavors string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT name, alpha_acid, flavors FROM hops WHERE key = ?`, Key(name),
	).Scan(&h.Name, &h.AlphaAcid, &flavors)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Hop{}, notFound("hop", name)
	}
	if err != nil {
		return model.Hop{}, eris.Wrapf(err, "sqlite: get hop %s", name)
	}
	if err := json.Unmarshal([]byte(flavors), &h.Flavors); err != nil {
		return model.Hop{}, eris.Wrapf(err, "sqlite: unmarshal flavors for %s", name)
	}
	return h, nil
}

func (s *SQLite) Yeast(ctx context.Context, name string) (model.Yeast, error) {
	var (
		y     model.Yeast
		ytype string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT name, type, min_temp, max_temp, attenuation, sensitivity FROM yeasts WHERE key = ?`, Key(name),
	).Scan(&y.Name, &ytype, &y.MinTemp, &y.MaxTemp, &y.Attenuation, &y.Sensitivity)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Yeast{}, notFound("yeast", name)
	}
	if err != nil {
		return model.Yeast{}, eris.Wrapf(err, "sqlite: get yeast %s", name)
	}
	y.Type = model.YeastType(ytype)
	return y, nil
}

func (s *SQLite) List(ctx context.Context) (*Data, error) {
	d := &Data{}

	rows, err := s.db.QueryContext(ctx, `SELECT name, potential, color FROM grains ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list grains")
	}
	d.Grains, err = collectRows(rows, "grains", func(r rowScanner) (model.Grain, error) {
		var g model.Grain
		err := r.Scan(&g.Name, &g.Potential, &g.Color)
		return g, eris.Wrap(err, "sqlite: scan grain")
	})
	if err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT name, alpha_acid, flavors FROM hops ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list hops")
	}
	d.Hops, err = collectRows(rows, "hops", func(r rowScanner) (model.Hop, error) {
		var (
			h       model.Hop
			flavors string
		)
		if err := r.Scan(&h.Name, &h.AlphaAcid, &flavors); err != nil {
			return h, eris.Wrap(err, "sqlite: scan hop")
		}
		err := json.Unmarshal([]byte(flavors), &h.Flavors)
		return h, eris.Wrapf(err, "sqlite: unmarshal flavors for %s", h.Name)
	})
	if err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT name, type, min_temp, max_temp, attenuation, sensitivity FROM yeasts ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list yeasts")
	}
	d.Yeasts, err = collectRows(rows, "yeasts", func(r rowScanner) (model.Yeast, error) {
		var (
			y     model.Yeast
			ytype string
		)
		err := r.Scan(&y.Name, &ytype, &y.MinTemp, &y.MaxTemp, &y.Attenuation, &y.Sensitivity)
		y.Type = model.YeastType(ytype)
		return y, eris.Wrap(err, "sqlite: scan yeast")
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// rowIter is the part of *sql.Rows that collectRows reads.
type rowIter interface {
	rowScanner
	Next() bool
	Err() error
	Close() error
}

type rowScanner interface {
	Scan(dest ...any) error
}

// collectRows scans every row and closes rows. Iteration errors are returned
// wrapped with what.
func collectRows[T any](rows rowIter, what string, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close() //nolint:errcheck

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "sqlite: list %s", what)
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
