package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// Upsert describes a keyed bulk write.
type Upsert struct {
	Table   string   // may be schema-qualified, e.g. "brew.grains"
	Columns []string // columns supplied by each row
	Keys    []string // unique constraint columns
}

// BulkUpsert stages rows in a temp table with COPY, then merges them into the
// target with INSERT ... ON CONFLICT DO UPDATE in one transaction. Non-key
// columns are overwritten on conflict.
func BulkUpsert(ctx context.Context, pool Pool, u Upsert, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(u.Columns) == 0 {
		return 0, eris.New("db: upsert: no columns specified")
	}
	if len(u.Keys) == 0 {
		return 0, eris.New("db: upsert: no conflict keys specified")
	}

	keySet := make(map[string]bool, len(u.Keys))
	for _, k := range u.Keys {
		keySet[k] = true
	}
	var sets []string
	for _, c := range u.Columns {
		if keySet[c] {
			continue
		}
		col := pgx.Identifier{c}.Sanitize()
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	onConflict := "DO NOTHING"
	if len(sets) > 0 {
		onConflict = "DO UPDATE SET " + strings.Join(sets, ", ")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: upsert: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	stage := "_stage_" + strings.ReplaceAll(u.Table, ".", "_")
	stageIdent := pgx.Identifier{stage}.Sanitize()

	if _, err := tx.Exec(ctx, fmt.Sprintf(
		"CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP",
		stageIdent, SanitizeTable(u.Table),
	)); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: stage %s", u.Table)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{stage}, u.Columns, pgx.CopyFromRows(rows)); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: copy into stage for %s", u.Table)
	}

	cols := quoteAndJoin(u.Columns)
	tag, err := tx.Exec(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT (%s) %s",
		SanitizeTable(u.Table), cols, cols, stageIdent, quoteAndJoin(u.Keys), onConflict,
	))
	if err != nil {
		return 0, eris.Wrapf(err, "db: upsert: merge into %s", u.Table)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: upsert: commit tx")
	}
	return tag.RowsAffected(), nil
}

// SanitizeTable quotes a table name, splitting an optional schema prefix.
func SanitizeTable(table string) string {
	if schema, name, ok := strings.Cut(table, "."); ok {
		return pgx.Identifier{schema, name}.Sanitize()
	}
	return pgx.Identifier{table}.Sanitize()
}

func quoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
