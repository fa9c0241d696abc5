package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
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
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS invocations (
	id            TEXT PRIMARY KEY,
	flow          TEXT NOT NULL,
	product_id    TEXT NOT NULL DEFAULT '',
	form_type     TEXT NOT NULL DEFAULT '',
	entity_count  INTEGER NOT NULL DEFAULT 0,
	input_tokens  INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	cost_usd      REAL NOT NULL DEFAULT 0,
	duration_ms   INTEGER NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_invocations_flow ON invocations(flow);
CREATE INDEX IF NOT EXISTS idx_invocations_product_id ON invocations(product_id);
CREATE INDEX IF NOT EXISTS idx_invocations_created_at ON invocations(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) RecordInvocation(ctx context.Context, inv *Invocation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invocations (id, flow, product_id, form_type, entity_count, input_tokens, output_tokens, cost_usd, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Flow, inv.ProductID, inv.FormType, inv.EntityCount,
		inv.InputTokens, inv.OutputTokens, inv.CostUSD, inv.DurationMS, inv.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert invocation")
}

func (s *SQLiteStore) ListInvocations(ctx context.Context, filter Filter) ([]Invocation, error) {
	query := `SELECT id, flow, product_id, form_type, entity_count, input_tokens, output_tokens, cost_usd, duration_ms, created_at FROM invocations WHERE 1=1`
	var args []any

	if filter.Flow != "" {
		query += ` AND flow = ?`
		args = append(args, filter.Flow)
	}
	if filter.ProductID != "" {
		query += ` AND product_id = ?`
		args = append(args, filter.ProductID)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list invocations")
	}
	defer rows.Close()

	var out []Invocation
	for rows.Next() {
		var inv Invocation
		if err := rows.Scan(
			&inv.ID, &inv.Flow, &inv.ProductID, &inv.FormType, &inv.EntityCount,
			&inv.InputTokens, &inv.OutputTokens, &inv.CostUSD, &inv.DurationMS, &inv.CreatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan invocation")
		}
		out = append(out, inv)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate invocations")
}
