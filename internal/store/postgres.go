package store

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}

	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS invocations (
	id            TEXT PRIMARY KEY,
	flow          TEXT NOT NULL,
	product_id    TEXT NOT NULL DEFAULT '',
	form_type     TEXT NOT NULL DEFAULT '',
	entity_count  INTEGER NOT NULL DEFAULT 0,
	input_tokens  INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	cost_usd      DOUBLE PRECISION NOT NULL DEFAULT 0,
	duration_ms   BIGINT NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_invocations_flow ON invocations(flow);
CREATE INDEX IF NOT EXISTS idx_invocations_product_id ON invocations(product_id);
CREATE INDEX IF NOT EXISTS idx_invocations_created_at ON invocations(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) RecordInvocation(ctx context.Context, inv *Invocation) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO invocations (id, flow, product_id, form_type, entity_count, input_tokens, output_tokens, cost_usd, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		inv.ID, inv.Flow, inv.ProductID, inv.FormType, inv.EntityCount,
		inv.InputTokens, inv.OutputTokens, inv.CostUSD, inv.DurationMS, inv.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert invocation")
}

func (s *PostgresStore) ListInvocations(ctx context.Context, filter Filter) ([]Invocation, error) {
	query := `SELECT id, flow, product_id, form_type, entity_count, input_tokens, output_tokens, cost_usd, duration_ms, created_at FROM invocations WHERE 1=1`
	var args []any

	if filter.Flow != "" {
		args = append(args, filter.Flow)
		query += ` AND flow = $1`
	}
	if filter.ProductID != "" {
		args = append(args, filter.ProductID)
		query += ` AND product_id = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list invocations")
	}
	defer rows.Close()

	var out []Invocation
	for rows.Next() {
		var inv Invocation
		if err := rows.Scan(
			&inv.ID, &inv.Flow, &inv.ProductID, &inv.FormType, &inv.EntityCount,
			&inv.InputTokens, &inv.OutputTokens, &inv.CostUSD, &inv.DurationMS, &inv.CreatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan invocation")
		}
		out = append(out, inv)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate invocations")
}
