// Package postgres writes tables to PostgreSQL with pgx, loading rows through
// the COPY protocol.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/basedata/internal/frame"
)

// PoolConfig sizes the connection pool.
type PoolConfig struct {
	URL      string
	MaxConns int
}

// Store writes tables into one schema of a PostgreSQL database.
type Store struct {
	pool   *pgxpool.Pool
	schema string
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, cfg PoolConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return New(pool), nil
}

// New wraps an existing pool. Tables go to the connection's search path
// unless WithSchema is used.
func New(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

// WithSchema returns a store writing into schema.
func (s *Store) WithSchema(schema string) *Store {
	return &Store{pool: s.pool, schema: schema}
}

// Close closes the pool.
func (s *Store) Close() { s.pool.Close() }

// WriteTable replaces the table name with the contents of t in one
// transaction.
func (s *Store) WriteTable(ctx context.Context, name string, t *frame.Table) error {
	cols := t.Columns()
	if len(cols) == 0 {
		return fmt.Errorf("write %s: table has no columns", name)
	}
	kinds, err := columnKinds(t)
	if err != nil {
		return err
	}

	ident := s.identifier(name)
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident.Sanitize()); err != nil {
		return fmt.Errorf("drop %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx, createTableSQL(ident, cols, kinds)); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}

	rows := copyRows(t.Records(), kinds)
	n, err := tx.CopyFrom(ctx, ident, cols, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", name, err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("copy into %s: wrote %d of %d rows", name, n, len(rows))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}

func (s *Store) identifier(name string) pgx.Identifier {
	if s.schema == "" {
		return pgx.Identifier{name}
	}
	return pgx.Identifier{s.schema, name}
}

func columnKinds(t *frame.Table) ([]frame.Kind, error) {
	cols := t.Columns()
	kinds := make([]frame.Kind, len(cols))
	for i, c := range cols {
		s, err := t.Column(c)
		if err != nil {
			return nil, err
		}
		kinds[i] = frame.CommonKind(s.Values)
	}
	return kinds, nil
}

func createTableSQL(ident pgx.Identifier, cols []string, kinds []frame.Kind) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = pgx.Identifier{c}.Sanitize() + " " + pgType(kinds[i])
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", ident.Sanitize(), strings.Join(defs, ", "))
}

func pgType(k frame.Kind) string {
	switch k {
	case frame.KindInt:
		return "BIGINT"
	case frame.KindFloat:
		return "DOUBLE PRECISION"
	case frame.KindBool:
		return "BOOLEAN"
	case frame.KindTime:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

func copyRows(records [][]frame.Value, kinds []frame.Kind) [][]any {
	rows := make([][]any, len(records))
	for r, rec := range records {
		row := make([]any, len(rec))
		for i, v := range rec {
			row[i] = pgValue(v, kinds[i])
		}
		rows[r] = row
	}
	return rows
}

// pgValue converts v for a column of the given kind. Missing becomes an
// invalid (NULL) value of the column type.
func pgValue(v frame.Value, column frame.Kind) any {
	switch column {
	case frame.KindInt:
		i, ok := v.IntValue()
		return pgtype.Int8{Int64: i, Valid: ok}
	case frame.KindFloat:
		f, ok := v.FloatValue()
		return pgtype.Float8{Float64: f, Valid: ok}
	case frame.KindBool:
		b, ok := v.BoolValue()
		return pgtype.Bool{Bool: b, Valid: ok}
	case frame.KindTime:
		ts, ok := v.TimeValue()
		return pgtype.Timestamptz{Time: ts, Valid: ok}
	default:
		return pgtype.Text{String: v.Field(), Valid: !v.IsMissing()}
	}
}
