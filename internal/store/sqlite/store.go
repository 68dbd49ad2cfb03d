// Package sqlite stores tables in a SQLite database file using the pure Go
// modernc.org/sqlite driver.
//
// Each table is written to its own SQL table, replacing any previous
// contents. Column types follow the values: INTEGER, REAL, TIMESTAMP or
// TEXT. Bool columns are stored as INTEGER 0/1 and read back as Int.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/JonMunkholm/basedata/internal/frame"
)

// ErrTableNotFound is returned by ReadTable for unknown table names.
var ErrTableNotFound = errors.New("table not found")

// Store is a SQLite database of tables.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path. ":memory:" opens a
// private in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// WriteTable replaces the SQL table name with the contents of t.
func (s *Store) WriteTable(ctx context.Context, name string, t *frame.Table) (retErr error) {
	cols := t.Columns()
	if len(cols) == 0 {
		return fmt.Errorf("write %s: table has no columns", name)
	}

	kinds := make([]frame.Kind, len(cols))
	defs := make([]string, len(cols))
	for i, c := range cols {
		series, err := t.Column(c)
		if err != nil {
			return err
		}
		kinds[i] = frame.CommonKind(series.Values)
		defs[i] = quoteIdent(c) + " " + sqlType(kinds[i])
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	table := quoteIdent(name)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("drop %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, placeholders))
	if err != nil {
		return fmt.Errorf("prepare insert into %s: %w", name, err)
	}
	defer func() { _ = stmt.Close() }()

	args := make([]any, len(cols))
	for pos, row := range t.Records() {
		for i, v := range row {
			args[i] = sqlArg(v, kinds[i])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d into %s: %w", pos, name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}

// ReadTable loads the SQL table name in insertion order.
func (s *Store) ReadTable(ctx context.Context, name string) (*frame.Table, error) {
	ok, err := s.hasTable(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, name)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(name)+" ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	t, err := frame.New(cols...)
	if err != nil {
		return nil, err
	}

	raw := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		values := make([]frame.Value, len(cols))
		for i, r := range raw {
			values[i] = frame.ValueOf(r)
		}
		if err := t.AppendRow(values...); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return t, nil
}

// Tables lists the stored table names in order.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (s *Store) hasTable(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("look up %s: %w", name, err)
	}
	return n > 0, nil
}

func sqlType(k frame.Kind) string {
	switch k {
	case frame.KindInt, frame.KindBool:
		return "INTEGER"
	case frame.KindFloat:
		return "REAL"
	case frame.KindTime:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

func sqlArg(v frame.Value, column frame.Kind) any {
	switch {
	case v.IsMissing():
		return nil
	case column == frame.KindString:
		return v.Text()
	case v.Kind() == frame.KindBool:
		if b, _ := v.BoolValue(); b {
			return int64(1)
		}
		return int64(0)
	default:
		return v.Any()
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
