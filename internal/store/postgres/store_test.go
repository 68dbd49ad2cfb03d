package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/basedata/internal/frame"
	"github.com/JonMunkholm/basedata/internal/ops"
)

var _ ops.TableWriter = (*Store)(nil)

func TestCreateTableSQL(t *testing.T) {
	got := createTableSQL(
		pgx.Identifier{"clean", `dupes "ids"`},
		[]string{"index_id", "id", "amount", "ok", "seen", "note"},
		[]frame.Kind{frame.KindInt, frame.KindString, frame.KindFloat, frame.KindBool, frame.KindTime, frame.KindMissing},
	)
	assert.Equal(t,
		`CREATE TABLE "clean"."dupes ""ids""" ("index_id" BIGINT, "id" TEXT, "amount" DOUBLE PRECISION, "ok" BOOLEAN, "seen" TIMESTAMPTZ, "note" TEXT)`,
		got)
}

func TestPgValue(t *testing.T) {
	ts := time.Date(2010, 10, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		v      frame.Value
		column frame.Kind
		want   any
	}{
		{"int", frame.Int(7), frame.KindInt, pgtype.Int8{Int64: 7, Valid: true}},
		{"null int", frame.Missing(), frame.KindInt, pgtype.Int8{}},
		{"int in float column", frame.Int(3), frame.KindFloat, pgtype.Float8{Float64: 3, Valid: true}},
		{"null float", frame.Missing(), frame.KindFloat, pgtype.Float8{}},
		{"bool", frame.Bool(true), frame.KindBool, pgtype.Bool{Bool: true, Valid: true}},
		{"null bool", frame.Missing(), frame.KindBool, pgtype.Bool{}},
		{"time", frame.Time(ts), frame.KindTime, pgtype.Timestamptz{Time: ts, Valid: true}},
		{"text", frame.String("Acme"), frame.KindString, pgtype.Text{String: "Acme", Valid: true}},
		{"number as text", frame.Float(1.5), frame.KindString, pgtype.Text{String: "1.5", Valid: true}},
		{"null text", frame.Missing(), frame.KindString, pgtype.Text{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pgValue(tt.v, tt.column))
		})
	}
}

func TestCopyRows(t *testing.T) {
	tbl, err := frame.FromRecords([]string{"id", "name"}, [][]frame.Value{
		{frame.Int(1), frame.String("Acme")},
		{frame.Int(2), frame.Missing()},
	})
	require.NoError(t, err)

	kinds, err := columnKinds(tbl)
	require.NoError(t, err)
	assert.Equal(t, []frame.Kind{frame.KindInt, frame.KindString}, kinds)

	assert.Equal(t, [][]any{
		{pgtype.Int8{Int64: 1, Valid: true}, pgtype.Text{String: "Acme", Valid: true}},
		{pgtype.Int8{Int64: 2, Valid: true}, pgtype.Text{}},
	}, copyRows(tbl.Records(), kinds))
}

func TestIdentifier(t *testing.T) {
	s := &Store{}
	assert.Equal(t, pgx.Identifier{"dupes"}, s.identifier("dupes"))
	assert.Equal(t, pgx.Identifier{"clean", "dupes"}, s.WithSchema("clean").identifier("dupes"))
}

func TestOpenInvalidURL(t *testing.T) {
	_, err := Open(context.Background(), PoolConfig{URL: "postgres://%zz"})
	assert.Error(t, err)
}

// TestWriteTable runs against a real database when BASEDATA_TEST_DATABASE_URL
// is set.
func TestWriteTable(t *testing.T) {
	url := os.Getenv("BASEDATA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("BASEDATA_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	s, err := Open(ctx, PoolConfig{URL: url, MaxConns: 2})
	require.NoError(t, err)
	defer s.Close()

	tbl, err := frame.FromRecords([]string{"id", "name"}, [][]frame.Value{
		{frame.Int(12345678), frame.String("Acme")},
		{frame.Int(87654321), frame.Missing()},
	})
	require.NoError(t, err)
	require.NoError(t, s.WriteTable(ctx, "basedata_test_accounts", tbl))
	defer s.pool.Exec(ctx, `DROP TABLE IF EXISTS "basedata_test_accounts"`)

	var n int
	require.NoError(t, s.pool.QueryRow(ctx, `SELECT count(*) FROM "basedata_test_accounts" WHERE name IS NULL`).Scan(&n))
	assert.Equal(t, 1, n)
}
