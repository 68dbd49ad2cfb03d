package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/basedata/internal/config"
	"github.com/JonMunkholm/basedata/internal/frame"
	"github.com/JonMunkholm/basedata/internal/inventory"
	"github.com/JonMunkholm/basedata/internal/metrics"
	"github.com/JonMunkholm/basedata/internal/ops"
	"github.com/JonMunkholm/basedata/internal/store"
	"github.com/JonMunkholm/basedata/internal/store/postgres"
	s3store "github.com/JonMunkholm/basedata/internal/store/s3"
	"github.com/JonMunkholm/basedata/internal/store/sqlite"
	"github.com/JonMunkholm/basedata/internal/web"
)

const usage = `usage:
  basedata inventory [-out file.csv] [-ext .txt,.parquet] [root]
  basedata clean -column id [-len 8] [-fallback col] [-drop-blank] [-dupes report.csv] [-export name] [-out-delim ;] <in> <out>
  basedata serve`

var errUsage = errors.New("usage")

// run dispatches args to a subcommand.
func run(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "inventory":
		return runInventory(cfg, args[1:], stdout)
	case "clean":
		return runClean(ctx, cfg, args[1:], stdout)
	case "serve":
		return runServe(ctx, cfg)
	default:
		return errUsage
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseDelimiter accepts a single character; "\t" and "tab" mean a tab.
func parseDelimiter(s string) (rune, error) {
	switch s {
	case `\t`, "tab":
		return '\t', nil
	}
	r := []rune(s)
	if len(r) != 1 || r[0] == '"' || r[0] == '\r' || r[0] == '\n' || r[0] == utf8.RuneError {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r[0], nil
}

func runInventory(cfg *config.Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("inventory")
	out := fs.String("out", "", "write the inventory to this CSV file instead of stdout")
	ext := fs.String("ext", "", "comma-separated extra extensions to list")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	root := cfg.Inventory.Root
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}

	opts := []inventory.Option{
		inventory.Columns(cfg.Inventory.Columns[0], cfg.Inventory.Columns[1]),
		inventory.AddExtensions(cfg.Inventory.ExtraExtensions...),
		inventory.AddExtensions(splitList(*ext)...),
	}
	if *out != "" {
		opts = append(opts, inventory.ToFile(*out))
	}

	t, err := inventory.MakeDatafileTable(root, opts...)
	if err != nil {
		return err
	}
	if *out != "" {
		slog.Info("inventory written", "root", root, "files", t.Len(), "path", *out)
		return nil
	}
	_, err = io.WriteString(stdout, frame.Format(t))
	return err
}

func runClean(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("clean")
	column := fs.String("column", "", "ID column to clean (required)")
	targetLen := fs.Int("len", cfg.IDs.TargetLen, "expected ID length")
	fallback := fs.String("fallback", "", "column whose values fill blank IDs")
	dropBlank := fs.Bool("drop-blank", false, "drop rows whose ID is blank after cleaning")
	dupes := fs.String("dupes", "", "write the duplicate report to this CSV file")
	export := fs.String("export", "", "export the duplicate report under this table name to the configured sinks")
	outDelim := fs.String("out-delim", ",", "field delimiter of the cleaned output")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *column == "" || fs.NArg() != 2 {
		return errUsage
	}
	delim, err := parseDelimiter(*outDelim)
	if err != nil {
		return fmt.Errorf("%w: -out-delim: %v", errUsage, err)
	}
	in, out := fs.Arg(0), fs.Arg(1)

	var sinks store.Fanout
	if *export != "" {
		var closeSinks func()
		var err error
		sinks, closeSinks, err = openSinks(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeSinks()
		if len(sinks) == 0 {
			return errors.New("export requested but no sink is configured (set SQLITE_PATH, DATABASE_URL or S3_BUCKET)")
		}
	}

	o, err := ops.OpsFromFile(in, false, frame.WithRawStrings())
	if err != nil {
		return err
	}

	report, err := o.CleanIDs(ops.CleanIDsConfig{
		Column:         *column,
		TargetLen:      *targetLen,
		Pattern:        cfg.IDs.Pattern,
		StripPattern:   cfg.IDs.StripPattern,
		FallbackColumn: *fallback,
		DropBlank:      *dropBlank,
	})
	if err != nil {
		return err
	}

	if *dupes != "" {
		if _, err := o.ReportDupes(*column, ops.ToFile(*dupes)); err != nil {
			return err
		}
	}
	if *export != "" {
		if err := o.ExportDupes(ctx, *column, sinks, *export); err != nil {
			return err
		}
	}
	if err := o.ToFile(out, frame.WithOutputDelimiter(delim)); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s: %d rows in, %d rows out, %d off-length values, %d duplicate rows\n",
		report.Column, report.RowsIn, report.RowsOut, report.OffLength.Total(), report.Duplicates.Len())
	if report.OffLength.Len() > 0 {
		fmt.Fprint(stdout, frame.Format(report.OffLength.Table(*column)))
	}
	return nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	reg, m, err := metrics.NewRegistry()
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	sinks, closeSinks, err := openSinks(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSinks()

	deps := web.Deps{Config: cfg, Gatherer: reg, Metrics: m}
	if len(sinks) > 0 {
		deps.Sink = sinks
		slog.Info("duplicate export enabled", "sinks", sinks.Names())
	}
	srv := web.NewServer(deps)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// openSinks opens every configured report sink. The returned func closes
// them in reverse order.
func openSinks(ctx context.Context, cfg *config.Config) (store.Fanout, func(), error) {
	var (
		sinks   store.Fanout
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.HasSQLite() {
		s, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		slog.Info("sqlite sink opened", "path", s.Path())
		sinks = append(sinks, store.Named{Name: "sqlite", Writer: s})
		closers = append(closers, func() {
			if err := s.Close(); err != nil {
				slog.Warn("close sqlite", "error", err)
			}
		})
	}

	if cfg.HasDatabase() {
		pg, err := postgres.Open(ctx, postgres.PoolConfig{URL: cfg.Database.URL, MaxConns: cfg.Database.MaxConns})
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, store.Named{Name: "postgres", Writer: pg})
		closers = append(closers, pg.Close)
	}

	if cfg.HasS3() {
		s, err := s3store.New(ctx, s3store.Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			Prefix:    cfg.S3.Prefix,
			PathStyle: cfg.S3.PathStyle,
		})
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, store.Named{Name: "s3", Writer: s})
	}

	return sinks, closeAll, nil
}
