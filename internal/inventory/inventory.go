// Package inventory lists the data files stored in the immediate
// subdirectories of a root directory.
//
// Names starting with a dot are skipped, like a shell glob would. Listings
// are sorted by name within each extension, and extensions are visited in
// the order given.
package inventory

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/JonMunkholm/basedata/internal/frame"
	"github.com/JonMunkholm/basedata/internal/metrics"
)

// readDir is os.ReadDir; tests replace it to simulate unreadable directories.
var readDir = os.ReadDir

// DefaultExtensions are the data file extensions always listed.
var DefaultExtensions = []string{".csv", ".xls", ".xlsx", ".sqlite3"}

// Default column names of the inventory table.
const (
	DirectoryColumn = "directory"
	FilenameColumn  = "filename"
)

// ListSubdirPaths returns the paths of the immediate subdirectories of dir.
func ListSubdirPaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list subdirectories of %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if hidden(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if isDir(e, path) {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// ListSubdirs returns the base names of the immediate subdirectories of dir.
func ListSubdirs(dir string) ([]string, error) {
	paths, err := ListSubdirPaths(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names, nil
}

// ListFilesWithExtensions returns the base names of the files in dir ending
// in one of exts, grouped by extension in the order given. Repeated
// extensions are listed once.
func ListFilesWithExtensions(dir string, exts []string) ([]string, error) {
	entries, err := readDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list files of %s: %w", dir, err)
	}

	var names []string
	seen := make(map[string]bool, len(exts))
	for _, ext := range exts {
		if ext == "" || seen[ext] {
			continue
		}
		seen[ext] = true
		for _, e := range entries {
			name := e.Name()
			if hidden(name) || !strings.HasSuffix(name, ext) {
				continue
			}
			if isDir(e, filepath.Join(dir, name)) {
				continue
			}
			names = append(names, name)
		}
	}
	return names, nil
}

// ListDatafiles lists the files in dir with a default or extra extension.
func ListDatafiles(dir string, extra []string) ([]string, error) {
	return ListFilesWithExtensions(dir, extensions(extra))
}

// MakeDatafileRows pairs the base name of dir with every data file in it.
func MakeDatafileRows(dir string, extra []string) ([][2]string, error) {
	dir = strings.TrimRight(dir, `/\`)
	files, err := ListDatafiles(dir, extra)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(dir)
	rows := make([][2]string, len(files))
	for i, f := range files {
		rows[i] = [2]string{name, f}
	}
	return rows, nil
}

// Option configures MakeDatafileTable.
type Option func(*options)

type options struct {
	dirColumn  string
	fileColumn string
	extra      []string
	toFile     string
	metrics    *metrics.Metrics
	log        *slog.Logger
}

// Columns names the directory and filename columns.
func Columns(dir, file string) Option {
	return func(o *options) {
		o.dirColumn = dir
		o.fileColumn = file
	}
}

// AddExtensions lists files with these extensions as well as the defaults.
func AddExtensions(exts ...string) Option {
	return func(o *options) { o.extra = append(o.extra, exts...) }
}

// ToFile also writes the table to path as CSV, without the index.
func ToFile(path string) Option {
	return func(o *options) { o.toFile = path }
}

// WithMetrics counts the listed files.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithLogger sets the logger for scan entries (default slog.Default).
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// MakeDatafileTable builds a (directory, filename) table of the data files in
// every immediate subdirectory of root. A root without subdirectories yields
// an empty table. A subdirectory that cannot be read is logged at Warn and
// left out; only an unreadable root is an error.
func MakeDatafileTable(root string, opts ...Option) (*frame.Table, error) {
	o := options{dirColumn: DirectoryColumn, fileColumn: FilenameColumn}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = slog.Default()
	}

	t, err := frame.New(o.dirColumn, o.fileColumn)
	if err != nil {
		return nil, err
	}

	subdirs, err := ListSubdirPaths(root)
	if err != nil {
		return nil, err
	}
	skipped := 0
	for _, sub := range subdirs {
		rows, err := MakeDatafileRows(sub, o.extra)
		if err != nil {
			o.log.Warn("skipping unreadable directory", "dir", sub, "error", err)
			skipped++
			continue
		}
		for _, r := range rows {
			if err := t.AppendRow(frame.String(r[0]), frame.String(r[1])); err != nil {
				return nil, err
			}
		}
	}

	o.metrics.InventoryFiles(t.Len())
	o.log.Debug("inventory scanned", "root", root, "subdirs", len(subdirs), "skipped", skipped, "files", t.Len())

	if o.toFile != "" {
		if err := frame.WriteCSVFile(o.toFile, t); err != nil {
			return nil, fmt.Errorf("write inventory: %w", err)
		}
	}
	return t, nil
}

func extensions(extra []string) []string {
	return slices.Concat(DefaultExtensions, extra)
}

func hidden(name string) bool { return strings.HasPrefix(name, ".") }

// isDir follows symlinks, as a glob would.
func isDir(e os.DirEntry, path string) bool {
	if e.Type()&os.ModeSymlink == 0 {
		return e.IsDir()
	}
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
