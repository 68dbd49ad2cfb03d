package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/basedata/internal/frame"
	"github.com/JonMunkholm/basedata/internal/inventory"
	"github.com/JonMunkholm/basedata/internal/logging"
	"github.com/JonMunkholm/basedata/internal/ops"
)

// handleHealth answers liveness checks. It touches no dependencies.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// inventoryResponse is the JSON form of an inventory table.
type inventoryResponse struct {
	Root    string              `json:"root"`
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

// scanInventory lists the configured root. The scan is repeated per request
// so the result always reflects the disk, and its log entries carry the
// request id.
func (s *Server) scanInventory(r *http.Request) (*frame.Table, error) {
	cfg := s.deps.Config.Inventory
	return inventory.MakeDatafileTable(cfg.Root,
		inventory.Columns(cfg.Columns[0], cfg.Columns[1]),
		inventory.AddExtensions(cfg.ExtraExtensions...),
		inventory.WithMetrics(s.deps.Metrics),
		inventory.WithLogger(logging.FromContext(r.Context())),
	)
}

// handleInventory returns the inventory as JSON, one object per file keyed by
// the configured column names.
func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	t, err := s.scanInventory(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	cols := t.Columns()
	resp := inventoryResponse{
		Root:    s.deps.Config.Inventory.Root,
		Columns: cols,
		Rows:    make([]map[string]string, 0, t.Len()),
	}
	// Field renders missing values as "" rather than "nan"
	for pos := range t.Len() {
		row := t.Row(pos)
		out := make(map[string]string, len(cols))
		for _, c := range cols {
			out[c] = row[c].Field()
		}
		resp.Rows = append(resp.Rows, out)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// handleInventoryPage renders the inventory as an HTML table.
func (s *Server) handleInventoryPage(w http.ResponseWriter, r *http.Request) {
	t, err := s.scanInventory(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// Headers are sent once rendering starts, so a failure can only be logged.
	if err := inventoryPage(s.deps.Config.Inventory.Root, t).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render inventory", "error", err)
	}
}

// valueCount is one entry of a value count, most frequent first.
type valueCount struct {
	Value any `json:"value"`
	Count int `json:"count"`
}

// duplicateRow is a row of the duplicate report with its input row label.
type duplicateRow struct {
	Index int            `json:"index"`
	Row   map[string]any `json:"row"`
}

// cleanResponse reports an ID cleaning run.
type cleanResponse struct {
	RunID      string         `json:"run_id"`
	Column     string         `json:"column"`
	RowsIn     int            `json:"rows_in"`
	RowsOut    int            `json:"rows_out"`
	OffLength  []valueCount   `json:"off_length"`
	Duplicates []duplicateRow `json:"duplicates"`
	Exported   string         `json:"exported,omitempty"`
	CSV        string         `json:"csv"`
}

// handleClean runs the ID cleaning pipeline over a CSV request body.
//
// Query parameters: column (required), len, fallback, drop_blank and export,
// which names the table the duplicate rows are written to in the configured
// sink.
func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	// Parameters not given fall back to the configured ID rules
	q := r.URL.Query()
	cfg := ops.CleanIDsConfig{
		Column:         q.Get("column"),
		TargetLen:      s.deps.Config.IDs.TargetLen,
		Pattern:        s.deps.Config.IDs.Pattern,
		StripPattern:   s.deps.Config.IDs.StripPattern,
		FallbackColumn: q.Get("fallback"),
	}
	if cfg.Column == "" {
		s.respondError(w, r, fmt.Errorf("%w: column parameter is required", errBadRequest))
		return
	}
	if v := q.Get("len"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.respondError(w, r, fmt.Errorf("%w: len must be a positive integer", errBadRequest))
			return
		}
		cfg.TargetLen = n
	}
	if v := q.Get("drop_blank"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.respondError(w, r, fmt.Errorf("%w: drop_blank must be a boolean", errBadRequest))
			return
		}
		cfg.DropBlank = b
	}
	// Reject an export the server cannot honour before reading the body
	export := q.Get("export")
	if export != "" && s.deps.Sink == nil {
		s.respondError(w, r, fmt.Errorf("%w: export requested but no sink is configured", errBadRequest))
		return
	}

	// Raw strings keep IDs such as 00123456 intact; an oversized body
	// surfaces as *http.MaxBytesError and maps to 413.
	body := http.MaxBytesReader(w, r.Body, s.deps.Config.Server.MaxBody)
	t, err := frame.ReadCSV(body, frame.WithRawStrings())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	// Operation log entries carry the request id
	d := ops.NewDataset(t, false)
	d.SetLogger(logging.FromContext(r.Context()))
	d.SetMetrics(s.deps.Metrics)
	o := ops.NewOps(d)

	report, err := o.CleanIDs(cfg)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if export != "" {
		if err := o.ExportDupes(r.Context(), cfg.Column, s.deps.Sink, export); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	var out bytes.Buffer
	if err := frame.WriteCSV(&out, o.Table()); err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, cleanResponse{
		RunID:      report.RunID.String(),
		Column:     report.Column,
		RowsIn:     report.RowsIn,
		RowsOut:    report.RowsOut,
		OffLength:  countsJSON(report.OffLength),
		Duplicates: rowsJSON(report.Duplicates),
		Exported:   export,
		CSV:        out.String(),
	})
}

// countsJSON converts a value count, keeping its order.
func countsJSON(c *frame.Counts) []valueCount {
	out := make([]valueCount, 0, c.Len())
	for _, e := range c.Entries() {
		out = append(out, valueCount{Value: e.Value.Any(), Count: e.N})
	}
	return out
}

// rowsJSON converts the rows of t, pairing each with its index label.
func rowsJSON(t *frame.Table) []duplicateRow {
	labels := t.Index()
	out := make([]duplicateRow, 0, t.Len())
	for pos, label := range labels {
		row := make(map[string]any)
		for c, v := range t.Row(pos) {
			row[c] = v.Any()
		}
		out = append(out, duplicateRow{Index: label, Row: row})
	}
	return out
}
