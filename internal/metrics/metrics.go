// Package metrics holds the Prometheus collectors for cleaning operations.
//
// A nil *Metrics is valid and records nothing, so callers that do not expose
// metrics can pass nil everywhere.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "basedata"

// Metrics records cleaning activity.
type Metrics struct {
	fallbacks      *prometheus.CounterVec   // by operation
	rowsDropped    *prometheus.CounterVec   // by operation
	duplicateRows  *prometheus.GaugeVec     // by column, as of the last check
	inventoryFiles prometheus.Counter       // data files listed
	opDuration     *prometheus.HistogramVec // by operation
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ops",
			Name:      "fallback_values_total",
			Help:      "Values replaced by a fallback during cleaning",
		}, []string{"operation"}),

		rowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ops",
			Name:      "rows_dropped_total",
			Help:      "Rows removed from working tables",
		}, []string{"operation"}),

		duplicateRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ops",
			Name:      "duplicate_rows",
			Help:      "Rows sharing a key value at the last duplicate check",
		}, []string{"column"}),

		inventoryFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "files_listed_total",
			Help:      "Data files found by inventory scans",
		}),

		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ops",
			Name:      "operation_duration_seconds",
			Help:      "Duration of column operations",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
		}, []string{"operation"}),
	}

	for _, c := range []prometheus.Collector{
		m.fallbacks, m.rowsDropped, m.duplicateRows, m.inventoryFiles, m.opDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// NewRegistry returns a registry carrying the Go runtime and process
// collectors together with a fresh Metrics.
func NewRegistry() (*prometheus.Registry, *Metrics, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := New(reg)
	if err != nil {
		return nil, nil, err
	}
	return reg, m, nil
}

// Fallbacks records n values replaced by a fallback.
func (m *Metrics) Fallbacks(operation string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.fallbacks.WithLabelValues(operation).Add(float64(n))
}

// RowsDropped records n rows removed by operation.
func (m *Metrics) RowsDropped(operation string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.rowsDropped.WithLabelValues(operation).Add(float64(n))
}

// DuplicateRows sets the duplicate row count found for column.
func (m *Metrics) DuplicateRows(column string, n int) {
	if m == nil {
		return
	}
	m.duplicateRows.WithLabelValues(column).Set(float64(n))
}

// InventoryFiles records n files listed by an inventory scan.
func (m *Metrics) InventoryFiles(n int) {
	if m == nil || n == 0 {
		return
	}
	m.inventoryFiles.Add(float64(n))
}

// ObserveOperation records how long operation took since start.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.opDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
