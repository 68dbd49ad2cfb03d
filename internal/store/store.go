// Package store fans duplicate reports out to the configured sinks. The
// sinks themselves live in the sqlite, postgres and s3 subpackages.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/basedata/internal/frame"
	"github.com/JonMunkholm/basedata/internal/ops"
)

// Named is a sink with a name for error messages and logs.
type Named struct {
	Name   string
	Writer ops.TableWriter
}

// Fanout writes every table to all of its sinks. A failing sink does not stop
// the others; their errors are joined.
type Fanout []Named

// WriteTable implements ops.TableWriter.
func (f Fanout) WriteTable(ctx context.Context, name string, t *frame.Table) error {
	var errs []error
	for _, s := range f {
		if err := s.Writer.WriteTable(ctx, name, t); err != nil {
			errs = append(errs, fmt.Errorf("%s sink: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Names returns the sink names in order.
func (f Fanout) Names() []string {
	names := make([]string, len(f))
	for i, s := range f {
		names[i] = s.Name
	}
	return names
}
