package ops

import (
	"github.com/google/uuid"

	"github.com/JonMunkholm/basedata/internal/frame"
)

// CleanIDsConfig configures the ID cleaning pipeline. Zero values fall back
// to the package defaults (length 8, [0-9], [^0-9]).
type CleanIDsConfig struct {
	Column         string
	TargetLen      int
	Pattern        string
	StripPattern   string
	FallbackColumn string // fills IDs left blank, if set
	DropBlank      bool   // drops rows whose ID is still blank
}

// CleanIDsReport summarizes a pipeline run.
type CleanIDsReport struct {
	RunID      uuid.UUID
	Column     string
	RowsIn     int
	RowsOut    int
	OffLength  *frame.Counts // values replaced for having the wrong length
	Duplicates *frame.Table  // rows sharing an ID after cleaning
}

// CleanIDs strips non-ID characters from the column, blanks IDs of the wrong
// length, optionally fills and drops blanks, then checks for duplicates. The
// working table holds the cleaned data afterwards.
func (o *Ops) CleanIDs(cfg CleanIDsConfig) (*CleanIDsReport, error) {
	if cfg.TargetLen <= 0 {
		cfg.TargetLen = 8
	}
	if cfg.Pattern == "" {
		cfg.Pattern = DefaultIDPattern
	}
	if cfg.StripPattern == "" {
		cfg.StripPattern = DefaultStripPattern
	}

	for _, c := range []string{cfg.Column, cfg.FallbackColumn} {
		if c == "" {
			continue
		}
		if _, err := o.column(c); err != nil {
			return nil, err
		}
	}

	report := &CleanIDsReport{RunID: uuid.New(), Column: cfg.Column, RowsIn: o.Table().Len()}
	log := o.logger().With("run_id", report.RunID.String())

	if _, err := o.StripNonnumeric(cfg.Column, Pattern(cfg.StripPattern)); err != nil {
		return nil, err
	}
	off, err := o.ReportOffLenIDs(cfg.Column, cfg.TargetLen, true)
	if err != nil {
		return nil, err
	}
	report.OffLength = off
	if _, err := o.RemoveOffLenIDs(cfg.Column, cfg.TargetLen, Pattern(cfg.Pattern)); err != nil {
		return nil, err
	}

	if cfg.FallbackColumn != "" {
		if _, err := o.ReplaceBlankIDs(cfg.Column, cfg.FallbackColumn); err != nil {
			return nil, err
		}
	}
	if cfg.DropBlank {
		if err := o.DropBlankIDRows(cfg.Column); err != nil {
			return nil, err
		}
	}

	dupes, err := o.ReportDupes(cfg.Column)
	if err != nil {
		return nil, err
	}
	report.Duplicates = dupes
	report.RowsOut = o.Table().Len()

	log.Info("cleaned ids",
		"column", cfg.Column,
		"rows_in", report.RowsIn,
		"rows_out", report.RowsOut,
		"off_length", off.Total(),
		"duplicates", dupes.Len(),
	)
	return report, nil
}
