package ops

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/basedata/internal/frame"
)

var (
	// ErrUnsupportedFormat is returned by FromFile for extensions with no
	// registered reader.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrInvalidSource is returned by FromObject for sources that neither are
	// nor wrap a table.
	ErrInvalidSource = errors.New("invalid source")

	// ErrMissingTarget is returned by ApplyFunction when an in-place
	// application has no target column.
	ErrMissingTarget = errors.New("target column required when inplace is set")

	// ErrColumnNotFound is returned for unknown column names.
	ErrColumnNotFound = frame.ErrColumnNotFound

	// ErrNoSnapshot is returned by Input when the dataset was loaded without
	// keeping its input.
	ErrNoSnapshot = errors.New("input snapshot not retained")

	// ErrDuplicates matches every *DuplicateError.
	ErrDuplicates = errors.New("duplicate keys remain")
)

// DuplicateError reports key values still duplicated after DropDupes.
type DuplicateError struct {
	Column string
	Values []frame.Value
}

func (e *DuplicateError) Error() string {
	vals := make([]string, len(e.Values))
	for i, v := range e.Values {
		vals[i] = v.Text()
	}
	return fmt.Sprintf("duplicate keys still exist in the %q column; inspect DupeRecords(%q) to identify remaining duplicates for values [%s]",
		e.Column, e.Column, strings.Join(vals, ", "))
}

// Is makes errors.Is(err, ErrDuplicates) true.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicates
}
