package ops

import "github.com/JonMunkholm/basedata/internal/frame"

// Ops combines a Dataset with every operation set. All sets share the same
// Dataset, so operations can be mixed freely in any order.
type Ops struct {
	*Dataset
	ColumnOps
	IDOps
	DedupeOps
}

// NewOps returns the operations facade for d.
func NewOps(d *Dataset) *Ops {
	return &Ops{
		Dataset:   d,
		ColumnOps: NewColumnOps(d),
		IDOps:     NewIDOps(d),
		DedupeOps: NewDedupeOps(d),
	}
}

// OpsFromFile loads path with FromFile and wraps it.
func OpsFromFile(path string, keepInput bool, opts ...frame.ReadOption) (*Ops, error) {
	d, err := FromFile(path, keepInput, opts...)
	if err != nil {
		return nil, err
	}
	return NewOps(d), nil
}

// OpsFromObject copies source with FromObject and wraps it.
func OpsFromObject(source any, keepInput bool) (*Ops, error) {
	d, err := FromObject(source, keepInput)
	if err != nil {
		return nil, err
	}
	return NewOps(d), nil
}
