package frame

import "sort"

// Count is one entry of a frequency count.
type Count struct {
	Value Value
	N     int
}

// Counts is a frequency count of values, ordered by count descending with
// ties in first-seen order.
type Counts struct {
	entries []Count
	pos     map[Value]int
}

// CountValues counts the occurrences of each value. When dropMissing is set,
// Missing values are not counted.
func CountValues(values []Value, dropMissing bool) *Counts {
	c := &Counts{pos: make(map[Value]int)}
	for _, v := range values {
		if dropMissing && v.IsMissing() {
			continue
		}
		if i, ok := c.pos[v]; ok {
			c.entries[i].N++
			continue
		}
		c.pos[v] = len(c.entries)
		c.entries = append(c.entries, Count{Value: v, N: 1})
	}
	sort.SliceStable(c.entries, func(i, j int) bool {
		return c.entries[i].N > c.entries[j].N
	})
	for i, e := range c.entries {
		c.pos[e.Value] = i
	}
	return c
}

// Entries returns the counts in order.
func (c *Counts) Entries() []Count { return append([]Count(nil), c.entries...) }

// Len returns the number of distinct values.
func (c *Counts) Len() int { return len(c.entries) }

// Get returns the count for v (0 when absent).
func (c *Counts) Get(v Value) int {
	if i, ok := c.pos[v]; ok {
		return c.entries[i].N
	}
	return 0
}

// Values returns the distinct values in order.
func (c *Counts) Values() []Value {
	out := make([]Value, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Value
	}
	return out
}

// Total returns the sum of all counts.
func (c *Counts) Total() int {
	total := 0
	for _, e := range c.entries {
		total += e.N
	}
	return total
}

// Table renders the counts as a two-column table (value, count).
func (c *Counts) Table(valueColumn string) *Table {
	t, _ := New(valueColumn, "count")
	for _, e := range c.entries {
		_ = t.AppendRow(e.Value, Int(int64(e.N)))
	}
	return t
}
