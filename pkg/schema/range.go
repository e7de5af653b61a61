package schema

import "fmt"

// Range is a half-open interval [Start, End) of row ids.
type Range struct {
	Start int64
	End   int64
}

// NewRange creates a range. If end precedes start the range is empty and anchored at start.
func NewRange(start, end int64) Range {
	if end < start {
		end = start
	}
	return Range{Start: start, End: end}
}

// Len returns the number of ids in the range.
func (r Range) Len() int64 { return r.End - r.Start }

// IsEmpty returns true if the range contains no ids.
func (r Range) IsEmpty() bool { return r.End <= r.Start }

// Contains checks whether an id falls into the range.
func (r Range) Contains(id int64) bool { return id >= r.Start && id < r.End }

// Intersect returns the overlap of two ranges. Disjoint ranges yield an empty range anchored at
// the larger start.
func (r Range) Intersect(other Range) Range {
	return NewRange(max(r.Start, other.Start), min(r.End, other.End))
}

func (r Range) String() string { return fmt.Sprintf("[%d,%d)", r.Start, r.End) }
