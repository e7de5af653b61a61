package schema

import (
	"context"
	"fmt"
)

// DepState tells whether the dependencies of an element are known.
type DepState int

const (
	// DepsReady means the returned dependency list is complete (possibly empty).
	DepsReady DepState = iota
	// DepsUnconfigured means the element is not configured enough to report dependencies and
	// cannot be scheduled yet. This is not the same as having no dependencies.
	DepsUnconfigured
)

func (s DepState) String() string {
	if s == DepsUnconfigured {
		return "unconfigured"
	}
	return "ready"
}

// Element is a schedulable schema element: either a *Table or a *Column.
type Element interface {
	// Name returns the name of the element.
	Name() string
	// Dependencies returns the elements that must be evaluated before this one.
	Dependencies() ([]Element, DepState)
	// Errors returns the errors recorded by the last evaluation.
	Errors() []*Error
	fmt.Stringer

	evaluate(ctx context.Context)
	label() string
}

var (
	_ Element = &Table{}
	_ Element = &Column{}
)

func containsElement(list []Element, e Element) bool {
	for _, x := range list {
		if x == e {
			return true
		}
	}
	return false
}
