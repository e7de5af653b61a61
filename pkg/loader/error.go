package loader

import (
	"fmt"
)

type ErrInvalidSpec = error

func NewInvalidSpecError(kind, name, reason string) ErrInvalidSpec {
	return fmt.Errorf("invalid %s spec %q: %s", kind, name, reason)
}

type ErrDefinition = error

func NewDefinitionError(column string, err error) ErrDefinition {
	return fmt.Errorf("failed to define column %q: %w", column, err)
}

type ErrValue = error

func NewValueError(column string, value any, err error) ErrValue {
	return fmt.Errorf("invalid value %v for column %q: %w", value, column, err)
}
