package xmanager

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// ErrNotSerializable indicates a field value outside the JSON data model
	ErrNotSerializable = errors.New("value is not JSON-serializable")
)

// SerializationError reports a field whose value cannot be represented in
// the JSON data model
type SerializationError struct {
	Field string
	Type  string
}

func (e *SerializationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("field %q holds type %s which is not JSON-serializable", e.Field, e.Type)
	}
	return fmt.Sprintf("type %s is not JSON-serializable", e.Type)
}

// Is returns true if the target error is ErrNotSerializable
func (e *SerializationError) Is(target error) bool {
	return target == ErrNotSerializable
}

// NewSerializationError creates a new SerializationError
func NewSerializationError(field string, typeName string) *SerializationError {
	return &SerializationError{Field: field, Type: typeName}
}
