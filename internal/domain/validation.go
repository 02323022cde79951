package domain

import (
	"fmt"
	"strings"
)

// FieldError is a single validation failure tied to an input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every validation failure found in one pass, so
// callers see the complete list instead of fixing problems one at a time.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a failure for a field.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

// Addf appends a formatted failure for a field.
func (v *ValidationErrors) Addf(field, format string, args ...any) {
	v.Add(field, fmt.Sprintf(format, args...))
}

// HasErrors reports whether any failure was recorded.
func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

// Fields returns the failures as a field -> message map. Repeated failures on
// the same field are joined.
func (v ValidationErrors) Fields() map[string]string {
	if len(v) == 0 {
		return nil
	}
	fields := make(map[string]string, len(v))
	for _, fe := range v {
		if existing, ok := fields[fe.Field]; ok {
			fields[fe.Field] = existing + "; " + fe.Message
			continue
		}
		fields[fe.Field] = fe.Message
	}
	return fields
}

// ErrOrNil returns the collection as an error, or nil when empty.
func (v ValidationErrors) ErrOrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
