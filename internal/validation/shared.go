package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Error reports request fields that failed validation, keyed by their JSON name.
type Error struct {
	Fields map[string]string
}

// Error lists the failing fields in name order.
func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, field := range names {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(msgs, "; ")
}

// newError returns nil when fields is empty so callers can return it directly.
func newError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &Error{Fields: fields}
}
