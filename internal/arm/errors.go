package arm

import (
	"errors"
	"fmt"
)

// FormatError reports a document that is not valid JSON.
type FormatError struct {
	Offset int64
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err == nil {
		return "invalid template: not valid JSON"
	}
	if e.Offset > 0 {
		return fmt.Sprintf("invalid template: not valid JSON at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("invalid template: not valid JSON: %v", e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ErrMissingResources is wrapped by the StructureError returned for
// templates without a top-level "resources" array.
var ErrMissingResources = errors.New(`missing top-level "resources" collection`)

// StructureError reports valid JSON that is not shaped like an ARM template.
type StructureError struct {
	Reason string
	Err    error
}

func (e *StructureError) Error() string {
	if e.Reason == "" && e.Err != nil {
		return "invalid template: " + e.Err.Error()
	}
	return "invalid template: " + e.Reason
}

func (e *StructureError) Unwrap() error { return e.Err }

// IsTemplateError reports whether err is a FormatError or StructureError.
func IsTemplateError(err error) bool {
	var fe *FormatError
	var se *StructureError
	return errors.As(err, &fe) || errors.As(err, &se)
}
