package transform

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedProperties is returned when a definition's "properties" is
// present but not an object.
var ErrMalformedProperties = errors.New(`pipeline "properties" must be an object`)

// MalformedActivitiesError reports an activities slot that is not a list.
type MalformedActivitiesError struct {
	Pipeline string
	Path     string
	Got      string
}

func (e *MalformedActivitiesError) Error() string {
	if e.Pipeline == "" {
		return fmt.Sprintf("malformed activities at %s: expected a list, got %s", e.Path, e.Got)
	}
	return fmt.Sprintf("pipeline %q: malformed activities at %s: expected a list, got %s", e.Pipeline, e.Path, e.Got)
}

// PostconditionError reports global parameter references that survived the
// expression rewrite.
type PostconditionError struct {
	Names []string
}

func (e *PostconditionError) Error() string {
	return "global parameter references remain after rewrite: " + strings.Join(e.Names, ", ")
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "list"
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		return "number"
	}
}
