package normalize

import "strings"

func Trim(value string) string {
	return strings.TrimSpace(value)
}

// Lower trims and lowercases value. Lookup tables keyed by type name use it
// for their keys.
func Lower(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func EqualFoldTrimmed(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// IsExpression reports whether value is a dynamic expression rather than a
// literal: an ARM template expression ("[...]") or a pipeline expression
// ("@...").
func IsExpression(value string) bool {
	v := strings.TrimSpace(value)
	if strings.HasPrefix(v, "@") {
		return true
	}
	return len(v) >= 2 && v[0] == '[' && v[len(v)-1] == ']' && !strings.HasPrefix(v, "[[")
}
