package arm

import (
	"regexp"
	"strings"
)

var nonNameChars = regexp.MustCompile(`[^A-Za-z0-9_\-. ]+`)

// ResolveName turns an ARM resource name into a component's logical name.
//
// Literal names are returned unchanged. Template expressions such as
// "[concat(parameters('factoryName'), '/TestPipeline')]" resolve to the part
// of the last string literal after its final "/". A leading "[[" is ARM's
// escape for a literal "[".
func ResolveName(raw string) string {
	name := strings.TrimSpace(raw)
	if strings.HasPrefix(name, "[[") {
		return name[1:]
	}
	if !isExpression(name) {
		return name
	}

	inner := name[1 : len(name)-1]
	literals := stringLiterals(inner)
	for i := len(literals) - 1; i >= 0; i-- {
		lit := literals[i]
		if j := strings.LastIndex(lit, "/"); j >= 0 {
			lit = lit[j+1:]
		}
		if lit = strings.TrimSpace(lit); lit != "" {
			return lit
		}
	}

	// No usable literal: keep whatever identifier text remains so the name
	// carries no expression syntax.
	return strings.Trim(nonNameChars.ReplaceAllString(inner, "_"), "_ ")
}

func isExpression(s string) bool {
	return len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']'
}

// stringLiterals returns the single-quoted literals of an ARM expression in
// order. '' inside a literal is an escaped quote.
func stringLiterals(expr string) []string {
	var (
		out []string
		b   strings.Builder
		in  bool
	)
	for i := 0; i < len(expr); i++ {
		ch := expr[i]
		if ch != '\'' {
			if in {
				b.WriteByte(ch)
			}
			continue
		}
		if in && i+1 < len(expr) && expr[i+1] == '\'' {
			b.WriteByte('\'')
			i++
			continue
		}
		if in {
			out = append(out, b.String())
			b.Reset()
		}
		in = !in
	}
	return out
}
