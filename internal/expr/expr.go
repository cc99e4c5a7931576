// Package expr recognizes global-parameter references inside pipeline
// expression strings.
//
// A reference is the sub-expression pipeline().globalParameters.<identifier>.
// It may appear bare ("@pipeline().globalParameters.x"), inside an
// interpolation ("@{pipeline().globalParameters.x}") or as a function
// argument ("@concat('a', pipeline().globalParameters.x)"). One matcher
// serves all three forms so the captured identifier is always the same.
package expr

import "strings"

const (
	// GlobalParametersPrefix is the accessor that introduces a global parameter.
	GlobalParametersPrefix = "pipeline().globalParameters."
	// LibraryVariablesPrefix is the accessor for Fabric variable library entries.
	LibraryVariablesPrefix = "pipeline().libraryVariables."
)

// Form describes the syntactic context a reference was found in.
type Form int

const (
	FormBare Form = iota
	FormInterpolated
	FormCall
)

func (f Form) String() string {
	switch f {
	case FormInterpolated:
		return "interpolated"
	case FormCall:
		return "call"
	default:
		return "bare"
	}
}

// Match is one global-parameter reference. Start and End delimit the whole
// accessor including the identifier.
type Match struct {
	Name  string
	Start int
	End   int
	Form  Form
}

type frame byte

const (
	frameInterp frame = '{'
	frameParen  frame = '('
)

// Scan returns every global-parameter reference in s in order of appearance.
func Scan(s string) []Match {
	if !strings.Contains(s, GlobalParametersPrefix) {
		return nil
	}

	var (
		out     []Match
		stack   []frame
		inQuote bool
	)
	for i := 0; i < len(s); {
		if strings.HasPrefix(s[i:], GlobalParametersPrefix) {
			start := i
			j := i + len(GlobalParametersPrefix)
			k := j
			for k < len(s) && isIdentByte(s[k]) {
				k++
			}
			if k > j {
				out = append(out, Match{
					Name:  s[j:k],
					Start: start,
					End:   k,
					Form:  formOf(stack),
				})
				i = k
				continue
			}
			i = j
			continue
		}

		ch := s[i]
		switch {
		case ch == '\'':
			// '' inside a literal is an escaped quote and keeps the literal open.
			if inQuote && i+1 < len(s) && s[i+1] == '\'' {
				i += 2
				continue
			}
			inQuote = !inQuote
		case inQuote:
		case ch == '@' && i+1 < len(s) && s[i+1] == '{':
			stack = append(stack, frameInterp)
			i += 2
			continue
		case ch == '(':
			stack = append(stack, frameParen)
		case ch == ')':
			stack = pop(stack, frameParen)
		case ch == '}':
			stack = pop(stack, frameInterp)
		}
		i++
	}
	return out
}

// Names returns the distinct reference names in s, in order of first
// appearance.
func Names(s string) []string {
	matches := Scan(s)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m.Name]; ok {
			continue
		}
		seen[m.Name] = struct{}{}
		out = append(out, m.Name)
	}
	return out
}

// Rewrite replaces each match for which replace returns ok with the returned
// text. Text outside matches is copied unchanged.
func Rewrite(s string, replace func(m Match) (string, bool)) string {
	matches := Scan(s)
	if len(matches) == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, m := range matches {
		repl, ok := replace(m)
		if !ok {
			continue
		}
		b.WriteString(s[last:m.Start])
		b.WriteString(repl)
		last = m.End
	}
	b.WriteString(s[last:])
	return b.String()
}

// LibraryVariableName is the variable-library entry name a global parameter
// is rewritten to.
func LibraryVariableName(library, param string) string {
	return library + "_VariableLibrary_" + param
}

// LibraryVariableRef is the full accessor for a library variable.
func LibraryVariableRef(library, param string) string {
	return LibraryVariablesPrefix + LibraryVariableName(library, param)
}

func formOf(stack []frame) Form {
	form := FormBare
	for _, f := range stack {
		if f == frameParen {
			return FormCall
		}
		if f == frameInterp {
			form = FormInterpolated
		}
	}
	return form
}

func pop(stack []frame, want frame) []frame {
	if n := len(stack); n > 0 && stack[n-1] == want {
		return stack[:n-1]
	}
	return stack
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
