// Package filter compiles the entry filter of a run into a single matcher.
package filter

import (
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/pkg/errors"
)

// ErrInvalidPattern is returned when a regex filter does not compile.
var ErrInvalidPattern = errors.New("invalid filter pattern")

// Mode selects how a filter pattern is interpreted.
type Mode int

const (
	None Mode = iota
	Simple
	Regex
)

func (m Mode) String() string {
	switch m {
	case Simple:
		return "simple"
	case Regex:
		return "regex"
	}
	return "none"
}

// Filter decides whether an entry path is selected. Implementations are
// read-only after Compile and may be shared freely.
type Filter interface {
	Match(path string) bool
}

// Compile builds the matcher for mode and pattern.
//
// Simple patterns are literal, case-insensitive substrings: wildcard
// characters in the pattern are escaped before it is wrapped in "*...*".
// Regex patterns use .NET syntax in single-line mode and are case-sensitive.
func Compile(mode Mode, pattern string) (Filter, error) {
	switch mode {
	case Simple:
		expr := wildcardToRegex("*" + EscapeWildcard(pattern) + "*")
		re, err := regexp2.Compile(expr, regexp2.IgnoreCase|regexp2.Singleline)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidPattern, "wildcard %q: %v", pattern, err)
		}
		return &matcher{re: re}, nil
	case Regex:
		re, err := regexp2.Compile(pattern, regexp2.Singleline)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidPattern, "regex %q: %v", pattern, err)
		}
		return &matcher{re: re}, nil
	}
	return all{}, nil
}

type all struct{}

func (all) Match(string) bool { return true }

type matcher struct {
	re *regexp2.Regexp
}

func (m *matcher) Match(path string) bool {
	ok, err := m.re.MatchString(path)
	return err == nil && ok
}

const wildcardEscape = '`'

// EscapeWildcard escapes the wildcard metacharacters in s so that it only
// matches itself.
func EscapeWildcard(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', wildcardEscape:
			sb.WriteRune(wildcardEscape)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// wildcardToRegex translates an escaped wildcard pattern into an anchored
// regular expression: '*' matches any run and '`' makes the next character
// literal. EscapeWildcard output only leaves the outer stars unescaped.
func wildcardToRegex(p string) string {
	var sb strings.Builder
	sb.WriteString("^")
	runes := []rune(p)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == wildcardEscape && i+1 < len(runes):
			i++
			sb.WriteString(regexp2.Escape(string(runes[i])))
		case r == '*':
			sb.WriteString(".*")
		default:
			sb.WriteString(regexp2.Escape(string(r)))
		}
	}
	sb.WriteString("$")
	return sb.String()
}
