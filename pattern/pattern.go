// Package pattern compiles component custom-identifier patterns into anchored
// matchers. A pattern is a literal string with {name} placeholders; each
// placeholder captures one or more alphanumeric characters. Custom identifiers
// are opaque strings chosen by the application, so matchers are anchored at
// both ends — a pattern never matches a prefix or suffix of another
// identifier.
package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidParamName is returned when a placeholder name is not a valid
// identifier (one or more word characters).
var ErrInvalidParamName = errors.New("invalid parameter name")

var nameRe = regexp.MustCompile(`^\w+$`)

// Compiled is the result of compiling a pattern: the anchored matcher plus the
// placeholder names in the order they appear.
type Compiled struct {
	source string
	re     *regexp.Regexp

	// Params holds the placeholder names in declaration order. Empty for
	// patterns without placeholders.
	Params []string
}

// Compile turns a pattern like "profile-{id}" into a Compiled matcher.
// Literal characters are matched exactly; each {name} placeholder matches
// [A-Za-z0-9]+. Returns ErrInvalidParamName when a placeholder name does not
// match ^\w+$.
func Compile(p string) (*Compiled, error) {
	var sb strings.Builder
	var params []string

	sb.WriteString("^")
	rest := p
	for {
		open := strings.Index(rest, "{")
		if open < 0 {
			sb.WriteString(regexp.QuoteMeta(rest))
			break
		}
		close := strings.Index(rest[open:], "}")
		if close < 0 {
			// No closing brace: the remainder is literal.
			sb.WriteString(regexp.QuoteMeta(rest))
			break
		}
		name := rest[open+1 : open+close]
		if !nameRe.MatchString(name) {
			return nil, fmt.Errorf("%w: %q in pattern %q", ErrInvalidParamName, name, p)
		}
		sb.WriteString(regexp.QuoteMeta(rest[:open]))
		fmt.Fprintf(&sb, "(?P<%s>[A-Za-z0-9]+)", name)
		params = append(params, name)
		rest = rest[open+close+1:]
	}
	sb.WriteString("$")

	re, err := regexp.Compile(sb.String())
	if err != nil {
		// Reachable via duplicate placeholder names.
		return nil, fmt.Errorf("%w: pattern %q: %v", ErrInvalidParamName, p, err)
	}
	return &Compiled{source: p, re: re, Params: params}, nil
}

// MustCompile is Compile but panics on error. Intended for static patterns in
// composition roots, where a bad pattern should abort before the process
// starts serving events.
func MustCompile(p string) *Compiled {
	c, err := Compile(p)
	if err != nil {
		panic(err)
	}
	return c
}

// Match tests s against the full pattern. On success it returns the captured
// placeholder values keyed by name; the map is empty (non-nil) for patterns
// without placeholders.
func (c *Compiled) Match(s string) (map[string]string, bool) {
	m := c.re.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	params := make(map[string]string, len(c.Params))
	for i, name := range c.re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		params[name] = m[i]
	}
	return params, true
}

// String returns the original pattern source.
func (c *Compiled) String() string { return c.source }
