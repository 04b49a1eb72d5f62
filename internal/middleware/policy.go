package middleware

import "strings"

// Access levels a route rule can demand.
type Access int

const (
	// AccessAuthenticated admits any authenticated identity. It is the
	// default for unmatched routes: nothing is exempt unless a rule says so.
	AccessAuthenticated Access = iota
	// AccessPublic admits unauthenticated requests.
	AccessPublic
	// AccessRoles admits authenticated identities holding one of the
	// listed roles.
	AccessRoles
)

// Rule binds a method and path pattern to an access requirement.
// Patterns match path segments literally, with ":name" matching any
// single segment and a trailing "*" matching any remainder.
type Rule struct {
	Method  string // empty matches every method
	Pattern string
	Access  Access
	Roles   []string
}

// Table is the declarative route policy evaluated on every request.
// First matching rule wins; no match falls back to the default.
type Table struct {
	rules []Rule
}

// NewTable builds a policy table from rules in priority order.
func NewTable(rules ...Rule) *Table {
	return &Table{rules: rules}
}

// Match resolves the rule for a request. Unmatched requests get the
// authenticated-only default.
func (t *Table) Match(method, path string) Rule {
	for _, r := range t.rules {
		if r.Method != "" && !strings.EqualFold(r.Method, method) {
			continue
		}
		if matchPattern(r.Pattern, path) {
			return r
		}
	}
	return Rule{Access: AccessAuthenticated}
}

func matchPattern(pattern, path string) bool {
	pSegs := splitPath(pattern)
	segs := splitPath(path)

	for i, ps := range pSegs {
		if ps == "*" {
			return true
		}
		if i >= len(segs) {
			return false
		}
		if strings.HasPrefix(ps, ":") {
			continue
		}
		if !strings.EqualFold(ps, segs[i]) {
			return false
		}
	}
	return len(pSegs) == len(segs)
}

func splitPath(p string) []string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
