package auth

import (
	"fmt"
	"regexp"
	"strings"
)

// ClaimGate is an operator-configured `{claim_path: [allowed_pattern, ...]}`
// map; a token passes when, for every configured claim path, at least one
// allowed pattern matches as a whole word somewhere in the flattened string
// rendering of the claim's value (spec §4.5). An empty gate always passes.
type ClaimGate map[string][]string

// Allows reports whether raw (the token's decoded claim set) satisfies
// every configured claim path in the gate.
func (g ClaimGate) Allows(raw map[string]interface{}) bool {
	for path, patterns := range g {
		if len(patterns) == 0 {
			continue
		}
		value := flattenClaimPath(raw, path)
		if !matchesAny(value, patterns) {
			return false
		}
	}
	return true
}

// flattenClaimPath walks a dot-separated claim path (e.g. "realm_access.roles")
// through nested maps/slices and renders whatever it finds as a single
// string for whole-word matching.
func flattenClaimPath(raw map[string]interface{}, path string) string {
	var current interface{} = raw
	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return ""
		}
		current, ok = m[segment]
		if !ok {
			return ""
		}
	}
	return flattenValue(current)
}

func flattenValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, flattenValue(item))
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprintf("%v", t)
	}
}

func matchesAny(value string, patterns []string) bool {
	for _, pattern := range patterns {
		// Hyphens count as part of a word, so "data-portal-users" does not
		// match inside "data-portal-users-extra".
		re, err := regexp.Compile(`(?:^|[^\w-])` + regexp.QuoteMeta(pattern) + `(?:[^\w-]|$)`)
		if err != nil {
			continue
		}
		if re.MatchString(value) {
			return true
		}
	}
	return false
}

// IsAdmin applies the same whole-word claim matching as ClaimGate, against
// the operator-configured admin-claim set, to decide whether a token
// carries admin privileges for global flavor management.
func IsAdmin(raw map[string]interface{}, adminGate ClaimGate) bool {
	if len(adminGate) == 0 {
		return false
	}
	return adminGate.Allows(raw)
}
