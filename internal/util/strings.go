package util

import (
	"strings"
)

// TrimAndLower trims whitespace and converts to lowercase
func TrimAndLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// TrimEmptyCheck trims whitespace and checks if non-empty
func TrimEmptyCheck(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	return trimmed, trimmed != ""
}

// TrimWithDefault trims whitespace and returns default if empty
func TrimWithDefault(s, defaultValue string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return defaultValue
	}
	return trimmed
}

// EmbeddedExpr reports whether s is a whole-string embedded expression of the
// form #(expr) and returns the inner expression.
func EmbeddedExpr(s string) (string, bool) {
	t := strings.TrimSpace(s)
	if len(t) < 3 || !strings.HasPrefix(t, "#(") || !strings.HasSuffix(t, ")") {
		return "", false
	}
	return TrimEmptyCheck(t[2 : len(t)-1])
}
