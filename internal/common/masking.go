package common

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// MaskedValue replaces sensitive values in logs and dumps
const MaskedValue = "***MASKED***"

// SensitivePattern represents a pattern to detect and mask sensitive information
type SensitivePattern struct {
	Name        string         // Pattern name (e.g., "password", "api_key")
	Regex       *regexp.Regexp // Regular expression to match sensitive data
	Replacement string         // Replacement string (e.g., "***MASKED***")
	Keys        []string       // Specific keys to mask (case-insensitive)
}

// DefaultSensitivePatterns contains common patterns for sensitive information
var DefaultSensitivePatterns = []SensitivePattern{
	{
		Name:        "password",
		Regex:       regexp.MustCompile(`(?i)(password|passwd|pwd)["'\s]*[:=]["'\s]*([^"',}\]\s]+)`),
		Replacement: `${1}":"***MASKED***"`,
		Keys:        []string{"password", "passwd", "pwd"},
	},
	{
		Name:        "store_password",
		Regex:       regexp.MustCompile(`(?i)((?:key|trust)_?store_?password)["'\s]*[:=]["'\s]*([^"',}\]\s]+)`),
		Replacement: `${1}":"***MASKED***"`,
		Keys:        []string{"keyStorePassword", "trustStorePassword", "key_store_password", "trust_store_password"},
	},
	{
		Name:        "proxy_userinfo",
		Regex:       regexp.MustCompile(`(?i)(https?|socks5)://([^:/@\s]+):([^@/\s]+)@`),
		Replacement: "${1}://${2}:***MASKED***@",
		Keys:        []string{},
	},
	{
		Name:        "authorization",
		Regex:       regexp.MustCompile(`(?i)(authorization)["'\s]*[:=]["'\s]*([^"',}\]\s]+)`),
		Replacement: `${1}":"***MASKED***"`,
		Keys:        []string{"authorization"},
	},
	{
		Name:        "bearer_token",
		Regex:       regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9\-._~+/]+=*`),
		Replacement: "Bearer ***MASKED***",
		Keys:        []string{},
	},
	{
		Name:        "secret",
		Regex:       regexp.MustCompile(`(?i)(secret|client[_-]?secret)["'\s]*[:=]["'\s]*([^"',}\]\s]+)`),
		Replacement: `${1}":"***MASKED***"`,
		Keys:        []string{"secret", "client_secret", "client-secret"},
	},
}

// Masker handles masking of sensitive information in logs
type Masker struct {
	patterns []SensitivePattern
	enabled  bool
}

// NewMasker creates a new masker with default patterns
func NewMasker() *Masker {
	return &Masker{
		patterns: DefaultSensitivePatterns,
		enabled:  true,
	}
}

// SetEnabled enables or disables masking
func (m *Masker) SetEnabled(enabled bool) {
	m.enabled = enabled
}

// IsEnabled returns whether masking is enabled
func (m *Masker) IsEnabled() bool {
	return m.enabled
}

// AddPattern adds a new sensitive pattern, compiling a key regex when none is given
func (m *Masker) AddPattern(pattern SensitivePattern) {
	if pattern.Regex == nil && len(pattern.Keys) > 0 {
		keyPattern := strings.Join(pattern.Keys, "|")
		pattern.Regex = regexp.MustCompile(fmt.Sprintf("(?i)\\b(%s)\\s*[:=]\\s*['\"]?([^'\",\\s}\\]]+)['\"]?", keyPattern))
		if pattern.Replacement == "" {
			pattern.Replacement = "$1:\"" + MaskedValue + "\""
		}
	}
	m.patterns = append(m.patterns, pattern)
}

// MaskString masks sensitive information in a string
func (m *Masker) MaskString(input string) string {
	if m == nil || !m.enabled {
		return input
	}
	result := input
	for _, pattern := range m.patterns {
		if pattern.Regex == nil {
			continue
		}
		result = pattern.Regex.ReplaceAllString(result, pattern.Replacement)
	}
	return result
}

// IsSensitiveKey reports whether values stored under key are always masked
func (m *Masker) IsSensitiveKey(key string) bool {
	if m == nil {
		return false
	}
	for _, pattern := range m.patterns {
		for _, sensitiveKey := range pattern.Keys {
			if strings.EqualFold(key, sensitiveKey) {
				return true
			}
		}
	}
	return false
}

// MaskValue masks sensitive information based on key-value context
func (m *Masker) MaskValue(key string, value interface{}) interface{} {
	if m == nil || !m.enabled {
		return value
	}
	if m.IsSensitiveKey(key) {
		return MaskedValue
	}
	strValue, ok := value.(string)
	if !ok {
		return value
	}
	return m.MaskString(strValue)
}

// MaskMap returns a copy of m with sensitive entries masked, descending into nested maps
func (m *Masker) MaskMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case map[string]any:
			out[k] = m.MaskMap(val)
		case string:
			if val == "" {
				out[k] = val
				continue
			}
			out[k] = m.MaskValue(k, val)
		default:
			out[k] = v
		}
	}
	return out
}

var sensitiveHeaders = map[string]struct{}{
	"Authorization":       {},
	"Proxy-Authorization": {},
	"Cookie":              {},
	"Set-Cookie":          {},
	"X-Api-Key":           {},
	"X-Auth-Token":        {},
}

// MaskHeaders returns a copy of h with credential headers masked and
// sensitive patterns in other values replaced.
func (m *Masker) MaskHeaders(h http.Header) http.Header {
	if h == nil {
		return nil
	}
	out := make(http.Header, len(h))
	for key, vals := range h {
		masked := make([]string, len(vals))
		_, sensitive := sensitiveHeaders[http.CanonicalHeaderKey(key)]
		for i, v := range vals {
			switch {
			case m == nil || !m.enabled:
				masked[i] = v
			case sensitive:
				masked[i] = MaskedValue
			default:
				masked[i] = m.MaskString(v)
			}
		}
		out[key] = masked
	}
	return out
}

// Global masker instance
var globalMasker = NewMasker()

// GetGlobalMasker returns the global masker instance
func GetGlobalMasker() *Masker {
	return globalMasker
}

// MaskSensitiveData masks sensitive data using the global masker
func MaskSensitiveData(input string) string {
	return globalMasker.MaskString(input)
}

// EnableMasking enables/disables global masking
func EnableMasking(enabled bool) {
	globalMasker.SetEnabled(enabled)
}

// IsMaskingEnabled returns whether global masking is enabled
func IsMaskingEnabled() bool {
	return globalMasker.IsEnabled()
}
