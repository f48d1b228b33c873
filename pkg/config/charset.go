package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// CanonicalCharset resolves an encoding label (e.g. "utf8", "latin1") to its
// canonical name.
func CanonicalCharset(label string) (string, error) {
	label = strings.TrimSpace(label)
	enc, err := htmlindex.Get(label)
	if err != nil {
		return "", fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return "", fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return name, nil
}
