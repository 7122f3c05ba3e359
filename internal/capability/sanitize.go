package capability

import "regexp"

var separatorChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// SanitizeName turns a raw, namespaced tool name into a capability name.
// The "." plugin separator (and any other character the model API rejects)
// becomes "_". Deterministic and idempotent; sanitization must yield the
// same value at adaptation time and at dispatch time, since the registry is
// keyed by it.
func SanitizeName(raw string) string {
	return separatorChars.ReplaceAllString(raw, "_")
}
