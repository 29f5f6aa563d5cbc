package common

import "strings"

// SplitTrim splits s on sep, trims surrounding whitespace from every part and
// drops empty parts.
func SplitTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Fields splits s on sep and trims every part, keeping empty ones so
// positional formats stay aligned.
func Fields(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
