package executor

import "strings"

// SanitizeOverride rewrites literal single quotes in raw override
// arguments to double quotes, so quoted install paths containing
// spaces survive being split into an argument vector. The transform
// happens here, once, as execution-input preparation; the parser keeps
// the raw text.
func SanitizeOverride(raw string) string {
	return strings.ReplaceAll(raw, "'", `"`)
}

// SplitOverrideArgs sanitizes raw and splits it into an argument
// vector. Double-quoted spans stay a single argument with the quotes
// stripped. An empty or whitespace-only raw yields nil, which selects
// the default silent flags downstream.
func SplitOverrideArgs(raw string) []string {
	sanitized := SanitizeOverride(raw)

	var args []string
	var current strings.Builder
	inQuote := false
	pending := false

	flush := func() {
		if pending {
			args = append(args, current.String())
			current.Reset()
			pending = false
		}
	}

	for i := 0; i < len(sanitized); i++ {
		c := sanitized[i]
		switch {
		case c == '"':
			inQuote = !inQuote
			// A quoted span is an argument even when empty.
			pending = true
		case (c == ' ' || c == '\t') && !inQuote:
			flush()
		default:
			current.WriteByte(c)
			pending = true
		}
	}
	flush()

	return args
}
