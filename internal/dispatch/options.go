package dispatch

import "strings"

// FilterOptions drops internal bookkeeping keys (prefixed with "_") and the
// "parent" back-reference from a command's options before they are passed
// to a package.
func FilterOptions(opts map[string]any) map[string]any {
	out := make(map[string]any, len(opts))
	for k, v := range opts {
		if strings.HasPrefix(k, "_") || k == "parent" {
			continue
		}
		out[k] = v
	}
	return out
}

// Payload builds the argument list handed to a package: the positional
// arguments followed by the filtered options object.
func Payload(args []any, opts map[string]any) []any {
	out := make([]any, 0, len(args)+1)
	out = append(out, args...)
	return append(out, FilterOptions(opts))
}
