// Package names holds the case conversions shared by the assembler and the
// language backends. All conversions are pure functions of their input.
package names

import "strings"

// Snake converts a declaration or field name to snake_case:
// GlobalGameEvent yields global_game_event, HTTPError yields http_error.
func Snake(name string) string {
	var sb strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if isUpper(r) {
			prevLower := i > 0 && !isUpper(runes[i-1]) && runes[i-1] != '_'
			nextLower := i+1 < len(runes) && !isUpper(runes[i+1]) && runes[i+1] != '_'
			if i > 0 && (prevLower || (isUpper(runes[i-1]) && nextLower)) {
				sb.WriteRune('_')
			}
			sb.WriteRune(r + ('a' - 'A'))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Exported converts a field name to an exported Go identifier, preserving
// the original spelling apart from the leading capital. Positional names
// (_0, _1, ...) become F0, F1, ....
func Exported(name string) string {
	if len(name) > 1 && name[0] == '_' {
		return "F" + name[1:]
	}
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}
