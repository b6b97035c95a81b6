package registry

import (
	"strings"
	"unicode"
)

// Normalize returns the canonical form of a project alias: lowercase,
// with every run of non-alphanumeric characters collapsed to a single
// underscore and leading/trailing underscores removed.
//
// Normalize("Piggy Bank") == Normalize("piggy-bank ") == "piggy_bank".
func Normalize(alias string) string {
	var sb strings.Builder
	pendingSep := false

	for _, r := range strings.ToLower(strings.TrimSpace(alias)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && sb.Len() > 0 {
				sb.WriteByte('_')
			}
			pendingSep = false
			sb.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	return sb.String()
}
