// Package scan implements the label-validation core: code sanitization,
// the divergence policy, the supervisor override gate, and the per-session
// batch tracker.
package scan

import "strings"

// Sanitize strips every character outside [0-9A-Za-z] from raw and
// truncates the result to maxLen. Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(raw string, maxLen int) string {
	var b strings.Builder
	b.Grow(maxLen)
	for _, r := range raw {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
			if b.Len() == maxLen {
				break
			}
		}
	}
	return b.String()
}
