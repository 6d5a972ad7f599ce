package textutil

import (
	"strings"
	"time"
)

// ReportFileName names an exported settlement workbook for a session. The
// session ID is reduced to a lowercase token safe on every filesystem.
func ReportFileName(sessionID string, at time.Time) string {
	return "condish-" + fileToken(sessionID) + "-" + at.Format("20060102-150405") + ".xlsx"
}

// fileToken keeps ASCII letters, digits, '-' and '_' and turns every other
// run of characters into a single underscore.
func fileToken(value string) string {
	var b strings.Builder
	gap := false
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_' {
			if gap && b.Len() > 0 {
				b.WriteByte('_')
			}
			gap = false
			b.WriteRune(r)
			continue
		}
		gap = true
	}
	if out := strings.Trim(b.String(), "_-"); out != "" {
		return out
	}
	return "session"
}
