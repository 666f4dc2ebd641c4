package describe

import (
	"strings"
	"unicode/utf8"
)

// maxDescriptionRunes matches the collection description limit.
const maxDescriptionRunes = 500

// ParseResponse pulls the description out of a model reply: the first line
// that is not a preamble, without surrounding quotes.
func ParseResponse(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Skip common lead-ins
		if strings.HasPrefix(line, "Here") || strings.HasPrefix(line, "Sure") || strings.HasPrefix(line, "Based on") {
			continue
		}

		line = strings.Trim(line, "\"'“”")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return truncate(line, maxDescriptionRunes)
	}
	return ""
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
