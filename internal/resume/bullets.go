package resume

import "strings"

const bulletMarker = "•"

// Bullets merges marker lines in [start, end) with their continuation lines.
// Text before the first marker is dropped, blank lines are skipped and a
// bullet never crosses end.
func Bullets(lines []string, start, end int) []string {
	start, end = clampRange(lines, start, end)

	bullets := []string{}
	var current []string
	open := false

	flush := func() {
		if !open {
			return
		}
		if text := strings.Join(current, " "); text != "" {
			bullets = append(bullets, text)
		}
		current = current[:0]
		open = false
	}

	for _, line := range lines[start:end] {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, bulletMarker):
			flush()
			open = true
			if payload := strings.TrimSpace(strings.TrimPrefix(trimmed, bulletMarker)); payload != "" {
				current = append(current, payload)
			}
		case open && trimmed != "":
			current = append(current, trimmed)
		}
	}
	flush()

	return bullets
}
