package resume

import (
	"regexp"
	"strconv"
	"strings"
)

var gpaPattern = regexp.MustCompile(`GPA:\s*([0-4]\.[0-9]+)`)

// Education returns every non-empty, non-bulleted line after the heading.
func Education(lines []string, sec Section) []string {
	start, end := clampRange(lines, sec.Start+1, sec.End)
	out := []string{}
	for _, line := range lines[start:end] {
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, bulletMarker) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Coursework splits the list that follows the coursework marker on its line.
// Entries are trimmed but otherwise kept as written.
func Coursework(lines []string, sec Section) []string {
	if sec.Start < 0 || sec.Start >= len(lines) {
		return []string{}
	}
	_, list, found := strings.Cut(lines[sec.Start], courseworkMarker)
	if !found {
		return []string{}
	}
	return splitTrim(list)
}

// Skills flattens "Category: a, b, c" lines, discarding the category label.
// Only the first colon splits, so "C++: STL: Boost" yields "STL: Boost".
func Skills(lines []string, sec Section) []string {
	start, end := clampRange(lines, sec.Start, sec.End)
	out := []string{}
	for _, line := range lines[start:end] {
		_, list, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		out = append(out, splitTrim(list)...)
	}
	return out
}

// GPA returns the first "GPA: D.D…" value in [0.0, 4.9] found in text.
func GPA(text string) *float64 {
	m := gpaPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}

func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
