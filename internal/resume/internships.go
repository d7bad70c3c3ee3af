package resume

import "regexp"

var internshipPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\w+\s)?Intern\b`),
	regexp.MustCompile(`(?i)Internship`),
}

// CountInternships counts the lines that carry an internship cue. A role
// described over several matching lines is counted once per line.
func CountInternships(lines []string) int {
	count := 0
	for _, line := range lines {
		for _, re := range internshipPatterns {
			if re.MatchString(line) {
				count++
				break
			}
		}
	}
	return count
}
