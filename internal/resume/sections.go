package resume

import "strings"

// SectionKind names a logical region of a résumé.
type SectionKind string

const (
	SectionEducation  SectionKind = "education"
	SectionCoursework SectionKind = "coursework"
	SectionExperience SectionKind = "experience"
	SectionProjects   SectionKind = "projects"
	SectionSkills     SectionKind = "skills"
)

// Heading literals matched against trimmed lines.
const (
	headingEducation  = "Education"
	headingExperience = "Experience"
	headingProjects   = "Projects"
	headingSkills     = "Technical Skills"

	courseworkMarker = "•Relevant Coursework:"
)

// Education is not a terminator: it only ever precedes the other sections.
var boundaryHeadings = map[string]bool{
	headingExperience: true,
	headingProjects:   true,
	headingSkills:     true,
}

// Section is a half-open line range [Start, End) inside a document.
type Section struct {
	Kind  SectionKind `json:"kind"`
	Start int         `json:"start"`
	End   int         `json:"end"`
}

// Sections maps each located kind to its range.
type Sections map[SectionKind]Section

// LocateSections scans the lines once and returns the range of every
// recognized heading. When a heading repeats, the last occurrence wins.
// The skills section always runs to the end of the document.
func LocateSections(lines []string) Sections {
	sections := make(Sections)

	for i, line := range lines {
		switch strings.TrimSpace(line) {
		case headingEducation:
			// The coursework marker is searched from the heading to the end
			// of the document, not just within the education range.
			for j := i; j < len(lines); j++ {
				if strings.Contains(lines[j], courseworkMarker) {
					sections[SectionCoursework] = Section{Kind: SectionCoursework, Start: j, End: NextSection(lines, j)}
					break
				}
			}
			sections[SectionEducation] = Section{Kind: SectionEducation, Start: i, End: NextSection(lines, i)}
		case headingExperience:
			sections[SectionExperience] = Section{Kind: SectionExperience, Start: i, End: NextSection(lines, i)}
		case headingProjects:
			sections[SectionProjects] = Section{Kind: SectionProjects, Start: i, End: NextSection(lines, i)}
		case headingSkills:
			sections[SectionSkills] = Section{Kind: SectionSkills, Start: i, End: len(lines)}
		}
	}

	return sections
}

// NextSection returns the index of the first boundary heading after start,
// or len(lines) if there is none.
func NextSection(lines []string, start int) int {
	for i := start + 1; i < len(lines); i++ {
		if boundaryHeadings[strings.TrimSpace(lines[i])] {
			return i
		}
	}
	return len(lines)
}

// clampRange keeps [start, end) inside the line slice.
func clampRange(lines []string, start, end int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		start = end
	}
	return start, end
}
