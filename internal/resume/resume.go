// Package resume extracts structured fields from the plain text of a résumé.
//
// All functions are pure: they read the line slice they are given and keep no
// state between calls, so a single document can be parsed from any number of
// goroutines.
package resume

import "strings"

// Result is the fixed-shape record produced for every document. Every field
// is always present; missing sections leave their field empty.
type Result struct {
	Education   []string `json:"education"`
	Coursework  []string `json:"coursework"`
	Experience  []string `json:"experience"`
	Internships int      `json:"internships"`
	Projects    []string `json:"projects"`
	Skills      []string `json:"skills"`
	GPA         *float64 `json:"gpa"`
}

// Empty returns a Result with all defaults set.
func Empty() Result {
	return Result{
		Education:  []string{},
		Coursework: []string{},
		Experience: []string{},
		Projects:   []string{},
		Skills:     []string{},
	}
}

// Experience returns the bullets of the section and its internship count.
func Experience(lines []string, sec Section) ([]string, int) {
	start, end := clampRange(lines, sec.Start, sec.End)
	return Bullets(lines, start, end), CountInternships(lines[start:end])
}

// Projects returns the bullets of the section.
func Projects(lines []string, sec Section) []string {
	return Bullets(lines, sec.Start, sec.End)
}

// Extract runs every extractor over the document lines and assembles the
// result.
func Extract(lines []string) Result {
	return ExtractSections(lines, LocateSections(lines))
}

// ExtractSections is Extract for callers that already located the sections
// of lines.
func ExtractSections(lines []string, sections Sections) Result {
	res := Empty()
	res.GPA = GPA(strings.Join(lines, "\n"))

	if sec, ok := sections[SectionEducation]; ok {
		res.Education = Education(lines, sec)
	}
	if sec, ok := sections[SectionCoursework]; ok {
		res.Coursework = Coursework(lines, sec)
	}
	if sec, ok := sections[SectionExperience]; ok {
		res.Experience, res.Internships = Experience(lines, sec)
	}
	if sec, ok := sections[SectionProjects]; ok {
		res.Projects = Projects(lines, sec)
	}
	if sec, ok := sections[SectionSkills]; ok {
		res.Skills = Skills(lines, sec)
	}

	return res
}

// ExtractText splits text on newlines and calls Extract.
func ExtractText(text string) Result {
	return Extract(SplitLines(text))
}

// SplitLines splits text into lines, treating CRLF and CR as LF.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// Found reports which section kinds were located, in a stable order.
func Found(sections Sections) []SectionKind {
	var kinds []SectionKind
	for _, k := range []SectionKind{SectionEducation, SectionCoursework, SectionExperience, SectionProjects, SectionSkills} {
		if _, ok := sections[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
