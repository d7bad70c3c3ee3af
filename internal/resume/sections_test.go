package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateSections_Basic(t *testing.T) {
	lines := SplitLines(sampleResume)
	sections := LocateSections(lines)

	assert.Equal(t, Section{Kind: SectionEducation, Start: 1, End: 5}, sections[SectionEducation])
	assert.Equal(t, Section{Kind: SectionCoursework, Start: 4, End: 5}, sections[SectionCoursework])
	assert.Equal(t, Section{Kind: SectionExperience, Start: 5, End: 12}, sections[SectionExperience])
	assert.Equal(t, Section{Kind: SectionProjects, Start: 12, End: 15}, sections[SectionProjects])
	assert.Equal(t, Section{Kind: SectionSkills, Start: 15, End: 18}, sections[SectionSkills])

	for kind, sec := range sections {
		assert.Less(t, sec.Start, sec.End, kind)
		assert.LessOrEqual(t, sec.End, len(lines), kind)
	}
}

func TestLocateSections_NoHeadings(t *testing.T) {
	assert.Empty(t, LocateSections([]string{"hello", "world"}))
	assert.Empty(t, LocateSections(nil))
}

func TestLocateSections_HeadingsAreTrimmedExactMatches(t *testing.T) {
	sections := LocateSections([]string{"  Experience  ", "Work Experience", "EXPERIENCE"})
	require.Contains(t, sections, SectionExperience)
	assert.Equal(t, 0, sections[SectionExperience].Start)
	assert.Equal(t, 3, sections[SectionExperience].End)
}

func TestLocateSections_Boundary(t *testing.T) {
	lines := []string{"Experience", "• did X", "Projects", "• built Y"}
	sections := LocateSections(lines)

	assert.Equal(t, Section{Kind: SectionExperience, Start: 0, End: 2}, sections[SectionExperience])
	assert.Equal(t, Section{Kind: SectionProjects, Start: 2, End: 4}, sections[SectionProjects])

	res := Extract(lines)
	assert.Equal(t, []string{"did X"}, res.Experience)
	assert.Equal(t, []string{"built Y"}, res.Projects)
}

func TestLocateSections_LastOccurrenceWins(t *testing.T) {
	lines := []string{
		"Projects",
		"• first",
		"Experience",
		"• job",
		"Projects",
		"• second",
	}
	sections := LocateSections(lines)
	assert.Equal(t, Section{Kind: SectionProjects, Start: 4, End: 6}, sections[SectionProjects])
	assert.Equal(t, []string{"second"}, Extract(lines).Projects)
}

func TestLocateSections_EducationIsNotATerminator(t *testing.T) {
	lines := []string{"Experience", "• a", "Education", "MIT"}
	sections := LocateSections(lines)

	assert.Equal(t, 4, sections[SectionExperience].End)
	assert.Equal(t, Section{Kind: SectionEducation, Start: 2, End: 4}, sections[SectionEducation])

	res := Extract(lines)
	assert.Equal(t, []string{"a Education MIT"}, res.Experience)
	assert.Equal(t, []string{"MIT"}, res.Education)
}

func TestLocateSections_SkillsRunToEndOfDocument(t *testing.T) {
	lines := []string{"Technical Skills", "Languages: Go", "Projects", "• Tool: parser"}
	sections := LocateSections(lines)

	assert.Equal(t, Section{Kind: SectionSkills, Start: 0, End: 4}, sections[SectionSkills])
	assert.Equal(t, []string{"Go", "parser"}, Extract(lines).Skills)
}

func TestLocateSections_CourseworkSearchedPastEducation(t *testing.T) {
	lines := []string{
		"Education",
		"State University",
		"Experience",
		"•Relevant Coursework: Compilers",
	}
	sections := LocateSections(lines)
	require.Contains(t, sections, SectionCoursework)
	assert.Equal(t, Section{Kind: SectionCoursework, Start: 3, End: 4}, sections[SectionCoursework])
}

func TestLocateSections_CourseworkKeptFromEarlierEducation(t *testing.T) {
	lines := []string{
		"Education",
		"•Relevant Coursework: Databases",
		"Education",
		"Second School",
	}
	sections := LocateSections(lines)
	assert.Equal(t, 2, sections[SectionEducation].Start)
	assert.Equal(t, 1, sections[SectionCoursework].Start)
}

func TestNextSection(t *testing.T) {
	lines := []string{"Education", "x", "Technical Skills", "y"}
	assert.Equal(t, 2, NextSection(lines, 0))
	assert.Equal(t, 4, NextSection(lines, 2))
	assert.Equal(t, 4, NextSection(lines, 10))
}

func TestFound(t *testing.T) {
	sections := LocateSections([]string{"Technical Skills", "Education"})
	assert.Equal(t, []SectionKind{SectionEducation, SectionSkills}, Found(sections))
	assert.Empty(t, Found(Sections{}))
}
