package pipeline

import (
	"bytes"

	"github.com/dgallion1/resumeparse/internal/parser"
	"github.com/dgallion1/resumeparse/internal/resume"
)

// Document is a parsed résumé: the lines read from the source, where its
// sections are and the fields extracted from them.
type Document struct {
	Lines    []string
	Sections resume.Sections
	Result   resume.Result
}

// ParseDocument reads data as the format implied by filename and extracts
// résumé fields from it. Errors are parser.ErrUnsupportedFormat (wrapped) or
// a *parser.SourceError; a document without recognizable structure is not
// an error.
func ParseDocument(data []byte, filename string, opts parser.Options) (*Document, error) {
	lines, err := readLines(data, filename, opts)
	if err != nil {
		return nil, err
	}
	return NewDocument(lines), nil
}

// NewDocument runs extraction over lines that were already read.
func NewDocument(lines []string) *Document {
	sections := resume.LocateSections(lines)
	return &Document{
		Lines:    lines,
		Sections: sections,
		Result:   resume.ExtractSections(lines, sections),
	}
}

func readLines(data []byte, filename string, opts parser.Options) ([]string, error) {
	return parser.Lines(bytes.NewReader(data), filename, opts)
}
