package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/resumeparse/internal/doctree"
)

// BulletPrefix is written in front of list items recovered from structured
// formats so they read like the bullets of a PDF text dump. No space follows
// it: the coursework marker is matched as "•Relevant Coursework:".
const BulletPrefix = "•"

// ErrUnsupportedFormat is returned for file extensions with no parser.
var ErrUnsupportedFormat = errors.New("unsupported file extension")

// SourceError reports that a document could not be turned into text.
type SourceError struct {
	Filename string
	Cause    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("text source %s: %v", e.Filename, e.Cause)
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}

// Parser converts raw document bytes into a DocTree.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.DocTree, error)
}

// Options tunes parser behavior.
type Options struct {
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Lines parses r with the parser for filename and returns the document's
// lines in reading order. Parse failures are wrapped in a SourceError.
func Lines(r io.Reader, filename string, opts Options) ([]string, error) {
	p, err := ForFile(filename, opts)
	if err != nil {
		return nil, err
	}
	tree, err := p.Parse(r, filename)
	if err != nil {
		return nil, &SourceError{Filename: filename, Cause: err}
	}
	return tree.Lines(), nil
}

func stripExt(filename string, exts ...string) string {
	for _, ext := range exts {
		if strings.HasSuffix(strings.ToLower(filename), ext) {
			return filename[:len(filename)-len(ext)]
		}
	}
	return filename
}
