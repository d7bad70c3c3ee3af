package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/resumeparse/internal/doctree"
)

// TextParser handles plain text files. Lines are kept as-is, blank ones
// included, so line indexes match the source file.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	tree := &doctree.DocTree{
		Title: stripExt(filename, ".txt"),
	}
	if len(lines) > 0 {
		tree.Children = []*doctree.DocNode{{Text: strings.Join(lines, "\n")}}
	}

	return tree, nil
}
