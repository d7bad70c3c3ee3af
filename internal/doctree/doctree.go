package doctree

import "strings"

// DocTree is the root of a parsed document.
type DocTree struct {
	Title    string     // Document title (from metadata or filename)
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading as it appears in the document (empty for leaf text)
	Text     string     // Newline-separated text content of this node
	Page     int        // Source page (0 if N/A)
	Children []*DocNode // Subsections
}

// Lines flattens the tree into reading order: each node contributes its
// heading line, then its text lines, then its children. The document title is
// metadata and is not emitted.
func (t *DocTree) Lines() []string {
	if t == nil {
		return nil
	}
	var lines []string
	var walk func(nodes []*DocNode)
	walk = func(nodes []*DocNode) {
		for _, n := range nodes {
			if n.Title != "" {
				lines = append(lines, n.Title)
			}
			if n.Text != "" {
				lines = append(lines, strings.Split(n.Text, "\n")...)
			}
			walk(n.Children)
		}
	}
	walk(t.Children)
	return lines
}

