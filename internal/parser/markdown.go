package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/resumeparse/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Headings become
// heading lines and list items become bullet lines.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	tree := &doctree.DocTree{
		Title: stripExt(filename, ".md", ".markdown"),
	}

	type stackEntry struct {
		node  *doctree.DocNode
		level int
	}

	// Root is level 0, all h1+ nest under it.
	root := &doctree.DocNode{Title: tree.Title}
	stack := []stackEntry{{node: root, level: 0}}

	var current []string

	flushText := func() {
		if len(current) == 0 {
			return
		}
		top := stack[len(stack)-1].node
		t := strings.Join(current, "\n")
		if top.Text != "" {
			top.Text += "\n" + t
		} else {
			top.Text = t
		}
		current = current[:0]
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			flushText()
			level := node.Level
			newNode := &doctree.DocNode{Title: strings.TrimSpace(inlineText(node, src))}

			// Pop stack until we find a parent with lower level.
			for len(stack) > 1 && stack[len(stack)-1].level >= level {
				stack = stack[:len(stack)-1]
			}
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, newNode)
			stack = append(stack, stackEntry{node: newNode, level: level})

		case *ast.List:
			current = append(current, listLines(node, src)...)

		case *ast.ThematicBreak:
			// Horizontal rules carry no text.

		default:
			current = append(current, blockLines(n, src)...)
		}
	}
	flushText()

	tree.Children = root.Children
	// If there were no headings, put all text in a single child.
	if len(tree.Children) == 0 && root.Text != "" {
		tree.Children = []*doctree.DocNode{{Text: root.Text}}
	} else if root.Text != "" {
		// Text before the first heading.
		tree.Children = append([]*doctree.DocNode{{Text: root.Text}}, tree.Children...)
	}

	return tree, nil
}

// listLines renders each item as a bullet line followed by the item's other
// blocks as continuation lines. Nested lists become bullets of their own.
func listLines(list *ast.List, src []byte) []string {
	var lines []string
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		first := true
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if nested, ok := c.(*ast.List); ok {
				lines = append(lines, listLines(nested, src)...)
				continue
			}
			for _, l := range blockLines(c, src) {
				if first {
					l = BulletPrefix + l
					first = false
				}
				lines = append(lines, l)
			}
		}
		if first {
			lines = append(lines, BulletPrefix)
		}
	}
	return lines
}

// blockLines returns the non-empty lines of a leaf block.
func blockLines(n ast.Node, src []byte) []string {
	var raw string
	switch n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		raw = inlineText(n, src)
	case *ast.Blockquote:
		var lines []string
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			lines = append(lines, blockLines(c, src)...)
		}
		return lines
	default:
		var buf bytes.Buffer
		segs := n.Lines()
		for i := 0; i < segs.Len(); i++ {
			seg := segs.At(i)
			buf.Write(seg.Value(src))
		}
		raw = buf.String()
	}

	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// inlineText collects the visible text of n's inline children, keeping soft
// and hard line breaks as newlines.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				buf.Write(t.Segment.Value(src))
				if t.SoftLineBreak() || t.HardLineBreak() {
					buf.WriteByte('\n')
				}
			case *ast.String:
				buf.Write(t.Value)
			case *ast.AutoLink:
				buf.Write(t.Label(src))
			case *ast.RawHTML:
				// Inline HTML tags carry no text.
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return buf.String()
}
