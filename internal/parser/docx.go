package parser

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/resumeparse/internal/doctree"
	"github.com/fumiama/go-docx"
	ndocx "github.com/nguyenthenguyen/docx"
)

// DOCXParser handles .docx files. Heading-styled paragraphs become heading
// lines, numbered or bulleted paragraphs become bullet lines and table cells
// are read row by row. Documents go-docx cannot load are retried by reading
// word/document.xml directly.
type DOCXParser struct{}

// docxBlock is one paragraph of a Word document.
type docxBlock struct {
	level int // heading level, 0 for body text
	list  bool
	text  string
}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	blocks, err := docxBlocks(data)
	if err != nil {
		var fbErr error
		blocks, fbErr = docxRawBlocks(data)
		if fbErr != nil {
			return nil, fmt.Errorf("parse docx: %w", err)
		}
	}

	tree := &doctree.DocTree{
		Title: stripExt(filename, ".docx"),
	}

	type stackEntry struct {
		node  *doctree.DocNode
		level int
	}
	root := &doctree.DocNode{}
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

	for _, b := range blocks {
		lines := splitNonEmpty(b.text)
		if len(lines) == 0 {
			continue
		}
		if b.level > 0 {
			flushText()
			newNode := &doctree.DocNode{Title: strings.Join(lines, " ")}
			for len(stack) > 1 && stack[len(stack)-1].level >= b.level {
				stack = stack[:len(stack)-1]
			}
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, newNode)
			stack = append(stack, stackEntry{node: newNode, level: b.level})
			continue
		}
		if b.list {
			lines[0] = BulletPrefix + lines[0]
		}
		current = append(current, lines...)
	}
	flushText()

	if root.Text != "" {
		tree.Children = append(tree.Children, &doctree.DocNode{Text: root.Text})
	}
	tree.Children = append(tree.Children, root.Children...)

	return tree, nil
}

func docxBlocks(data []byte) ([]docxBlock, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var blocks []docxBlock
	var walkTable func(*docx.Table)
	walkTable = func(tbl *docx.Table) {
		for _, row := range tbl.TableRows {
			for _, cell := range row.TableCells {
				for _, para := range cell.Paragraphs {
					blocks = append(blocks, paragraphBlock(para))
				}
				for _, nested := range cell.Tables {
					walkTable(nested)
				}
			}
		}
	}

	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			blocks = append(blocks, paragraphBlock(it))
		case *docx.Table:
			walkTable(it)
		}
	}
	return blocks, nil
}

func paragraphBlock(para *docx.Paragraph) docxBlock {
	b := docxBlock{text: docxParagraphText(para)}
	if para.Properties != nil {
		if para.Properties.Style != nil {
			b.level = headingStyleLevel(para.Properties.Style.Val)
		}
		b.list = para.Properties.NumProperties != nil
	}
	return b
}

// headingStyleLevel maps a paragraph style id such as "Heading2" or
// "heading 2" to its level. "Title" counts as level 1.
func headingStyleLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if s == "title" {
		return 1
	}
	rest, ok := strings.CutPrefix(s, "heading")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || n > 6 {
		return 0
	}
	return n
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			writeRun(&buf, c)
		case *docx.Hyperlink:
			if len(c.Run.Children) > 0 {
				writeRun(&buf, &c.Run)
			} else {
				buf.WriteString(c.Run.InstrText)
			}
		}
	}
	return buf.String()
}

func writeRun(buf *strings.Builder, run *docx.Run) {
	for _, rc := range run.Children {
		switch x := rc.(type) {
		case *docx.Text:
			buf.WriteString(x.Text)
		case *docx.Tab:
			buf.WriteByte(' ')
		case *docx.BarterRabbet:
			buf.WriteByte('\n')
		}
	}
}

// docxRawBlocks reads paragraphs straight from word/document.xml. It is used
// when go-docx rejects a file over markup it does not model.
func docxRawBlocks(data []byte) ([]docxBlock, error) {
	rd, err := ndocx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	defer rd.Close()

	dec := xml.NewDecoder(strings.NewReader(rd.Editable().GetContent()))
	var (
		blocks []docxBlock
		cur    docxBlock
		buf    strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				cur = docxBlock{}
				buf.Reset()
			case "pStyle":
				for _, a := range t.Attr {
					if a.Name.Local == "val" {
						cur.level = headingStyleLevel(a.Value)
					}
				}
			case "numPr":
				cur.list = true
			case "t":
				inText = true
			case "tab":
				buf.WriteByte(' ')
			case "br", "cr":
				buf.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				cur.text = buf.String()
				blocks = append(blocks, cur)
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		}
	}
	return blocks, nil
}
