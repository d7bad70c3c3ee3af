package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/resumeparse/internal/resume"
)

func TestHTMLParser_ResumeLines(t *testing.T) {
	input := `<html><head><title>Jane Doe CV</title><style>h2 { color: red }</style></head>
<body>
<p>Jane Doe</p>
<h2>Education</h2>
<p>University of Florida<br>GPA: 3.90</p>
<h2>Experience</h2>
<ul>
  <li>Software Engineering Intern at <b>Acme</b> Corp</li>
  <li>Built a
      cache</li>
</ul>
<h2>Technical Skills</h2>
<div>Languages: Go, SQL</div>
<script>var x = 1;</script>
</body></html>`

	p := &HTMLParser{}
	tree, err := p.Parse(strings.NewReader(input), "cv.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "Jane Doe CV" {
		t.Errorf("expected title %q, got %q", "Jane Doe CV", tree.Title)
	}

	want := []string{
		"Jane Doe",
		"Education",
		"University of Florida",
		"GPA: 3.90",
		"Experience",
		"•Software Engineering Intern at Acme Corp",
		"•Built a cache",
		"Technical Skills",
		"Languages: Go, SQL",
	}
	got := tree.Lines()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %q, got %q", want, got)
	}

	res := resume.Extract(got)
	if res.Internships != 1 {
		t.Errorf("expected 1 internship, got %d", res.Internships)
	}
	if len(res.Experience) != 2 {
		t.Errorf("expected 2 experience bullets, got %q", res.Experience)
	}
	if res.GPA == nil || *res.GPA != 3.90 {
		t.Errorf("expected GPA 3.90, got %v", res.GPA)
	}
}

func TestHTMLParser_FilenameTitle(t *testing.T) {
	p := &HTMLParser{}
	tree, err := p.Parse(strings.NewReader("<p>hello</p>"), "page.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "page" {
		t.Errorf("expected title %q, got %q", "page", tree.Title)
	}
	if lines := tree.Lines(); len(lines) != 1 || lines[0] != "hello" {
		t.Errorf("expected [hello], got %q", lines)
	}
}

func TestHTMLParser_HeadingHierarchy(t *testing.T) {
	input := "<h1>Top</h1><p>a</p><h2>Sub</h2><p>b</p><h1>Next</h1>"
	p := &HTMLParser{}
	tree, err := p.Parse(strings.NewReader(input), "x.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 2 {
		t.Fatalf("expected 2 top-level nodes, got %d", len(tree.Children))
	}
	if len(tree.Children[0].Children) != 1 || tree.Children[0].Children[0].Title != "Sub" {
		t.Errorf("expected Sub nested under Top, got %+v", tree.Children[0].Children)
	}
}
