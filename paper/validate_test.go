package paper

import (
	"errors"
	"strings"
	"testing"
)

func validDocument() *Document {
	return &Document{
		Title:        "Title",
		Authors:      []string{"A. Author"},
		Affiliations: []string{"University"},
		Emails:       []string{"a@example.com"},
		Abstract:     "Abstract text.",
		Keywords:     []string{"kw"},
		Sections: []Section{
			{Heading: "Intro", Content: "text"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *Document)
		wantMsg string
	}{
		{"valid", func(d *Document) {}, ""},
		{"blank title", func(d *Document) { d.Title = "  " }, "title is required"},
		{"no authors", func(d *Document) { d.Authors = nil }, "all authors must be non-empty"},
		{"blank author", func(d *Document) { d.Authors = []string{"A", " "} }, "all authors must be non-empty"},
		{"blank affiliation", func(d *Document) { d.Affiliations = []string{""} }, "all affiliations must be non-empty"},
		{"blank email", func(d *Document) { d.Emails = []string{" "} }, "all emails must be non-empty"},
		{"blank abstract", func(d *Document) { d.Abstract = "" }, "abstract is required"},
		{"no keywords", func(d *Document) { d.Keywords = nil }, "at least one keyword is required"},
		{"no sections", func(d *Document) { d.Sections = nil }, "at least one section is required"},
		{"section missing heading", func(d *Document) { d.Sections[0].Heading = " " }, "section 1 is missing heading"},
		{
			"section without content or subsections",
			func(d *Document) { d.Sections[0].Content = "" },
			"section 1 must have content or subsections",
		},
		{
			"content-free section with subsections is fine",
			func(d *Document) {
				d.Sections[0].Content = ""
				d.Sections[0].Subsections = []Subsection{{Heading: "Sub", Content: "text"}}
			},
			"",
		},
		{
			"subsection missing heading",
			func(d *Document) {
				d.Sections[0].Subsections = []Subsection{{Heading: "", Content: "text"}}
			},
			"subsection 1.1 is missing heading",
		},
		{
			"subsection missing content",
			func(d *Document) {
				d.Sections[0].Subsections = []Subsection{{Heading: "Sub", Content: " "}}
			},
			"subsection 1.1 is missing content",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDocument()
			tt.mutate(d)
			err := Validate(d)
			if len(tt.wantMsg) == 0 {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			if vErr.Msg != tt.wantMsg {
				t.Errorf("Validate() message = %q, want %q", vErr.Msg, tt.wantMsg)
			}
		})
	}
}

func TestValidateFiltersFormulas(t *testing.T) {
	d := validDocument()
	d.Sections[0].Formulas = []string{`\frac{1}{2}`, "not a formula", `\alpha`}
	d.Sections[0].Subsections = []Subsection{
		{Heading: "Sub", Content: "text", Formulas: []string{"plain", `\beta`}},
	}

	if err := Validate(d); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got := d.Sections[0].Formulas; len(got) != 2 || got[0] != `\frac{1}{2}` || got[1] != `\alpha` {
		t.Errorf("section formulas after filtering = %v", got)
	}
	if got := d.Sections[0].Subsections[0].Formulas; len(got) != 1 || got[0] != `\beta` {
		t.Errorf("subsection formulas after filtering = %v", got)
	}
}

func TestParse(t *testing.T) {
	in := `{
		"title": "T",
		"authors": ["A"],
		"affiliations": ["U"],
		"emails": ["a@example.com"],
		"abstract": "ab",
		"keywords": ["k"],
		"sections": [
			{"heading": "H", "content": "c",
			 "tables": [[["a","b"],["c","d"]]],
			 "subsections": [{"heading": "S", "content": "sc"}]}
		],
		"references": ["[1] ref"],
		"appendix": ["extra"]
	}`
	d, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if d.Title != "T" || len(d.Sections) != 1 {
		t.Errorf("Parse() = %+v", d)
	}
	if len(d.Sections[0].Tables) != 1 || len(d.Sections[0].Tables[0]) != 2 {
		t.Errorf("tables not parsed: %+v", d.Sections[0].Tables)
	}
	if len(d.Sections[0].Subsections) != 1 || d.Sections[0].Subsections[0].Heading != "S" {
		t.Errorf("subsections not parsed: %+v", d.Sections[0].Subsections)
	}
}

func TestParseRejectsJunk(t *testing.T) {
	if _, err := Parse(strings.NewReader("not json")); err == nil {
		t.Error("Parse() accepted junk input")
	}
}
