package paper

import (
	"fmt"
	"strings"

	"ipg/formula"
)

// ValidationError describes a structural problem with the paper description.
// It is raised before any rendering starts and reported to the caller verbatim.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

func blank(s string) bool {
	return len(strings.TrimSpace(s)) == 0
}

func anyBlank(ss []string) bool {
	for _, s := range ss {
		if blank(s) {
			return true
		}
	}
	return false
}

// Validate checks structural invariants of the paper description and filters
// out formula strings that do not pass the accept-shape check. The renderer
// applies the same filter again defensively.
func Validate(d *Document) error {
	if blank(d.Title) {
		return validationErrorf("title", "title is required")
	}
	if len(d.Authors) == 0 || anyBlank(d.Authors) {
		return validationErrorf("authors", "all authors must be non-empty")
	}
	if len(d.Affiliations) == 0 || anyBlank(d.Affiliations) {
		return validationErrorf("affiliations", "all affiliations must be non-empty")
	}
	if len(d.Emails) == 0 || anyBlank(d.Emails) {
		return validationErrorf("emails", "all emails must be non-empty")
	}
	if blank(d.Abstract) {
		return validationErrorf("abstract", "abstract is required")
	}
	if len(d.Keywords) == 0 {
		return validationErrorf("keywords", "at least one keyword is required")
	}
	if len(d.Sections) == 0 {
		return validationErrorf("sections", "at least one section is required")
	}

	for i := range d.Sections {
		sec := &d.Sections[i]
		if blank(sec.Heading) {
			return validationErrorf("sections", "section %d is missing heading", i+1)
		}
		if blank(sec.Content) && len(sec.Subsections) == 0 {
			return validationErrorf("sections", "section %d must have content or subsections", i+1)
		}
		sec.Formulas = filterFormulas(sec.Formulas)

		for j := range sec.Subsections {
			sub := &sec.Subsections[j]
			if blank(sub.Heading) {
				return validationErrorf("sections", "subsection %d.%d is missing heading", i+1, j+1)
			}
			if blank(sub.Content) {
				return validationErrorf("sections", "subsection %d.%d is missing content", i+1, j+1)
			}
			sub.Formulas = filterFormulas(sub.Formulas)
		}
	}
	return nil
}

func filterFormulas(in []string) []string {
	if len(in) == 0 {
		return in
	}
	out := in[:0]
	for _, f := range in {
		if formula.Accept(f) {
			out = append(out, f)
		}
	}
	return out
}
