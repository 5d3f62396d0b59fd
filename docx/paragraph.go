package docx

import (
	"fmt"

	"github.com/beevik/etree"
)

// Alignment is a paragraph justification value (w:jc).
type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "both"
)

// Paragraph wraps a single w:p element.
type Paragraph struct {
	d   *Document
	p   *etree.Element
	pPr *etree.Element
}

// AddParagraph appends an empty paragraph to the document body.
func (d *Document) AddParagraph() *Paragraph {
	p := d.body.CreateElement("w:p")
	// paragraph properties must precede content, so they are created eagerly
	return &Paragraph{d: d, p: p, pPr: p.CreateElement("w:pPr")}
}

func (p *Paragraph) setPPr(tag string, attrs map[string]string) {
	el := p.pPr.SelectElement(tag)
	if el == nil {
		el = p.pPr.CreateElement(tag)
	}
	for k, v := range attrs {
		el.CreateAttr(k, v)
	}
}

// SetAlignment sets paragraph justification.
func (p *Paragraph) SetAlignment(a Alignment) *Paragraph {
	p.setPPr("w:jc", map[string]string{"w:val": string(a)})
	return p
}

// SetFirstLineIndent indents the first line by the given width in inches.
func (p *Paragraph) SetFirstLineIndent(inches float64) *Paragraph {
	p.setPPr("w:ind", map[string]string{"w:firstLine": fmt.Sprintf("%d", twips(inches))})
	return p
}

// SetSpacing sets space before and after the paragraph in points.
func (p *Paragraph) SetSpacing(beforePt, afterPt float64) *Paragraph {
	// w:spacing takes twentieths of a point
	p.setPPr("w:spacing", map[string]string{
		"w:before": fmt.Sprintf("%d", int(beforePt*20+0.5)),
		"w:after":  fmt.Sprintf("%d", int(afterPt*20+0.5)),
	})
	return p
}

// Run wraps a single w:r element.
type Run struct {
	r   *etree.Element
	rPr *etree.Element
}

// AddRun appends a text run to the paragraph.
func (p *Paragraph) AddRun(text string) *Run {
	return addRun(p.p, text)
}

func addRun(parent *etree.Element, text string) *Run {
	r := parent.CreateElement("w:r")
	run := &Run{r: r, rPr: r.CreateElement("w:rPr")}
	t := r.CreateElement("w:t")
	t.CreateAttr("xml:space", "preserve")
	t.SetText(text)
	return run
}

func (r *Run) setRPr(tag string, attrs map[string]string) {
	el := r.rPr.SelectElement(tag)
	if el == nil {
		el = r.rPr.CreateElement(tag)
	}
	for k, v := range attrs {
		el.CreateAttr(k, v)
	}
}

// SetBold makes the run bold.
func (r *Run) SetBold() *Run {
	r.setRPr("w:b", nil)
	return r
}

// SetItalic makes the run italic.
func (r *Run) SetItalic() *Run {
	r.setRPr("w:i", nil)
	return r
}

// SetUnderline underlines the run.
func (r *Run) SetUnderline() *Run {
	r.setRPr("w:u", map[string]string{"w:val": "single"})
	return r
}

// SetColor sets the run color from a RRGGBB hex value.
func (r *Run) SetColor(hex string) *Run {
	r.setRPr("w:color", map[string]string{"w:val": hex})
	return r
}

// SetSize sets the run font size in points.
func (r *Run) SetSize(pt int) *Run {
	r.setRPr("w:sz", map[string]string{"w:val": fmt.Sprintf("%d", pt*2)})
	r.setRPr("w:szCs", map[string]string{"w:val": fmt.Sprintf("%d", pt*2)})
	return r
}

// SetFont sets the run typeface.
func (r *Run) SetFont(name string) *Run {
	r.setRPr("w:rFonts", map[string]string{"w:ascii": name, "w:hAnsi": name, "w:cs": name})
	return r
}

// AddHyperlink appends a hyperlink run pointing at an external URL. The link
// text gets the conventional blue underlined styling.
func (p *Paragraph) AddHyperlink(text, url string) *Run {
	id := p.d.addRelationship(relTypeHyperlink, url, true)
	h := p.p.CreateElement("w:hyperlink")
	h.CreateAttr("r:id", id)
	run := addRun(h, text)
	run.SetColor("0000FF").SetUnderline()
	return run
}
