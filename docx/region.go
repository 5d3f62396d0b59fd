package docx

import (
	"fmt"

	"github.com/beevik/etree"
)

// Region is a contiguous page area with its own geometry and column layout.
// Layout setters are idempotent - applying the same layout twice leaves a
// single w:cols definition behind.
type Region struct {
	page   PageGeometry
	sectPr *etree.Element
}

func newRegion(page PageGeometry) *Region {
	r := &Region{page: page, sectPr: etree.NewElement("w:sectPr")}
	r.applyGeometry()
	return r
}

func (r *Region) applyGeometry() {
	for _, tag := range []string{"w:pgSz", "w:pgMar"} {
		if el := r.sectPr.SelectElement(tag); el != nil {
			r.sectPr.RemoveChild(el)
		}
	}

	sz := r.sectPr.CreateElement("w:pgSz")
	sz.CreateAttr("w:w", fmt.Sprintf("%d", twips(r.page.Width)))
	sz.CreateAttr("w:h", fmt.Sprintf("%d", twips(r.page.Height)))

	mar := r.sectPr.CreateElement("w:pgMar")
	mar.CreateAttr("w:top", fmt.Sprintf("%d", twips(r.page.MarginTop)))
	mar.CreateAttr("w:right", fmt.Sprintf("%d", twips(r.page.MarginRight)))
	mar.CreateAttr("w:bottom", fmt.Sprintf("%d", twips(r.page.MarginBottom)))
	mar.CreateAttr("w:left", fmt.Sprintf("%d", twips(r.page.MarginLeft)))
}

// SetPageGeometry replaces the region's page size and margins.
func (r *Region) SetPageGeometry(page PageGeometry) {
	r.page = page
	r.applyGeometry()
}

func (r *Region) setCols(build func(cols *etree.Element)) {
	for {
		el := r.sectPr.SelectElement("w:cols")
		if el == nil {
			break
		}
		r.sectPr.RemoveChild(el)
	}
	build(r.sectPr.CreateElement("w:cols"))
}

// SetSingleColumn lays the region out as one full-width column.
func (r *Region) SetSingleColumn() {
	r.setCols(func(cols *etree.Element) {
		cols.CreateAttr("w:num", "1")
	})
}

// SetTwoColumn lays the region out as two equal columns separated by the
// given gutter (in twips).
func (r *Region) SetTwoColumn(gutterTwips int) {
	r.setCols(func(cols *etree.Element) {
		cols.CreateAttr("w:num", "2")
		cols.CreateAttr("w:space", fmt.Sprintf("%d", gutterTwips))
	})
}
