package assemble

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"ipg/docx"
	"ipg/formula"
	"ipg/paper"
)

func (st *buildState) renderSection(sec *paper.Section, idx int) {
	where := fmt.Sprintf("section %d", idx)
	st.addHeading(fmt.Sprintf("%s. %s", romanNumeral(idx), strings.ToUpper(sec.Heading)))

	if len(strings.TrimSpace(sec.Content)) > 0 {
		st.renderBody(sec.Content)
	}
	st.renderMedia(sec.Images, sec.Tables, sec.Formulas, where, fmt.Sprintf("%d", idx))

	for j := range sec.Subsections {
		st.renderSubsection(&sec.Subsections[j], idx, j+1)
	}
}

func (st *buildState) renderSubsection(sub *paper.Subsection, secIdx, subIdx int) {
	letter := subsectionLetter(subIdx)
	where := fmt.Sprintf("subsection %d.%s", secIdx, letter)
	st.addHeading(fmt.Sprintf("%s. %s", letter, sub.Heading))

	if len(strings.TrimSpace(sub.Content)) > 0 {
		st.renderBody(sub.Content)
	}
	st.renderMedia(sub.Images, sub.Tables, sub.Formulas, where, fmt.Sprintf("%d.%d", secIdx, subIdx))
}

// renderBody runs the two rewrite passes (citations, then footnotes over the
// rewritten text) and emits the result as one justified paragraph.
func (st *buildState) renderBody(content string) {
	p := st.doc.AddParagraph().SetAlignment(docx.AlignJustify)
	p.AddRun(rewriteBody(content, st.led))
}

// renderMedia emits images, tables and formulas in that fixed order. Every
// individual failure is logged, recorded as a skip and the rest of the
// document continues.
func (st *buildState) renderMedia(images []paper.Image, tables []paper.Table, formulas []string, where, eqPrefix string) {
	for i := range images {
		if err := st.embedFigure(&images[i]); err != nil {
			st.rpt.skipped(AssetFigure, where, err)
			st.log.Warn("Skipping image", zap.String("where", where), zap.Error(err))
			continue
		}
		st.rpt.embedded(AssetFigure, where)
	}

	for _, tbl := range tables {
		if err := st.embedTable(tbl); err != nil {
			st.rpt.skipped(AssetTable, where, err)
			st.log.Warn("Skipping table", zap.String("where", where), zap.Error(err))
			continue
		}
		st.rpt.embedded(AssetTable, where)
	}

	for k, f := range formulas {
		if !formula.Accept(f) {
			// upstream validation already filters these, applied here again
			// since the renderer cannot rely on being called behind it
			st.rpt.skipped(AssetEquation, where, fmt.Errorf("formula %q does not look like a formula", f))
			st.log.Warn("Skipping formula", zap.String("where", where), zap.String("formula", f))
			continue
		}
		if err := st.embedFormula(f, fmt.Sprintf("%s.%d", eqPrefix, k+1)); err != nil {
			st.rpt.skipped(AssetEquation, where, err)
			st.log.Warn("Skipping formula", zap.String("where", where), zap.Error(err))
			continue
		}
		st.rpt.embedded(AssetEquation, where)
	}
}

func (st *buildState) embedFigure(img *paper.Image) error {
	raster := img.Raster
	if raster == nil {
		var err error
		if raster, err = paper.NormalizePayload(img.Data); err != nil {
			return err
		}
	}
	if err := st.doc.AddImageParagraph(raster, st.cfg.ImageWidth); err != nil {
		return err
	}
	st.figureCount++
	caption := st.doc.AddParagraph().SetAlignment(docx.AlignCenter)
	caption.AddRun(fmt.Sprintf("Fig. %d: %s", st.figureCount, img.Caption))
	return nil
}

// embedTable renders the grid with the first row's column count, padding
// short rows with empty cells and truncating long ones.
func (st *buildState) embedTable(tbl paper.Table) error {
	if len(tbl) == 0 || len(tbl[0]) == 0 {
		return fmt.Errorf("table has no cells")
	}
	cols := len(tbl[0])
	grid := make([][]string, len(tbl))
	for i, row := range tbl {
		cells := make([]string, cols)
		copy(cells, row)
		grid[i] = cells
	}
	if err := st.doc.AddTable(grid); err != nil {
		return err
	}
	st.tableCount++
	caption := st.doc.AddParagraph().SetAlignment(docx.AlignCenter)
	caption.AddRun(fmt.Sprintf("Table %d: Data Table", st.tableCount))
	return nil
}

func (st *buildState) embedFormula(f, eqNumber string) error {
	path, err := st.assets.render(f, st.cfg.FormulaFontSize)
	if err != nil {
		return err
	}
	defer st.assets.release(path)

	raster, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read rasterized formula: %w", err)
	}
	if err := st.doc.AddImageParagraph(raster, st.cfg.FormulaWidth); err != nil {
		return err
	}
	caption := st.doc.AddParagraph().SetAlignment(docx.AlignCenter)
	caption.AddRun(fmt.Sprintf("Equation %s: %s", eqNumber, f))
	return nil
}
