package docx

import (
	"fmt"

	"github.com/beevik/etree"
)

// AddTable appends a bordered table built from an already rectangular string
// grid. The caller is responsible for normalizing row widths.
func (d *Document) AddTable(grid [][]string) error {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return fmt.Errorf("table grid is empty")
	}
	cols := len(grid[0])
	for i, row := range grid {
		if len(row) != cols {
			return fmt.Errorf("table row %d has %d cells, want %d", i, len(row), cols)
		}
	}

	tbl := d.body.CreateElement("w:tbl")

	tblPr := tbl.CreateElement("w:tblPr")
	borders := tblPr.CreateElement("w:tblBorders")
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		b := borders.CreateElement("w:" + side)
		b.CreateAttr("w:val", "single")
		b.CreateAttr("w:sz", "4")
		b.CreateAttr("w:color", "000000")
	}

	tblGrid := tbl.CreateElement("w:tblGrid")
	for range cols {
		tblGrid.CreateElement("w:gridCol")
	}

	for _, row := range grid {
		tr := tbl.CreateElement("w:tr")
		for _, cell := range row {
			tc := tr.CreateElement("w:tc")
			addCellParagraph(tc, cell)
		}
	}
	return nil
}

func addCellParagraph(tc *etree.Element, text string) {
	p := tc.CreateElement("w:p")
	p.CreateElement("w:pPr")
	addRun(p, text)
}
