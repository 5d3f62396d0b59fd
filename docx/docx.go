// Package docx implements a narrow writer for the OOXML wordprocessing
// container - the only contract the document assembler depends on. It covers
// page regions with column control, styled paragraphs and runs, bordered
// string tables, inline raster pictures and external hyperlinks, and
// serializes everything into a single zip package.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/beevik/etree"
)

const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"

	relTypeStyles    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relTypeImage     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relTypeHyperlink = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	relTypeDocument  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"

	// MIMEType is the content type consumers should use when serving the
	// produced package.
	MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

const (
	twipsPerInch = 1440
	emuPerInch   = 914400
)

// PageGeometry describes page size and margins in inches.
type PageGeometry struct {
	Width, Height              float64
	MarginTop, MarginBottom    float64
	MarginLeft, MarginRight    float64
}

type relationship struct {
	id       string
	relType  string
	target   string
	external bool
}

type mediaPart struct {
	name string // under word/, e.g. media/image1.png
	ext  string
	data []byte
}

// Document accumulates body content and package parts and serializes them on
// demand. Not safe for concurrent use - each build gets its own instance.
type Document struct {
	xml  *etree.Document
	body *etree.Element

	baseFont   string
	baseSizePt int

	rels    []relationship
	media   []mediaPart
	regions []*Region
}

// New creates an empty document with the given page geometry and a single
// page region. Base font and size become the document defaults.
func New(page PageGeometry, baseFont string, baseSizePt int) *Document {
	xml := etree.NewDocument()
	xml.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	root := xml.CreateElement("w:document")
	root.CreateAttr("xmlns:w", nsW)
	root.CreateAttr("xmlns:r", nsR)
	root.CreateAttr("xmlns:wp", nsWP)
	root.CreateAttr("xmlns:a", nsA)
	root.CreateAttr("xmlns:pic", nsPic)

	d := &Document{
		xml:        xml,
		body:       root.CreateElement("w:body"),
		baseFont:   baseFont,
		baseSizePt: baseSizePt,
	}
	d.rels = append(d.rels, relationship{id: "rId1", relType: relTypeStyles, target: "styles.xml"})

	first := newRegion(page)
	d.regions = append(d.regions, first)
	return d
}

// CurrentRegion returns the page region subsequent content is placed into.
func (d *Document) CurrentRegion() *Region {
	return d.regions[len(d.regions)-1]
}

// StartRegion ends the current page region with a continuous break and makes
// a fresh one (inheriting page geometry) current. Content added afterwards
// belongs to the new region.
func (d *Document) StartRegion() *Region {
	prev := d.CurrentRegion()
	// the ended region's properties are carried by a paragraph at the break point
	p := d.body.CreateElement("w:p")
	pPr := p.CreateElement("w:pPr")
	pPr.AddChild(prev.sectPr)

	next := newRegion(prev.page)
	next.sectPr.CreateElement("w:type").CreateAttr("w:val", "continuous")
	d.regions = append(d.regions, next)
	return next
}

func (d *Document) nextRelID() string {
	return fmt.Sprintf("rId%d", len(d.rels)+1)
}

func (d *Document) addRelationship(relType, target string, external bool) string {
	id := d.nextRelID()
	d.rels = append(d.rels, relationship{id: id, relType: relType, target: target, external: external})
	return id
}

// Bytes serializes the package and returns it as a byte buffer.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write serializes the package. Parts are written in a fixed order with
// zero timestamps so that identical content produces identical bytes.
func (d *Document) Write(w io.Writer) error {
	// the trailing region's properties close the body
	d.body.AddChild(d.CurrentRegion().sectPr)
	defer d.body.RemoveChild(d.CurrentRegion().sectPr)

	zw := zip.NewWriter(w)

	if err := writeXMLToZip(zw, "[Content_Types].xml", d.contentTypes()); err != nil {
		return fmt.Errorf("unable to write content types: %w", err)
	}
	if err := writeXMLToZip(zw, "_rels/.rels", packageRels()); err != nil {
		return fmt.Errorf("unable to write package relationships: %w", err)
	}
	if err := writeXMLToZip(zw, "word/_rels/document.xml.rels", d.documentRels()); err != nil {
		return fmt.Errorf("unable to write document relationships: %w", err)
	}
	if err := writeXMLToZip(zw, "word/styles.xml", d.styles()); err != nil {
		return fmt.Errorf("unable to write styles: %w", err)
	}
	if err := writeXMLToZip(zw, "word/document.xml", d.xml); err != nil {
		return fmt.Errorf("unable to write document body: %w", err)
	}
	for _, m := range d.media {
		if err := writeDataToZip(zw, "word/"+m.name, m.data); err != nil {
			return fmt.Errorf("unable to write media part %s: %w", m.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("unable to close output archive: %w", err)
	}
	return nil
}

func (d *Document) contentTypes() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	types := doc.CreateElement("Types")
	types.CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/content-types")

	addDefault := func(ext, ct string) {
		def := types.CreateElement("Default")
		def.CreateAttr("Extension", ext)
		def.CreateAttr("ContentType", ct)
	}
	addDefault("rels", "application/vnd.openxmlformats-package.relationships+xml")
	addDefault("xml", "application/xml")

	seen := map[string]bool{}
	for _, m := range d.media {
		if seen[m.ext] {
			continue
		}
		seen[m.ext] = true
		switch m.ext {
		case "png":
			addDefault("png", "image/png")
		case "jpg":
			addDefault("jpg", "image/jpeg")
		case "gif":
			addDefault("gif", "image/gif")
		}
	}

	addOverride := func(part, ct string) {
		ovr := types.CreateElement("Override")
		ovr.CreateAttr("PartName", part)
		ovr.CreateAttr("ContentType", ct)
	}
	addOverride("/word/document.xml", "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml")
	addOverride("/word/styles.xml", "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml")

	return doc
}

func packageRels() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	rels := doc.CreateElement("Relationships")
	rels.CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/relationships")

	rel := rels.CreateElement("Relationship")
	rel.CreateAttr("Id", "rId1")
	rel.CreateAttr("Type", relTypeDocument)
	rel.CreateAttr("Target", "word/document.xml")

	return doc
}

func (d *Document) documentRels() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	rels := doc.CreateElement("Relationships")
	rels.CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/relationships")

	for _, r := range d.rels {
		rel := rels.CreateElement("Relationship")
		rel.CreateAttr("Id", r.id)
		rel.CreateAttr("Type", r.relType)
		rel.CreateAttr("Target", r.target)
		if r.external {
			rel.CreateAttr("TargetMode", "External")
		}
	}
	return doc
}

func (d *Document) styles() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	styles := doc.CreateElement("w:styles")
	styles.CreateAttr("xmlns:w", nsW)

	defaults := styles.CreateElement("w:docDefaults")
	rPrDefault := defaults.CreateElement("w:rPrDefault")
	rPr := rPrDefault.CreateElement("w:rPr")

	fonts := rPr.CreateElement("w:rFonts")
	fonts.CreateAttr("w:ascii", d.baseFont)
	fonts.CreateAttr("w:hAnsi", d.baseFont)
	fonts.CreateAttr("w:cs", d.baseFont)

	// w:sz is expressed in half-points
	sz := rPr.CreateElement("w:sz")
	sz.CreateAttr("w:val", fmt.Sprintf("%d", d.baseSizePt*2))
	szCs := rPr.CreateElement("w:szCs")
	szCs.CreateAttr("w:val", fmt.Sprintf("%d", d.baseSizePt*2))

	return doc
}

func writeXMLToZip(zw *zip.Writer, name string, doc *etree.Document) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return err
	}
	_, err = doc.WriteTo(w)
	return err
}

func writeDataToZip(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func twips(inches float64) int {
	return int(inches*twipsPerInch + 0.5)
}

func emu(inches float64) int64 {
	return int64(inches*emuPerInch + 0.5)
}
