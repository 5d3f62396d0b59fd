package docx

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/beevik/etree"
	"github.com/h2non/filetype"
)

// AddImageParagraph appends a centered paragraph holding an inline picture
// scaled to widthInches with aspect ratio preserved. Only raster payloads the
// package can embed directly (png, jpeg, gif) are accepted.
func (d *Document) AddImageParagraph(data []byte, widthInches float64) error {
	kind, _ := filetype.Match(data)
	switch kind.Extension {
	case "png", "jpg", "gif":
	default:
		return fmt.Errorf("unsupported picture payload type %q", kind.Extension)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("undecodable picture payload: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("picture payload has degenerate dimensions %dx%d", cfg.Width, cfg.Height)
	}

	cx := emu(widthInches)
	cy := int64(float64(cx) * float64(cfg.Height) / float64(cfg.Width))

	name := fmt.Sprintf("media/image%d.%s", len(d.media)+1, kind.Extension)
	d.media = append(d.media, mediaPart{name: name, ext: kind.Extension, data: data})
	relID := d.addRelationship(relTypeImage, name, false)

	p := d.AddParagraph().SetAlignment(AlignCenter)
	r := p.p.CreateElement("w:r")
	r.CreateElement("w:rPr")
	appendInlineDrawing(r, relID, len(d.media), cx, cy)
	return nil
}

// appendInlineDrawing emits the DrawingML boilerplate for one inline picture.
func appendInlineDrawing(r *etree.Element, relID string, docPrID int, cx, cy int64) {
	drawing := r.CreateElement("w:drawing")

	inline := drawing.CreateElement("wp:inline")
	for _, a := range []string{"distT", "distB", "distL", "distR"} {
		inline.CreateAttr(a, "0")
	}

	extent := inline.CreateElement("wp:extent")
	extent.CreateAttr("cx", fmt.Sprintf("%d", cx))
	extent.CreateAttr("cy", fmt.Sprintf("%d", cy))

	docPr := inline.CreateElement("wp:docPr")
	docPr.CreateAttr("id", fmt.Sprintf("%d", docPrID))
	docPr.CreateAttr("name", fmt.Sprintf("Picture %d", docPrID))

	graphic := inline.CreateElement("a:graphic")
	graphicData := graphic.CreateElement("a:graphicData")
	graphicData.CreateAttr("uri", nsPic)

	pic := graphicData.CreateElement("pic:pic")

	nvPicPr := pic.CreateElement("pic:nvPicPr")
	cNvPr := nvPicPr.CreateElement("pic:cNvPr")
	cNvPr.CreateAttr("id", fmt.Sprintf("%d", docPrID))
	cNvPr.CreateAttr("name", fmt.Sprintf("Picture %d", docPrID))
	nvPicPr.CreateElement("pic:cNvPicPr")

	blipFill := pic.CreateElement("pic:blipFill")
	blip := blipFill.CreateElement("a:blip")
	blip.CreateAttr("r:embed", relID)
	blipFill.CreateElement("a:stretch").CreateElement("a:fillRect")

	spPr := pic.CreateElement("pic:spPr")
	xfrm := spPr.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", "0")
	off.CreateAttr("y", "0")
	ext := xfrm.CreateElement("a:ext")
	ext.CreateAttr("cx", fmt.Sprintf("%d", cx))
	ext.CreateAttr("cy", fmt.Sprintf("%d", cy))
	geom := spPr.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")
}
