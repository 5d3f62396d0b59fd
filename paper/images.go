package paper

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"ipg/utils/images"
)

// Prepare decodes every inline image payload and normalizes it to a raster
// format the output container can embed. This is the upstream validation
// collaborator - it runs before the assembler and rejects undecodable sources
// with a ValidationError.
func Prepare(d *Document, log *zap.Logger) error {
	for i := range d.Sections {
		sec := &d.Sections[i]
		if err := prepareImages(sec.Images, log); err != nil {
			return validationErrorf("sections", "invalid image in section '%s': %v", sec.Heading, err)
		}
		for j := range sec.Subsections {
			sub := &sec.Subsections[j]
			if err := prepareImages(sub.Images, log); err != nil {
				return validationErrorf("sections", "invalid image in subsection '%s': %v", sub.Heading, err)
			}
		}
	}
	return nil
}

func prepareImages(imgs []Image, log *zap.Logger) error {
	for i := range imgs {
		if imgs[i].Raster != nil {
			continue
		}
		raster, err := NormalizePayload(imgs[i].Data)
		if err != nil {
			return err
		}
		imgs[i].Raster = raster
		log.Debug("Prepared image payload", zap.Int("index", i), zap.Int("size", len(raster)))
	}
	return nil
}

// NormalizePayload decodes a base64 image payload and converts it to bytes
// ready for embedding: SVG sources are rasterized, formats the container
// cannot hold (bmp, tiff, webp) are re-encoded to PNG, png/jpeg/gif payloads
// pass through after a decodability check.
func NormalizePayload(data string) ([]byte, error) {
	// tolerate data URI payloads from browser clients
	if idx := strings.Index(data, ";base64,"); idx >= 0 && strings.HasPrefix(data, "data:") {
		data = data[idx+len(";base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image payload: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}

	if looksLikeSVG(raw) {
		img, err := images.RasterizeSVGToImage(raw, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("unable to rasterize svg image: %w", err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("unable to encode rasterized svg: %w", err)
		}
		return buf.Bytes(), nil
	}

	kind, _ := filetype.Match(raw)
	switch kind.Extension {
	case "png", "jpg", "gif":
		if _, _, err := image.DecodeConfig(bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("undecodable %s image: %w", kind.Extension, err)
		}
		return raw, nil
	case "bmp", "tif", "webp":
		img, _, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("undecodable %s image: %w", kind.Extension, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("unable to re-encode %s image: %w", kind.Extension, err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported image payload type %q", kind.Extension)
	}
}

func looksLikeSVG(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(head, []byte("<svg"))
}
