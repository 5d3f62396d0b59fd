package formula

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

const (
	renderDPI = 144
	padding   = 4 // px around rendered text before tight crop
)

var parseFont = sync.OnceValues(func() (*sfnt.Font, error) {
	return opentype.Parse(goitalic.TTF)
})

// Render draws the formula string centered on a small transparent canvas and
// returns it tightly cropped to content as PNG bytes. Any failure here is
// expected to be treated by the caller as "skip this formula", not as a
// document-level error.
func Render(s string, sizePt float64) ([]byte, error) {
	if sizePt <= 0 {
		return nil, fmt.Errorf("invalid formula font size: %g", sizePt)
	}

	fnt, err := parseFont()
	if err != nil {
		return nil, fmt.Errorf("unable to parse formula font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    sizePt,
		DPI:     renderDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to prepare formula font face: %w", err)
	}
	defer face.Close()

	metrics := face.Metrics()
	width := font.MeasureString(face, s).Ceil() + 2*padding
	height := (metrics.Ascent + metrics.Descent).Ceil() + 2*padding
	if width <= 2*padding {
		return nil, fmt.Errorf("formula measures to empty image")
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.P(padding, padding+metrics.Ascent.Ceil()),
	}
	drawer.DrawString(s)

	cropped := imaging.Crop(dst, contentBounds(dst))

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, fmt.Errorf("unable to encode formula image: %w", err)
	}
	return buf.Bytes(), nil
}

// contentBounds returns the bounding box of non-transparent pixels, falling
// back to the full canvas when nothing was drawn.
func contentBounds(img *image.NRGBA) image.Rectangle {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X, b.Min.Y
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.NRGBAAt(x, y).A != 0 {
				minX = min(minX, x)
				minY = min(minY, y)
				maxX = max(maxX, x)
				maxY = max(maxY, y)
			}
		}
	}
	if minX > maxX || minY > maxY {
		return b
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}
