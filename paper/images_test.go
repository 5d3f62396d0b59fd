package paper

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"testing"

	"go.uber.org/zap/zaptest"
)

func encodedPNG(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestNormalizePayloadPNGPassThrough(t *testing.T) {
	payload := encodedPNG(t)
	raw, _ := base64.StdEncoding.DecodeString(payload)

	got, err := NormalizePayload(payload)
	if err != nil {
		t.Fatalf("NormalizePayload() error = %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Error("png payload was not passed through unchanged")
	}
}

func TestNormalizePayloadDataURI(t *testing.T) {
	payload := "data:image/png;base64," + encodedPNG(t)
	if _, err := NormalizePayload(payload); err != nil {
		t.Errorf("NormalizePayload() rejected data URI payload: %v", err)
	}
}

func TestNormalizePayloadSVG(t *testing.T) {
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect width="10" height="10" fill="red"/></svg>`
	payload := base64.StdEncoding.EncodeToString([]byte(svg))

	got, err := NormalizePayload(payload)
	if err != nil {
		t.Fatalf("NormalizePayload() error = %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(got)); err != nil {
		t.Errorf("rasterized svg is not a valid PNG: %v", err)
	}
}

func TestNormalizePayloadErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"bad base64", "!!not-base64!!"},
		{"empty", ""},
		{"junk bytes", base64.StdEncoding.EncodeToString([]byte("junk"))},
		{"truncated png", base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\n\x00"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NormalizePayload(tt.in); err == nil {
				t.Error("NormalizePayload() accepted invalid payload")
			}
		})
	}
}

func TestPrepare(t *testing.T) {
	log := zaptest.NewLogger(t)
	d := validDocument()
	d.Sections[0].Images = []Image{{Caption: "c", Data: encodedPNG(t)}}

	if err := Prepare(d, log); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if d.Sections[0].Images[0].Raster == nil {
		t.Error("Prepare() did not fill raster bytes")
	}
}

func TestPrepareRejectsBadImage(t *testing.T) {
	log := zaptest.NewLogger(t)
	d := validDocument()
	d.Sections[0].Images = []Image{{Caption: "c", Data: "broken"}}

	err := Prepare(d, log)
	if err == nil {
		t.Fatal("Prepare() accepted undecodable image")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Errorf("Prepare() error type = %T, want *ValidationError", err)
	}
}
