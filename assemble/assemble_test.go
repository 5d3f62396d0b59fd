package assemble

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"ipg/config"
	"ipg/docx"
	"ipg/paper"
	"ipg/state"
)

func setupTestContext(t *testing.T) context.Context {
	t.Helper()

	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Document.WorkDir = t.TempDir()

	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Cfg = cfg
	env.Log = zaptest.NewLogger(t)
	return ctx
}

func pngPayload(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 8, 4))); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func minimalPaper() *paper.Document {
	return &paper.Document{
		Title:        "A Study of Things",
		Authors:      []string{"A. Author", "B. Author"},
		Affiliations: []string{"Some University"},
		Emails:       []string{"a@example.com"},
		Abstract:     "This is the abstract.",
		Keywords:     []string{"things", "studies"},
		Sections: []paper.Section{
			{Heading: "Introduction", Content: "Opening words."},
		},
	}
}

// extractParagraphs returns the text of every paragraph in the produced
// package in document order.
func extractParagraphs(t *testing.T, data []byte) []string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("produced package is not a zip: %v", err)
	}
	var body []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				t.Fatalf("unable to open document body: %v", err)
			}
			body, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				t.Fatalf("unable to read document body: %v", err)
			}
		}
	}
	if body == nil {
		t.Fatal("produced package has no word/document.xml")
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		t.Fatalf("document body is not valid XML: %v", err)
	}

	var collectText func(el *etree.Element, sb *strings.Builder)
	collectText = func(el *etree.Element, sb *strings.Builder) {
		if el.Tag == "t" {
			sb.WriteString(el.Text())
			return
		}
		for _, child := range el.ChildElements() {
			collectText(child, sb)
		}
	}

	var paras []string
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		if el.Tag == "p" {
			var sb strings.Builder
			collectText(el, &sb)
			paras = append(paras, sb.String())
			return
		}
		for _, child := range el.ChildElements() {
			walk(child)
		}
	}
	walk(doc.Root())
	return paras
}

func findParagraph(paras []string, text string) bool {
	for _, p := range paras {
		if p == text {
			return true
		}
	}
	return false
}

func TestBuildMinimalDocument(t *testing.T) {
	ctx := setupTestContext(t)

	data, rpt, err := Build(ctx, minimalPaper())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Build() produced no bytes")
	}
	if len(rpt.Outcomes) != 0 {
		t.Errorf("Report has %d outcomes, want 0", len(rpt.Outcomes))
	}

	paras := extractParagraphs(t, data)
	wantParas := []string{
		"A STUDY OF THINGS",
		"A. Author, B. Author",
		"Some University",
		"a@example.com",
		"Abstract",
		"This is the abstract.",
		"Keywords",
		"things, studies",
		"I. INTRODUCTION",
		"Opening words.",
		"References",
	}
	for _, want := range wantParas {
		if !findParagraph(paras, want) {
			t.Errorf("paragraph %q not found in output", want)
		}
	}
}

func TestBuildValidationFailsBeforeRendering(t *testing.T) {
	ctx := setupTestContext(t)

	// scenario: subsection with empty heading
	d := minimalPaper()
	d.Sections[0].Subsections = []paper.Subsection{{Heading: " ", Content: "text"}}

	data, _, err := Build(ctx, d)
	var vErr *paper.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Build() error = %v, want ValidationError", err)
	}
	if data != nil {
		t.Error("Build() produced bytes despite validation failure")
	}
}

func TestBuildFigureNumbering(t *testing.T) {
	ctx := setupTestContext(t)
	payload := pngPayload(t)

	d := minimalPaper()
	d.Sections = []paper.Section{
		{
			Heading: "First",
			Content: "text",
			Images:  []paper.Image{{Caption: "one", Data: payload}},
			Subsections: []paper.Subsection{
				{Heading: "Nested", Content: "text", Images: []paper.Image{{Caption: "two", Data: payload}}},
			},
		},
		{
			Heading: "Second",
			Content: "text",
			Images:  []paper.Image{{Caption: "three", Data: payload}},
		},
	}

	data, rpt, err := Build(ctx, d)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := rpt.Embedded(AssetFigure); got != 3 {
		t.Errorf("embedded figures = %d, want 3", got)
	}

	paras := extractParagraphs(t, data)
	for _, want := range []string{"Fig. 1: one", "Fig. 2: two", "Fig. 3: three"} {
		if !findParagraph(paras, want) {
			t.Errorf("caption %q not found in output", want)
		}
	}
}

func TestBuildSkipsBadImage(t *testing.T) {
	ctx := setupTestContext(t)

	d := minimalPaper()
	d.Sections[0].Images = []paper.Image{
		{Caption: "broken", Data: "no-base64!!"},
		{Caption: "good", Data: pngPayload(t)},
	}

	data, rpt, err := Build(ctx, d)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := rpt.Skipped(AssetFigure); got != 1 {
		t.Errorf("skipped figures = %d, want 1", got)
	}
	if got := rpt.Embedded(AssetFigure); got != 1 {
		t.Errorf("embedded figures = %d, want 1", got)
	}

	// the surviving image still numbers from 1 and its caption is present
	paras := extractParagraphs(t, data)
	if !findParagraph(paras, "Fig. 1: good") {
		t.Error("caption for surviving image not found")
	}
	if findParagraph(paras, "Fig. 1: broken") || findParagraph(paras, "Fig. 2: good") {
		t.Error("skipped image left a caption behind")
	}
}

func TestBuildTableNumberingAndShape(t *testing.T) {
	ctx := setupTestContext(t)

	d := minimalPaper()
	d.Sections[0].Tables = []paper.Table{
		{{"h1", "h2"}, {"a"}, {"b", "c", "d"}}, // ragged rows
		{},                                     // empty, skipped
	}

	data, rpt, err := Build(ctx, d)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := rpt.Embedded(AssetTable); got != 1 {
		t.Errorf("embedded tables = %d, want 1", got)
	}
	if got := rpt.Skipped(AssetTable); got != 1 {
		t.Errorf("skipped tables = %d, want 1", got)
	}

	paras := extractParagraphs(t, data)
	if !findParagraph(paras, "Table 1: Data Table") {
		t.Error("table caption not found")
	}
	if findParagraph(paras, "Table 2: Data Table") {
		t.Error("skipped table left a caption behind")
	}
}

func TestBuildEquationCaptions(t *testing.T) {
	ctx := setupTestContext(t)

	d := minimalPaper()
	d.Sections = []paper.Section{
		{
			Heading:  "Methods",
			Content:  "text",
			Formulas: []string{`\frac{1}{2}`, `\sqrt{x}`},
			Subsections: []paper.Subsection{
				{Heading: "Detail", Content: "text", Formulas: []string{`\alpha`}},
			},
		},
	}

	data, rpt, err := Build(ctx, d)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := rpt.Embedded(AssetEquation); got != 3 {
		t.Errorf("embedded equations = %d, want 3", got)
	}

	paras := extractParagraphs(t, data)
	for _, want := range []string{
		`Equation 1.1: \frac{1}{2}`,
		`Equation 1.2: \sqrt{x}`,
		`Equation 1.1.1: \alpha`,
	} {
		if !findParagraph(paras, want) {
			t.Errorf("caption %q not found in output", want)
		}
	}
}

func TestBuildCitationsAcrossSections(t *testing.T) {
	ctx := setupTestContext(t)

	d := minimalPaper()
	d.References = []string{"[1] A. Author, Known Work."}
	d.Sections = []paper.Section{
		{Heading: "First", Content: "See [doc](http://x.com)"},
		{Heading: "Second", Content: "Also [again](http://x.com) and [new](http://y.com)"},
	}

	data, _, err := Build(ctx, d)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	paras := extractParagraphs(t, data)
	if !findParagraph(paras, "See [2]") {
		t.Error("first citation did not render as [2]")
	}
	if !findParagraph(paras, "Also [2] and [3]") {
		t.Error("repeated URL did not reuse its index")
	}
	for _, want := range []string{
		"[1] A. Author, Known Work.",
		"[2] [Online]. Available: http://x.com",
		"[3] [Online]. Available: http://y.com",
	} {
		if !findParagraph(paras, want) {
			t.Errorf("reference entry %q not found", want)
		}
	}
}

func TestBuildAppendix(t *testing.T) {
	ctx := setupTestContext(t)

	d := minimalPaper()
	d.Appendix = []string{"extra material", "more material"}

	data, _, err := Build(ctx, d)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	paras := extractParagraphs(t, data)
	for _, want := range []string{"Appendix", "A. extra material", "B. more material"} {
		if !findParagraph(paras, want) {
			t.Errorf("paragraph %q not found", want)
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	ctx := setupTestContext(t)

	d := minimalPaper()
	d.Sections[0].Images = []paper.Image{{Caption: "fig", Data: pngPayload(t)}}
	d.Sections[0].Tables = []paper.Table{{{"a", "b"}, {"c", "d"}}}

	first, _, err := Build(ctx, d)
	if err != nil {
		t.Fatalf("first Build() error = %v", err)
	}
	second, _, err := Build(ctx, d)
	if err != nil {
		t.Fatalf("second Build() error = %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("two builds of identical input differ")
	}
}

// The renderer re-applies the formula shape check even though validation
// filters input before it; that branch must both record the skip and log it.
func TestRenderMediaLogsRejectedFormula(t *testing.T) {
	ctx := setupTestContext(t)
	cfg := &state.EnvFromContext(ctx).Cfg.Document

	core, logs := observer.New(zap.WarnLevel)

	assets, err := newFormulaAssets(t.TempDir())
	if err != nil {
		t.Fatalf("newFormulaAssets() error = %v", err)
	}
	defer assets.Close()

	st := &buildState{
		doc: docx.New(docx.PageGeometry{
			Width: cfg.Page.Width, Height: cfg.Page.Height,
			MarginTop: cfg.Page.MarginTop, MarginBottom: cfg.Page.MarginBottom,
			MarginLeft: cfg.Page.MarginLeft, MarginRight: cfg.Page.MarginRight,
		}, cfg.BaseFont, cfg.BaseFontSize),
		cfg:    cfg,
		led:    newLedger(0),
		rpt:    &Report{},
		assets: assets,
		log:    zap.New(core),
	}

	st.renderMedia(nil, nil, []string{"not a formula"}, "section 1", "1")

	if got := st.rpt.Skipped(AssetEquation); got != 1 {
		t.Errorf("skipped equations = %d, want 1", got)
	}
	if n := logs.FilterMessage("Skipping formula").Len(); n != 1 {
		t.Errorf("skip log lines = %d, want 1", n)
	}
}
