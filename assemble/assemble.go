// Package assemble turns a validated paper description into a finished
// two-column wordprocessing package. It owns build order, numbering state,
// the citation ledger and the best-effort media embedding policy.
package assemble

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ipg/config"
	"ipg/docx"
	"ipg/paper"
	"ipg/state"
)

// Build renders the paper into document bytes. Structural problems surface as
// *paper.ValidationError before any rendering starts, writer failures as
// *GenerationError. Individual media failures are recorded in the returned
// Report and skipped. Each call gets fresh numbering state and ledger, so
// concurrent builds are independent.
func Build(ctx context.Context, d *paper.Document) ([]byte, *Report, error) {
	env := state.EnvFromContext(ctx)
	cfg := &env.Cfg.Document

	if err := paper.Validate(d); err != nil {
		return nil, nil, err
	}

	assets, err := newFormulaAssets(cfg.WorkDir)
	if err != nil {
		return nil, nil, &GenerationError{Err: err}
	}
	defer assets.Close()

	st := &buildState{
		doc: docx.New(docx.PageGeometry{
			Width:        cfg.Page.Width,
			Height:       cfg.Page.Height,
			MarginTop:    cfg.Page.MarginTop,
			MarginBottom: cfg.Page.MarginBottom,
			MarginLeft:   cfg.Page.MarginLeft,
			MarginRight:  cfg.Page.MarginRight,
		}, cfg.BaseFont, cfg.BaseFontSize),
		cfg:    cfg,
		led:    newLedger(len(d.References)),
		rpt:    &Report{BuildID: uuid.New().String()},
		assets: assets,
	}
	st.log = env.Log.With(zap.String("id", st.rpt.BuildID))
	st.log.Debug("Starting document build", zap.String("title", d.Title))

	st.renderTitleBlock(d)

	st.doc.StartRegion().SetTwoColumn(cfg.ColumnGutter)

	st.renderAbstract(d.Abstract)
	st.renderKeywords(d.Keywords)

	for i := range d.Sections {
		st.renderSection(&d.Sections[i], i+1)
	}

	st.renderReferences(d.References)
	st.renderAppendix(d.Appendix)

	data, err := st.doc.Bytes()
	if err != nil {
		return nil, nil, &GenerationError{Err: err}
	}
	if cfg.FixZip {
		if data, err = docx.StripDataDescriptors(data); err != nil {
			return nil, nil, &GenerationError{Err: err}
		}
	}

	st.log.Info("Document build finished",
		zap.Int("size", len(data)),
		zap.Int("figures", st.rpt.Embedded(AssetFigure)),
		zap.Int("tables", st.rpt.Embedded(AssetTable)),
		zap.Int("equations", st.rpt.Embedded(AssetEquation)),
		zap.Int("skipped", len(st.rpt.Outcomes)-st.rpt.Embedded(AssetFigure)-st.rpt.Embedded(AssetTable)-st.rpt.Embedded(AssetEquation)))
	return data, st.rpt, nil
}

// buildState carries everything one build mutates, threaded explicitly
// through the renderers. Nothing here outlives the build.
type buildState struct {
	doc    *docx.Document
	cfg    *config.DocumentConfig
	led    *ledger
	rpt    *Report
	assets *formulaAssets
	log    *zap.Logger

	figureCount int
	tableCount  int
}

func (st *buildState) renderTitleBlock(d *paper.Document) {
	st.doc.CurrentRegion().SetSingleColumn()

	title := st.doc.AddParagraph().SetAlignment(docx.AlignCenter)
	title.AddRun(strings.ToUpper(d.Title)).SetBold().SetSize(st.cfg.TitleFontSize)

	for _, line := range []string{
		strings.Join(d.Authors, ", "),
		strings.Join(d.Affiliations, "; "),
		strings.Join(d.Emails, ", "),
	} {
		p := st.doc.AddParagraph().SetAlignment(docx.AlignCenter)
		p.AddRun(line)
	}
	st.doc.AddParagraph()
}

func (st *buildState) addHeading(text string) {
	p := st.doc.AddParagraph().SetSpacing(8, 4)
	p.AddRun(text).SetBold()
}

func (st *buildState) renderAbstract(abstract string) {
	st.addHeading("Abstract")
	for _, part := range strings.Split(abstract, "\n") {
		p := st.doc.AddParagraph().SetAlignment(docx.AlignJustify).SetFirstLineIndent(0.2)
		p.AddRun(part).SetBold()
	}
}

func (st *buildState) renderKeywords(keywords []string) {
	st.addHeading("Keywords")
	p := st.doc.AddParagraph().SetAlignment(docx.AlignJustify)
	p.AddRun(strings.Join(keywords, ", "))
}

func (st *buildState) renderReferences(manual []string) {
	st.addHeading("References")
	for i, entry := range finalizeReferences(manual, st.led) {
		p := st.doc.AddParagraph()
		emitWithHyperlinks(p, fmt.Sprintf("[%d] %s", i+1, entry))
	}
}

func (st *buildState) renderAppendix(items []string) {
	if len(items) == 0 {
		return
	}
	st.addHeading("Appendix")
	for i, item := range items {
		p := st.doc.AddParagraph().SetAlignment(docx.AlignJustify)
		p.AddRun(fmt.Sprintf("%s. %s", subsectionLetter(i+1), item))
	}
}

// emitWithHyperlinks writes text into the paragraph turning every literal URL
// into an active link.
func emitWithHyperlinks(p *docx.Paragraph, text string) {
	last := 0
	for _, loc := range urlRe.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			p.AddRun(text[last:loc[0]])
		}
		url := text[loc[0]:loc[1]]
		p.AddHyperlink(url, url)
		last = loc[1]
	}
	if last < len(text) {
		p.AddRun(text[last:])
	}
}
