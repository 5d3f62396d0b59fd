package assemble

import "fmt"

// AssetKind identifies the class of an embedded media asset.
type AssetKind string

const (
	AssetFigure   AssetKind = "figure"
	AssetTable    AssetKind = "table"
	AssetEquation AssetKind = "equation"
)

// Outcome records the fate of a single media asset: embedded, or skipped with
// the reason. Skips never abort the build.
type Outcome struct {
	Kind     AssetKind
	Where    string // structural position, e.g. "section 2" or "subsection 2.A"
	Embedded bool
	Reason   string // set when skipped
}

// Report collects per-asset outcomes of one build.
type Report struct {
	BuildID  string
	Outcomes []Outcome
}

func (r *Report) embedded(kind AssetKind, where string) {
	r.Outcomes = append(r.Outcomes, Outcome{Kind: kind, Where: where, Embedded: true})
}

func (r *Report) skipped(kind AssetKind, where string, err error) {
	r.Outcomes = append(r.Outcomes, Outcome{Kind: kind, Where: where, Reason: err.Error()})
}

// Embedded counts successfully embedded assets of the given kind.
func (r *Report) Embedded(kind AssetKind) int {
	var n int
	for _, o := range r.Outcomes {
		if o.Kind == kind && o.Embedded {
			n++
		}
	}
	return n
}

// Skipped counts skipped assets of the given kind.
func (r *Report) Skipped(kind AssetKind) int {
	var n int
	for _, o := range r.Outcomes {
		if o.Kind == kind && !o.Embedded {
			n++
		}
	}
	return n
}

// GenerationError wraps an unrecoverable container writer failure. It is the
// only error that aborts a build after rendering has begun.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("failed to generate document: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
