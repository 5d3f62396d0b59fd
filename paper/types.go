// Package paper defines the structured paper description consumed by the
// document assembler and implements input parsing and structural validation.
package paper

// Image is an embedded figure: caption plus inline base64 encoded payload.
type Image struct {
	Caption string `json:"caption"`
	Data    string `json:"data"`

	// Raster is filled by Prepare - decoded payload normalized to a raster
	// format the output container can embed directly.
	Raster []byte `json:"-"`
}

// Table is an ordered sequence of rows, each an ordered sequence of cells.
type Table [][]string

// Subsection is a single nesting level below Section - heading and content are
// both required.
type Subsection struct {
	Heading  string   `json:"heading"`
	Content  string   `json:"content"`
	Images   []Image  `json:"images,omitempty"`
	Formulas []string `json:"formulas,omitempty"`
	Tables   []Table  `json:"tables,omitempty"`
}

// Section must carry content, subsections or both.
type Section struct {
	Heading     string       `json:"heading"`
	Content     string       `json:"content,omitempty"`
	Images      []Image      `json:"images,omitempty"`
	Formulas    []string     `json:"formulas,omitempty"`
	Tables      []Table      `json:"tables,omitempty"`
	Subsections []Subsection `json:"subsections,omitempty"`
}

// Document is the root of the paper description.
type Document struct {
	Title        string    `json:"title"`
	Authors      []string  `json:"authors"`
	Affiliations []string  `json:"affiliations"`
	Emails       []string  `json:"emails"`
	Abstract     string    `json:"abstract"`
	Keywords     []string  `json:"keywords"`
	Sections     []Section `json:"sections"`
	References   []string  `json:"references"`
	Appendix     []string  `json:"appendix,omitempty"`
}
