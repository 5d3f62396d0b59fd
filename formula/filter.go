// Package formula implements the permissive formula shape filter and the
// rasterizer turning accepted formula strings into embeddable raster images.
//
// This is intentionally not a LaTeX engine: the filter is a shape heuristic
// and the rasterizer draws the raw string, it does not typeset it.
package formula

import "regexp"

// One or more backslash-prefixed command tokens, each optionally followed by
// brace-delimited arguments, separated by whitespace. Rejects plain text
// masquerading as a formula.
var shapeRe = regexp.MustCompile(`^\s*\\[a-zA-Z]+(\{[^{}]*\})*(\s+\\[a-zA-Z]+(\{[^{}]*\})*)*\s*$`)

// Accept reports whether the string looks like a formula we are willing to
// render. Applied both by input validation and defensively by the renderer.
func Accept(s string) bool {
	return shapeRe.MatchString(s)
}
