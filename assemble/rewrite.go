package assemble

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	linkRe     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)]+)\)`)
	footnoteRe = regexp.MustCompile(`\[\[footnote:(.*?)\]\]`)
	noteSlotRe = regexp.MustCompile("\x00([0-9]+)\x00")
)

// ledger assigns citation indices to URLs in first-seen document order.
// Indices continue after the manually supplied reference count, and the same
// URL always resolves to its first-assigned index no matter where or with
// what anchor text it reappears.
type ledger struct {
	order []string
	index map[string]int
	next  int
}

func newLedger(manualRefs int) *ledger {
	return &ledger{index: make(map[string]int), next: manualRefs + 1}
}

func (l *ledger) cite(url string) int {
	if idx, ok := l.index[url]; ok {
		return idx
	}
	idx := l.next
	l.next++
	l.index[url] = idx
	l.order = append(l.order, url)
	return idx
}

// extractCitations rewrites every markdown-style link in text to a bracketed
// numeric citation, discarding the anchor label and recording the URL in the
// ledger.
func extractCitations(text string, led *ledger) string {
	return linkRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := linkRe.FindStringSubmatch(m)
		return fmt.Sprintf("[%d]", led.cite(sub[2]))
	})
}

// inlineFootnotes replaces every [[footnote:NOTE]] marker with plain inline
// text. The output is ordinary body text, no separate note anchors are
// produced.
func inlineFootnotes(text string) string {
	return footnoteRe.ReplaceAllString(text, "[*] $1")
}

// rewriteBody runs the two text passes in their fixed order: citations first,
// then footnotes. Footnote markers are lifted out before the citation pass so
// their payloads are never scanned for citation links, then restored in place
// for the footnote pass.
func rewriteBody(text string, led *ledger) string {
	var notes []string
	text = footnoteRe.ReplaceAllStringFunc(text, func(m string) string {
		notes = append(notes, m)
		return "\x00" + strconv.Itoa(len(notes)-1) + "\x00"
	})
	text = extractCitations(text, led)
	text = noteSlotRe.ReplaceAllStringFunc(text, func(m string) string {
		i, err := strconv.Atoi(m[1 : len(m)-1])
		if err != nil || i >= len(notes) {
			return m
		}
		return notes[i]
	})
	return inlineFootnotes(text)
}
