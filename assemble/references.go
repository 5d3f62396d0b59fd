package assemble

import (
	"regexp"
	"strings"
)

var (
	refPrefixRe = regexp.MustCompile(`^\[\d+\]\s*`)
	urlRe       = regexp.MustCompile(`https?://[^\s]+`)
)

// finalizeReferences merges manually supplied references with the URLs the
// citation ledger collected during rendering. Manual entries are stripped of
// any pre-existing "[n] " prefix so re-numbering already-numbered input stays
// idempotent, ledger URLs already textually present in a manual reference are
// dropped, and the survivors are appended in assignment order as
// "[Online]. Available: {url}" entries. The caller renumbers the combined
// list 1..N on emission.
func finalizeReferences(manual []string, led *ledger) []string {
	cleaned := make([]string, 0, len(manual))
	for _, ref := range manual {
		cleaned = append(cleaned, refPrefixRe.ReplaceAllString(strings.TrimSpace(ref), ""))
	}

	out := cleaned
	for _, url := range led.order {
		cited := false
		for _, ref := range cleaned {
			if strings.Contains(ref, url) {
				cited = true
				break
			}
		}
		if !cited {
			out = append(out, "[Online]. Available: "+url)
		}
	}
	return out
}
