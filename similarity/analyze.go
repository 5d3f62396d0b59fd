package similarity

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"ipg/state"
)

var citationRe = regexp.MustCompile(`\[(\d+)\]`)

// Pair is one flagged sentence pair with its similarity score.
type Pair struct {
	First      string  `json:"sentence_1"`
	Second     string  `json:"sentence_2"`
	Similarity float64 `json:"similarity"`
}

// Report is the outcome of analyzing one document.
type Report struct {
	TotalSentences     int             `json:"total_sentences"`
	CitationValidation map[string]bool `json:"citation_validation"`
	SimilarSentences   []Pair          `json:"similar_sentences"`
	Score              float64         `json:"plagiarism_score"`
}

// Analyze extracts text from a produced document package and reports repeated
// content: every sentence pair scoring above the configured threshold, plus a
// check that each bracketed citation resolves to an entry in the reference
// block. The score is flagged pairs over total sentences, rounded to two
// decimals.
func Analyze(ctx context.Context, document []byte) (*Report, error) {
	env := state.EnvFromContext(ctx)
	cfg := &env.Cfg.Similarity

	text, err := ExtractText(document)
	if err != nil {
		return nil, err
	}

	splitter := NewSplitter(env.Log)
	sentenceList := splitter.Split(text)
	references := extractReferences(splitter, text)

	env.Log.Debug("Analyzing document",
		zap.Int("sentences", len(sentenceList)),
		zap.Int("references", len(references)))

	rpt := &Report{
		TotalSentences:     len(sentenceList),
		CitationValidation: checkCitations(text, references),
		SimilarSentences:   []Pair{},
	}

	vectors := make([]vector, len(sentenceList))
	for i, s := range sentenceList {
		vectors[i] = embed(s, cfg.ShingleSize)
	}
	for i := range sentenceList {
		for j := i + 1; j < len(sentenceList); j++ {
			if sim := cosine(vectors[i], vectors[j]); sim > cfg.Threshold {
				rpt.SimilarSentences = append(rpt.SimilarSentences, Pair{
					First:      sentenceList[i],
					Second:     sentenceList[j],
					Similarity: sim,
				})
			}
		}
	}

	total := max(len(sentenceList), 1)
	rpt.Score = math.Round(float64(len(rpt.SimilarSentences))/float64(total)*100) / 100
	return rpt, nil
}

// extractReferences returns the sentences after the last "References" marker,
// or nothing when the document has no reference block.
func extractReferences(splitter *Splitter, text string) []string {
	lower := strings.ToLower(text)
	idx := strings.LastIndex(lower, "references")
	if idx < 0 {
		return nil
	}
	return splitter.Split(text[idx+len("references"):])
}

// checkCitations maps every bracketed citation found in the text to whether
// its index resolves to a reference entry.
func checkCitations(text string, references []string) map[string]bool {
	out := make(map[string]bool)
	for _, m := range citationRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		out[m[0]] = err == nil && n >= 1 && n <= len(references)
	}
	return out
}
