// Package similarity inspects a produced document for repeated content: it
// extracts paragraph text, splits it into sentences, validates bracketed
// citations against the reference block and flags sentence pairs whose
// shingle embeddings are close under cosine similarity.
package similarity

import (
	"strings"
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"
)

// Splitter wraps a trained punkt sentence tokenizer. Papers are produced in
// English, so the embedded English model is the only one loaded.
type Splitter struct {
	*sentences.DefaultSentenceTokenizer
}

func NewSplitter(log *zap.Logger) *Splitter {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		log.Warn("Unable to load sentence tokenizer model, turning off sentence splitting", zap.Error(err))
		return nil
	}
	return &Splitter{tok}
}

// Split returns slice of sentences.
func (s *Splitter) Split(in string) []string {

	var result []string
	if s == nil {
		// sentence tokenizer is off
		in = strings.TrimSpace(in)
		if len(in) > 0 {
			result = append(result, in)
		}
		return result
	}

	for _, sentence := range s.Tokenize(in) {
		text := strings.TrimSpace(sentence.Text)
		if len(text) > 0 {
			result = append(result, text)
		}
	}
	return result
}

// SplitWords returns lowercased word tokens, punctuation stripped.
func SplitWords(in string) []string {
	var (
		result []string
		word   strings.Builder
	)
	flush := func() {
		if word.Len() > 0 {
			result = append(result, word.String())
			word.Reset()
		}
	}
	for _, sym := range strings.ToLower(in) {
		if unicode.IsLetter(sym) || unicode.IsNumber(sym) {
			word.WriteRune(sym)
			continue
		}
		flush()
	}
	flush()
	return result
}
