package similarity

import (
	"hash/fnv"
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// vector is a sparse bag-of-shingles embedding keyed by shingle hash.
type vector map[uint64]float64

// embed builds a hashed shingle vector for one sentence. Text is normalized
// to NFC first so visually identical sentences with different codepoint
// sequences compare equal. Sentences shorter than the shingle size fall back
// to single-word shingles.
func embed(sentence string, shingleSize int) vector {
	words := SplitWords(norm.NFC.String(sentence))
	if len(words) == 0 {
		return vector{}
	}
	if shingleSize < 1 || len(words) < shingleSize {
		shingleSize = 1
	}

	v := make(vector)
	for i := 0; i+shingleSize <= len(words); i++ {
		h := fnv.New64a()
		h.Write([]byte(strings.Join(words[i:i+shingleSize], " ")))
		v[h.Sum64()]++
	}
	return v
}

// cosine returns the cosine similarity of two sparse vectors, 0 when either
// is empty.
func cosine(a, b vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot, na, nb float64
	for k, av := range a {
		na += av * av
		if bv, ok := b[k]; ok {
			dot += av * bv
		}
	}
	for _, bv := range b {
		nb += bv * bv
	}
	if dot == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
