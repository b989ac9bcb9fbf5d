package corpus

import (
	"context"
	"math"
	"strings"
)

// Character n-gram sizes for the lexical backend. 2-4 grams work well
// for Persian, where stems shift with clitics and plural suffixes.
const (
	minGram = 2
	maxGram = 4
)

// lexicalBackend scores provisions with character n-gram term-frequency
// vectors and cosine similarity. It needs no provider calls at all.
type lexicalBackend struct {
	vectors []map[string]float64
	norms   []float64
}

func newLexicalBackend(texts []string) *lexicalBackend {
	b := &lexicalBackend{
		vectors: make([]map[string]float64, len(texts)),
		norms:   make([]float64, len(texts)),
	}
	for i, text := range texts {
		b.vectors[i] = ngramVector(text)
		b.norms[i] = vectorNorm(b.vectors[i])
	}
	return b
}

// similarities returns the cosine similarity of the query against every
// provision, in corpus order.
func (b *lexicalBackend) similarities(_ context.Context, query string) ([]float64, error) {
	qv := ngramVector(query)
	qn := vectorNorm(qv)

	sims := make([]float64, len(b.vectors))
	if qn == 0 {
		return sims, nil
	}
	for i, dv := range b.vectors {
		sims[i] = dot(qv, dv) / (qn * b.norms[i] + 1e-12)
	}
	return sims, nil
}

// ngramVector builds a term-frequency map of character 2-4 grams over
// the lower-cased rune sequence, whitespace collapsed to single spaces.
func ngramVector(text string) map[string]float64 {
	text = strings.Join(strings.Fields(strings.ToLower(text)), " ")
	runes := []rune(text)

	vec := make(map[string]float64)
	for n := minGram; n <= maxGram; n++ {
		for i := 0; i+n <= len(runes); i++ {
			vec[string(runes[i:i+n])]++
		}
	}
	return vec
}

func vectorNorm(v map[string]float64) float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// dot iterates the smaller map.
func dot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for gram, wa := range a {
		if wb, ok := b[gram]; ok {
			sum += wa * wb
		}
	}
	return sum
}
