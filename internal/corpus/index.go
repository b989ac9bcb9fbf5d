package corpus

import (
	"context"
	"sort"
	"strings"

	"github.com/mmirzaei/mizan/internal/model"
)

// Hybrid fusion weights. Fixed, not free parameters.
const (
	similarityWeight = 0.7
	keywordWeight    = 0.3
)

// backend scores every provision against a query, in corpus order.
type backend interface {
	similarities(ctx context.Context, query string) ([]float64, error)
}

// Index ranks provisions for a free-text query over one of two
// interchangeable backends: lexical n-gram cosine (offline) or dense
// provider embeddings.
type Index struct {
	corpus  *Corpus
	backend backend
}

// NewLexicalIndex builds the offline lexical index.
func NewLexicalIndex(c *Corpus) *Index {
	texts := make([]string, c.Len())
	for i, p := range c.provisions {
		texts[i] = searchText(p)
	}
	return &Index{corpus: c, backend: newLexicalBackend(texts)}
}

// NewDenseIndex builds the embedding-backed index, reusing the sidecar
// file when it matches the active provider and model.
func NewDenseIndex(ctx context.Context, c *Corpus, embedder Embedder, sidecarPath string) (*Index, error) {
	texts := make([]string, c.Len())
	for i, p := range c.provisions {
		texts[i] = searchText(p)
	}
	b, err := newDenseBackend(ctx, embedder, texts, sidecarPath)
	if err != nil {
		return nil, err
	}
	return &Index{corpus: c, backend: b}, nil
}

// Corpus returns the underlying corpus.
func (ix *Index) Corpus() *Corpus { return ix.corpus }

// Retrieve returns the provisions most relevant to query, at most topK,
// discarding fused scores below threshold. With hybrid enabled the
// backend similarity is fused with the keyword-overlap ratio. A backend
// failure yields an empty list and the error; it never panics through.
func (ix *Index) Retrieve(ctx context.Context, query string, topK int, threshold float64, hybrid bool) ([]model.ScoredProvision, error) {
	if topK <= 0 {
		topK = 5
	}

	sims, err := ix.backend.similarities(ctx, query)
	if err != nil {
		return nil, err
	}

	// Nearest-neighbour candidate cut before fusion, matching the
	// top-k vector search the dense path performs.
	candidates := topIndices(sims, topK)

	var results []model.ScoredProvision
	for _, i := range candidates {
		p := ix.corpus.provisions[i]

		score := sims[i]
		if hybrid {
			score = similarityWeight*sims[i] + keywordWeight*keywordOverlap(query, p)
		}
		if score < threshold {
			continue
		}
		results = append(results, model.ScoredProvision{
			Provision:  p,
			Score:      score,
			Similarity: sims[i],
		})
	}

	// Descending by fused score; stable, so ties keep corpus order.
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})
	return results, nil
}

// keywordOverlap is the fraction of the provision's keywords appearing
// as substrings of the lower-cased query; 0 without keywords.
func keywordOverlap(query string, p model.Provision) float64 {
	if len(p.Keywords) == 0 {
		return 0
	}
	q := strings.ToLower(query)

	matches := 0
	for _, kw := range p.Keywords {
		if strings.Contains(q, strings.ToLower(kw)) {
			matches++
		}
	}
	return float64(matches) / float64(len(p.Keywords))
}

// topIndices returns the indices of the k highest similarities,
// ascending by corpus position so later stable sorts break ties by
// original corpus order.
func topIndices(sims []float64, k int) []int {
	idx := make([]int, len(sims))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return sims[idx[a]] > sims[idx[b]]
	})
	if len(idx) > k {
		idx = idx[:k]
	}
	sort.Ints(idx)
	return idx
}
