package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

// queryCacheSize bounds the query-embedding LRU. Repeated analyses of
// the same narrative (cache-warm demos, tests) skip the embedding call.
const queryCacheSize = 128

// Embedder is the slice of the provider capability the dense backend
// needs. *llm.Client satisfies it.
type Embedder interface {
	Name() string
	Model() string
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// denseBackend scores provisions by squared-L2 distance between
// provider embeddings, converted to a similarity via 1/(1+dist).
type denseBackend struct {
	embedder   Embedder
	vectors    [][]float32
	queryCache *lru.Cache[string, []float32]
}

// embeddingSidecar persists provision embeddings between runs, keyed by
// provider and model identity so a provider switch forces re-embedding.
type embeddingSidecar struct {
	Provider string      `json:"provider"`
	Model    string      `json:"model"`
	Vectors  [][]float32 `json:"vectors"`
}

func newDenseBackend(ctx context.Context, embedder Embedder, texts []string, sidecarPath string) (*denseBackend, error) {
	vectors, ok := loadSidecar(sidecarPath, embedder, len(texts))
	if !ok {
		var err error
		vectors, err = embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed corpus: %w", err)
		}
		saveSidecar(sidecarPath, embedder, vectors)
	}

	queryCache, err := lru.New[string, []float32](queryCacheSize)
	if err != nil {
		return nil, err
	}

	return &denseBackend{
		embedder:   embedder,
		vectors:    vectors,
		queryCache: queryCache,
	}, nil
}

func (b *denseBackend) similarities(ctx context.Context, query string) ([]float64, error) {
	qv, ok := b.queryCache.Get(query)
	if !ok {
		var err error
		qv, err = b.embedder.Embed(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		b.queryCache.Add(query, qv)
	}

	sims := make([]float64, len(b.vectors))
	for i, dv := range b.vectors {
		sims[i] = 1.0 / (1.0 + squaredL2(qv, dv))
	}
	return sims, nil
}

func squaredL2(a, b []float32) float64 {
	n := min(len(a), len(b))
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// loadSidecar returns cached provision embeddings when the file exists,
// matches the active provider identity and covers every provision.
func loadSidecar(path string, embedder Embedder, want int) ([][]float32, bool) {
	if path == "" {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var side embeddingSidecar
	if err := json.Unmarshal(data, &side); err != nil {
		return nil, false
	}
	if side.Provider != embedder.Name() || side.Model != embedder.Model() || len(side.Vectors) != want {
		return nil, false
	}
	return side.Vectors, true
}

// saveSidecar is best effort; an unwritable sidecar only costs API calls.
func saveSidecar(path string, embedder Embedder, vectors [][]float32) {
	if path == "" {
		return
	}
	data, err := json.Marshal(embeddingSidecar{
		Provider: embedder.Name(),
		Model:    embedder.Model(),
		Vectors:  vectors,
	})
	if err != nil {
		return
	}
	if dir := filepath.Dir(path); dir != "." {
		_ = os.MkdirAll(dir, 0755)
	}
	_ = os.WriteFile(path, data, 0644)
}
