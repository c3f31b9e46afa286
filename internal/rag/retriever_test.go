package rag

import (
	"context"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) GenerateEmbedding(_ context.Context, _ string) ([]float32, error) {
	return s.vector, s.err
}

func (s *stubEmbedder) GenerateBatchEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vector
	}
	return out, s.err
}

func (s *stubEmbedder) Dimensions() int { return len(s.vector) }
func (s *stubEmbedder) Name() string    { return "stub" }

type stubRepo struct {
	chunks       []*Chunk
	err          error
	lastCategory string
	lastLimit    int
}

func (s *stubRepo) SearchSimilar(_ context.Context, _ pgvector.Vector, category string, limit int) ([]*Chunk, error) {
	s.lastCategory = category
	s.lastLimit = limit
	return s.chunks, s.err
}

func chunk(title, url string, similarity float64) *Chunk {
	return &Chunk{
		ArticleTitle: title,
		Category:     "education",
		Content:      "Some article content about " + title,
		SourceURL:    url,
		Similarity:   similarity,
	}
}

func TestRetrieve_FiltersByRelevance(t *testing.T) {
	repo := &stubRepo{chunks: []*Chunk{
		chunk("Index Funds", "https://example.com/a", 0.82),
		chunk("Bonds", "https://example.com/b", 0.55),
		chunk("Unrelated", "https://example.com/c", 0.31),
	}}
	r := NewRetriever(&stubEmbedder{vector: []float32{0.1, 0.2}}, repo, 5, 0.5)

	chunks, err := r.Retrieve(context.Background(), "what is an index fund", "")

	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "Index Funds", chunks[0].ArticleTitle)
	assert.Equal(t, 5, repo.lastLimit)
}

func TestRetrieve_CategoryPassedThrough(t *testing.T) {
	repo := &stubRepo{}
	r := NewRetriever(&stubEmbedder{vector: []float32{0.1}}, repo, 5, 0.5)

	_, err := r.Retrieve(context.Background(), "capital gains", "tax")

	require.NoError(t, err)
	assert.Equal(t, "tax", repo.lastCategory)
}

func TestRetrieve_EmbedderFailure(t *testing.T) {
	r := NewRetriever(&stubEmbedder{err: assert.AnError}, &stubRepo{}, 5, 0.5)

	_, err := r.Retrieve(context.Background(), "query", "")

	assert.Error(t, err)
}

func TestFormatContext(t *testing.T) {
	rendered := FormatContext([]*Chunk{
		chunk("Index Funds", "https://example.com/a", 0.82),
		chunk("Bonds", "https://example.com/b", 0.55),
	})

	assert.Contains(t, rendered, "[Source 1] Index Funds (Category: education)")
	assert.Contains(t, rendered, "[Source 2] Bonds")

	assert.Empty(t, FormatContext(nil))
}

