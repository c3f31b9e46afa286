package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"fincoach/internal/adapters/embeddings"
	"fincoach/internal/metrics"
	"fincoach/pkg/errors"
	"fincoach/pkg/logger"
)

// Retrieval defaults
const (
	DefaultTopK         = 5
	DefaultMinRelevance = 0.50

	contextSnippetLen = 300
)

// Chunk is one retrieved slice of a knowledge-base article
type Chunk struct {
	ID           uuid.UUID       `db:"id"`
	ArticleTitle string          `db:"article_title"`
	Category     string          `db:"category"`
	Content      string          `db:"content"`
	SourceURL    string          `db:"source_url"`
	Embedding    pgvector.Vector `db:"embedding"`
	Similarity   float64         `db:"similarity"`
}

// Repository is the vector-search surface the retriever needs
type Repository interface {
	SearchSimilar(ctx context.Context, embedding pgvector.Vector, category string, limit int) ([]*Chunk, error)
}

// Retriever embeds queries and pulls the most relevant article chunks
type Retriever struct {
	embedder     embeddings.Provider
	repo         Repository
	topK         int
	minRelevance float64
	log          *logger.Logger
}

// NewRetriever creates a retriever
func NewRetriever(embedder embeddings.Provider, repo Repository, topK int, minRelevance float64) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if minRelevance <= 0 {
		minRelevance = DefaultMinRelevance
	}
	return &Retriever{
		embedder:     embedder,
		repo:         repo,
		topK:         topK,
		minRelevance: minRelevance,
		log:          logger.Get().With("component", "rag_retriever"),
	}
}

// Retrieve returns the top chunks for a query, dropping anything below
// the relevance floor. Category is an optional filter.
func (r *Retriever) Retrieve(ctx context.Context, query, category string) ([]*Chunk, error) {
	start := time.Now()

	vector, err := r.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		metrics.RetrievalQueries.WithLabelValues("error").Inc()
		return nil, errors.Wrap(err, "failed to embed query")
	}

	chunks, err := r.repo.SearchSimilar(ctx, pgvector.NewVector(vector), category, r.topK)
	if err != nil {
		metrics.RetrievalQueries.WithLabelValues("error").Inc()
		return nil, errors.Wrap(err, "vector search failed")
	}

	relevant := make([]*Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.Similarity >= r.minRelevance {
			relevant = append(relevant, chunk)
		}
	}

	metrics.RetrievalQueries.WithLabelValues("success").Inc()
	metrics.RetrievalLatency.Observe(time.Since(start).Seconds())

	r.log.Debugw("Retrieved chunks",
		"total", len(chunks),
		"relevant", len(relevant),
		"category", category)

	return relevant, nil
}

// FormatContext renders chunks as a numbered source block for prompts
func FormatContext(chunks []*Chunk) string {
	if len(chunks) == 0 {
		return ""
	}

	var b strings.Builder
	for i, chunk := range chunks {
		content := chunk.Content
		if len(content) > contextSnippetLen {
			content = content[:contextSnippetLen] + "..."
		}
		fmt.Fprintf(&b, "\n[Source %d] %s (Category: %s)\n%s\n",
			i+1, chunk.ArticleTitle, chunk.Category, content)
	}
	return b.String()
}

