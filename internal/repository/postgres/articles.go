package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"fincoach/internal/rag"
)

// Compile-time check
var _ rag.Repository = (*ArticleRepository)(nil)

// ArticleRepository stores and searches knowledge-base article chunks
// using sqlx and pgvector
type ArticleRepository struct {
	db *sqlx.DB
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db *sqlx.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// Store inserts an article chunk with its embedding
func (r *ArticleRepository) Store(ctx context.Context, chunk *rag.Chunk) error {
	query := `
		INSERT INTO article_chunks (
			id, article_title, category, content, source_url, embedding
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)`

	_, err := r.db.ExecContext(ctx, query,
		chunk.ID, chunk.ArticleTitle, chunk.Category, chunk.Content,
		chunk.SourceURL, chunk.Embedding,
	)

	return err
}

// SearchSimilar performs semantic search using pgvector cosine
// similarity, optionally restricted to one category
func (r *ArticleRepository) SearchSimilar(ctx context.Context, embedding pgvector.Vector, category string, limit int) ([]*rag.Chunk, error) {
	var chunks []*rag.Chunk

	if category != "" {
		query := `
			SELECT *, 1 - (embedding <=> $1) as similarity
			FROM article_chunks
			WHERE category = $2
			ORDER BY embedding <=> $1
			LIMIT $3`

		if err := r.db.SelectContext(ctx, &chunks, query, embedding, category, limit); err != nil {
			return nil, err
		}
		return chunks, nil
	}

	query := `
		SELECT *, 1 - (embedding <=> $1) as similarity
		FROM article_chunks
		ORDER BY embedding <=> $1
		LIMIT $2`

	if err := r.db.SelectContext(ctx, &chunks, query, embedding, limit); err != nil {
		return nil, err
	}
	return chunks, nil
}

// CountByCategory reports chunk counts per category, for ingestion
// sanity checks
func (r *ArticleRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows := []struct {
		Category string `db:"category"`
		Count    int    `db:"count"`
	}{}

	query := `SELECT category, COUNT(*) as count FROM article_chunks GROUP BY category`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}
