package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"fincoach/internal/adapters/config"
	"fincoach/internal/adapters/embeddings"
	"fincoach/internal/adapters/postgres"
	"fincoach/internal/rag"
	pgrepo "fincoach/internal/repository/postgres"
	"fincoach/pkg/logger"
)

const embedBatchSize = 100

// article is one knowledge-base document from the input file
type article struct {
	Title     string `json:"title"`
	Category  string `json:"category"`
	Content   string `json:"content"`
	SourceURL string `json:"source_url"`
}

func main() {
	file := flag.String("file", "seeds/articles.json", "JSON file with knowledge-base articles")
	dryRun := flag.Bool("dry-run", false, "Chunk articles without embedding or storing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()

	log.Infow("Starting knowledge-base seeder",
		"file", *file,
		"dry_run", *dryRun,
		"database", cfg.Postgres.Database,
	)

	articles, err := loadArticles(*file)
	if err != nil {
		log.Fatalf("Failed to load articles: %v", err)
	}
	log.Infow("Articles loaded", "count", len(articles))

	chunks := chunkArticles(articles)
	log.Infow("Articles chunked", "chunks", len(chunks))

	if *dryRun {
		log.Info("✅ Dry-run mode: articles chunked, nothing stored")
		return
	}

	pgClient, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pgClient.Close()

	embedder, err := embeddings.NewOpenAIProvider(cfg.AI.OpenAIKey, cfg.AI.EmbeddingModel, 0)
	if err != nil {
		log.Fatalf("Failed to create embeddings provider: %v", err)
	}

	repo := pgrepo.NewArticleRepository(pgClient.DB())
	ctx := context.Background()

	stored := 0
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		log.Infow("Embedding batch", "from", start, "size", len(batch))
		vectors, err := embedder.GenerateBatchEmbeddings(ctx, texts)
		if err != nil {
			log.Fatalf("Failed to embed batch at %d: %v", start, err)
		}

		for i, c := range batch {
			c.Embedding = pgvector.NewVector(vectors[i])
			if err := repo.Store(ctx, c); err != nil {
				log.Errorw("Failed to store chunk",
					"title", c.ArticleTitle, "error", err)
				continue
			}
			stored++
		}
	}

	counts, err := repo.CountByCategory(ctx)
	if err != nil {
		log.Warnf("Failed to count stored chunks: %v", err)
	}

	log.Infow("✅ Seeding complete", "stored", stored, "by_category", counts)
}

func loadArticles(path string) ([]article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var articles []article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

func chunkArticles(articles []article) []*rag.Chunk {
	var chunks []*rag.Chunk
	for _, a := range articles {
		for _, content := range rag.SplitText(a.Content, rag.DefaultChunkSize, rag.DefaultChunkOverlap) {
			chunks = append(chunks, &rag.Chunk{
				ID:           uuid.New(),
				ArticleTitle: a.Title,
				Category:     a.Category,
				Content:      content,
				SourceURL:    a.SourceURL,
			})
		}
	}
	return chunks
}
