package agents

import "fincoach/internal/rag"

// ChunkCitations converts retrieved chunks into response citations,
// one per distinct source URL
func ChunkCitations(chunks []*rag.Chunk) []Citation {
	var citations []Citation
	seen := make(map[string]struct{})

	for _, chunk := range chunks {
		if chunk.SourceURL == "" {
			continue
		}
		if _, dup := seen[chunk.SourceURL]; dup {
			continue
		}
		seen[chunk.SourceURL] = struct{}{}
		citations = append(citations, Citation{
			Title:     chunk.ArticleTitle,
			SourceURL: chunk.SourceURL,
			Category:  chunk.Category,
		})
	}

	return citations
}
