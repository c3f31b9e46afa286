package agents

import (
	"context"
	"fmt"
	"strings"

	"fincoach/internal/adapters/ai"
	"fincoach/internal/rag"
	"fincoach/pkg/logger"
)

const taxSystemPrompt = `You are a tax education specialist with expertise in investment taxation.

Your role is to:
1. Explain tax concepts clearly and accurately
2. Discuss capital gains, losses, and tax reporting
3. Explain retirement accounts (401k, IRA, Roth)
4. Discuss tax-advantaged investment strategies
5. Provide tax timeline and deadline information

Guidelines:
- Use retrieved articles to support your answers
- Break down complex concepts into understandable parts
- Provide specific examples when helpful
- Always include important disclaimers

IMPORTANT DISCLAIMERS:
- This is educational information, NOT tax advice
- Tax situations are complex and individual
- Strongly recommend consulting a CPA or tax professional
- Tax laws vary by location and change frequently`

// TaxEducation explains investment tax topics using the tax slice of
// the knowledge base
type TaxEducation struct {
	retriever ChunkRetriever
	llm       ai.CompletionClient
	log       *logger.Logger
}

// NewTaxEducation creates the tax education agent
func NewTaxEducation(retriever ChunkRetriever, llm ai.CompletionClient) *TaxEducation {
	return &TaxEducation{
		retriever: retriever,
		llm:       llm,
		log:       logger.Get().With("agent", string(AgentTaxEducation)),
	}
}

func (a *TaxEducation) ID() AgentID { return AgentTaxEducation }

func (a *TaxEducation) Execute(ctx context.Context, message, convContext string) (*Output, error) {
	chunks, err := a.retriever.Retrieve(ctx, message, "tax")
	if err != nil {
		a.log.Warnw("Retrieval failed, answering without knowledge base", "error", err)
		chunks = nil
	}

	prompt := message
	if materials := formatMaterials(chunks); materials != "" {
		prompt += "\n\n" + materials
	}
	if convContext != "" {
		prompt += "\n\nPrevious conversation context:\n" + convContext
	}

	resp, err := a.llm.Complete(ctx, ai.CompletionRequest{
		System: taxSystemPrompt,
		Prompt: prompt,
	})
	if err != nil {
		return nil, err
	}

	citations := ChunkCitations(chunks)

	return &Output{
		AnswerText: resp.Text,
		Confidence: 0.85,
		Citations:  citations,
		StructuredData: map[string]interface{}{
			"chunks_retrieved": len(chunks),
			"citations_count":  len(citations),
			"category":         "tax",
		},
		TokensUsed: resp.TokensUsed,
	}, nil
}

func formatMaterials(chunks []*rag.Chunk) string {
	if len(chunks) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("### Educational Materials:\n")
	for i, chunk := range chunks {
		content := chunk.Content
		if len(content) > 500 {
			content = content[:500] + "..."
		}
		fmt.Fprintf(&b, "\n**Source %d:** %s\n%s\n", i+1, chunk.ArticleTitle, content)
	}
	return b.String()
}
