package agents

import (
	"context"

	"fincoach/internal/adapters/ai"
	"fincoach/internal/rag"
	"fincoach/pkg/logger"
)

const financeQASystemPrompt = `You are a knowledgeable financial education assistant.
Your job is to answer questions about finance, investing, and personal finance topics.

You have access to a knowledge base of financial education articles.
Use the provided context to inform your answer, and cite sources when relevant.

Be accurate, educational, and always include appropriate disclaimers about financial advice.
Format your response clearly with bullet points or sections where appropriate.`

// ChunkRetriever is the retrieval surface RAG-backed agents depend on
type ChunkRetriever interface {
	Retrieve(ctx context.Context, query, category string) ([]*rag.Chunk, error)
}

// FinanceQA answers financial education questions with retrieval-
// augmented generation. When retrieval fails it degrades to a plain
// completion without citations.
type FinanceQA struct {
	retriever ChunkRetriever
	llm       ai.CompletionClient
	log       *logger.Logger
}

// NewFinanceQA creates the general Q&A agent
func NewFinanceQA(retriever ChunkRetriever, llm ai.CompletionClient) *FinanceQA {
	return &FinanceQA{
		retriever: retriever,
		llm:       llm,
		log:       logger.Get().With("agent", string(AgentFinanceQA)),
	}
}

func (a *FinanceQA) ID() AgentID { return AgentFinanceQA }

func (a *FinanceQA) Execute(ctx context.Context, message, convContext string) (*Output, error) {
	chunks, err := a.retriever.Retrieve(ctx, message, "")
	if err != nil {
		a.log.Warnw("Retrieval failed, answering without knowledge base", "error", err)
		chunks = nil
	}

	system := financeQASystemPrompt
	if kb := rag.FormatContext(chunks); kb != "" {
		system += "\n\nKNOWLEDGE BASE:\n" + kb
	}

	prompt := message
	if convContext != "" {
		prompt += "\n\nPrevious conversation context:\n" + convContext
	}

	resp, err := a.llm.Complete(ctx, ai.CompletionRequest{
		System: system,
		Prompt: prompt,
	})
	if err != nil {
		return nil, err
	}

	confidence := 0.85
	if len(chunks) == 0 {
		confidence = 0.7
	}

	return &Output{
		AnswerText: resp.Text,
		Confidence: confidence,
		Citations:  ChunkCitations(chunks),
		StructuredData: map[string]interface{}{
			"chunks_retrieved": len(chunks),
		},
		TokensUsed: resp.TokensUsed,
	}, nil
}
