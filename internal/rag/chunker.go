package rag

import "strings"

// Chunking targets in characters. Roughly four characters per token
// puts a chunk near the embedding model's sweet spot.
const (
	DefaultChunkSize    = 2000
	DefaultChunkOverlap = 200
)

// SplitText splits article text into sentence-aligned chunks of about
// targetLen characters, carrying overlap characters of trailing context
// into the next chunk.
func SplitText(text string, targetLen, overlap int) []string {
	if targetLen <= 0 {
		targetLen = DefaultChunkSize
	}
	if overlap < 0 || overlap >= targetLen {
		overlap = DefaultChunkOverlap
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= targetLen {
		return []string{text}
	}

	sentences := splitSentences(text)

	var chunks []string
	var current strings.Builder

	for _, sentence := range sentences {
		if current.Len() > 0 && current.Len()+len(sentence)+1 > targetLen {
			chunk := strings.TrimSpace(current.String())
			chunks = append(chunks, chunk)

			current.Reset()
			if overlap > 0 && len(chunk) > overlap {
				current.WriteString(chunk[len(chunk)-overlap:])
				current.WriteString(" ")
			}
		}
		current.WriteString(sentence)
		current.WriteString(" ")
	}

	if tail := strings.TrimSpace(current.String()); tail != "" {
		chunks = append(chunks, tail)
	}

	return chunks
}

// splitSentences breaks text on sentence-ending punctuation, keeping
// the punctuation attached
func splitSentences(text string) []string {
	var sentences []string
	start := 0

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			end := i + 1
			if end < len(text) && text[end] != ' ' && text[end] != '\n' {
				continue
			}
			if s := strings.TrimSpace(text[start:end]); s != "" {
				sentences = append(sentences, s)
			}
			start = end
		}
	}

	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
