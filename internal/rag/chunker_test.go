package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextShortReturnsSingleChunk(t *testing.T) {
	chunks := SplitText("Compound interest grows savings over time.", 2000, 200)

	require.Len(t, chunks, 1)
	assert.Equal(t, "Compound interest grows savings over time.", chunks[0])
}

func TestSplitTextEmptyInput(t *testing.T) {
	assert.Nil(t, SplitText("", 2000, 200))
	assert.Nil(t, SplitText("   \n  ", 2000, 200))
}

func TestSplitTextRespectsTargetLength(t *testing.T) {
	sentence := "Diversification reduces concentration risk in a portfolio. "
	text := strings.Repeat(sentence, 40)

	chunks := SplitText(text, 500, 0)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 500+len(sentence))
	}
}

func TestSplitTextCarriesOverlap(t *testing.T) {
	sentence := "Asset allocation is the primary driver of long-term returns. "
	text := strings.Repeat(sentence, 40)

	chunks := SplitText(text, 500, 100)
	require.Greater(t, len(chunks), 1)

	// The tail of each chunk reappears at the head of the next
	first := chunks[0]
	carried := strings.TrimSpace(first[len(first)-100:])
	assert.True(t, strings.HasPrefix(chunks[1], carried))
}

func TestSplitTextBreaksOnSentences(t *testing.T) {
	text := "First point here. Second point follows! Third point asks? Fourth closes."

	chunks := SplitText(text, 30, 0)

	require.Greater(t, len(chunks), 1)
	assert.True(t, strings.HasSuffix(chunks[0], ".") ||
		strings.HasSuffix(chunks[0], "!") ||
		strings.HasSuffix(chunks[0], "?"))
}

func TestSplitSentencesKeepsDecimals(t *testing.T) {
	sentences := splitSentences("The fee is 0.25% annually. That compounds over decades.")

	require.Len(t, sentences, 2)
	assert.Equal(t, "The fee is 0.25% annually.", sentences[0])
	assert.Equal(t, "That compounds over decades.", sentences[1])
}
