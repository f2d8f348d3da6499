package segment

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reassemble(chunks []Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Text)
	}
	return b.String()
}

func TestSplitReassemblesExactly(t *testing.T) {
	texts := []string{
		"short text",
		"EDUCATION\nPhD in Biology\n\nPUBLICATIONS\n" + strings.Repeat("A paper about things.\n\n", 200),
		strings.Repeat("no boundaries here ", 500),
		"Research Interests:\n" + strings.Repeat("gene regulation\n", 100) +
			"\nTeaching\n" + strings.Repeat("intro course\n", 100),
	}
	sizes := []int{50, 200, 1000, 8000}

	for _, text := range texts {
		for _, maxSize := range sizes {
			chunks := Split(text, maxSize)
			require.NotEmpty(t, chunks, "non-empty input must yield chunks")
			assert.Equal(t, text, reassemble(chunks), "maxSize=%d", maxSize)
		}
	}
}

func TestSplitSizeBound(t *testing.T) {
	text := "EXPERIENCE\n" + strings.Repeat("worked on a project\n\n", 300) +
		"AWARDS\n" + strings.Repeat("won a prize\n", 50)

	for _, maxSize := range []int{80, 500, 2000} {
		for _, chunk := range Split(text, maxSize) {
			assert.LessOrEqual(t, utf8.RuneCountInString(chunk.Text), maxSize,
				"maxSize=%d index=%d", maxSize, chunk.Index)
		}
	}
}

func TestSplitOrderingMetadata(t *testing.T) {
	text := "EDUCATION\n" + strings.Repeat("x", 300) + "\n\nPUBLICATIONS\n" + strings.Repeat("y", 300)
	chunks := Split(text, 200)
	require.Greater(t, len(chunks), 1)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.Equal(t, len(chunks), chunk.Total)
		assert.Equal(t, i == 0, chunk.IsFirst)
		assert.Equal(t, i == len(chunks)-1, chunk.IsLast)
	}
}

// A small section is folded together with the start of the following large
// section: the greedy accumulator keeps filling the first chunk until the
// budget is exceeded.
func TestSplitGreedyFoldsSmallSection(t *testing.T) {
	education := "EDUCATION\n" + strings.Repeat("e", 589) + "\n"
	publications := "PUBLICATIONS\n" + strings.Repeat("A paper title here.\n\n", 447)
	require.Equal(t, 600, utf8.RuneCountInString(education))
	require.Greater(t, utf8.RuneCountInString(publications), 9000)

	chunks := Split(education+publications, 8000)

	require.Len(t, chunks, 2)
	assert.True(t, strings.HasPrefix(chunks[0].Text, "EDUCATION"))
	assert.Contains(t, chunks[0].Text, "PUBLICATIONS", "first chunk absorbs the start of the big section")
	assert.Greater(t, utf8.RuneCountInString(chunks[0].Text), 600)
	assert.Equal(t, education+publications, reassemble(chunks))
}

func TestSplitNoRecognizedHeaders(t *testing.T) {
	// Paragraph fallback applies to the whole text.
	text := strings.Repeat("some plain paragraph\n\n", 100)
	chunks := Split(text, 300)
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, text, reassemble(chunks))
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk.Text), 300)
	}
}

func TestSplitOversizedParagraphHardCut(t *testing.T) {
	text := strings.Repeat("x", 1000) // one atomic run, no boundaries at all
	chunks := Split(text, 128)
	require.NotEmpty(t, chunks)
	assert.Equal(t, text, reassemble(chunks))
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk.Text), 128)
	}
}

func TestSplitEmptyInput(t *testing.T) {
	assert.Empty(t, Split("", 100))
}

func TestSplitWithOverlap(t *testing.T) {
	text := "PUBLICATIONS\n" + strings.Repeat("An interesting result.\n\n", 200)
	overlap := 50
	chunks := SplitWithOverlap(text, 500, overlap)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		carried := string(prev[len(prev)-overlap:])
		assert.True(t, strings.HasPrefix(chunks[i].Text, carried),
			"chunk %d must start with the tail of chunk %d", i, i-1)
		assert.LessOrEqual(t, utf8.RuneCountInString(chunks[i].Text), 500)
	}
}

func TestSplitWithOverlapDegeneratesToSplit(t *testing.T) {
	text := strings.Repeat("word ", 100)
	assert.Equal(t, Split(text, 200), SplitWithOverlap(text, 200, 0))
	assert.Equal(t, Split(text, 200), SplitWithOverlap(text, 200, 300))
}
