package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText_Empty(t *testing.T) {
	assert.Nil(t, chunkText("", DefaultChunkConfig()))
	assert.Nil(t, chunkText("   \n\t  ", DefaultChunkConfig()))
}

func TestChunkText_ShortTextSingleChunk(t *testing.T) {
	chunks := chunkText("  Net sales were $394.3 billion in fiscal 2022.  ", DefaultChunkConfig())

	require.Len(t, chunks, 1)
	assert.Equal(t, "Net sales were $394.3 billion in fiscal 2022.", chunks[0])
}

func TestChunkText_SplitsLongText(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("revenue grew during the period ", 200))
	cfg := DefaultChunkConfig()

	chunks := chunkText(text, cfg)

	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), cfg.MaxChars, "chunk %d exceeds max", i)
		assert.NotEmpty(t, chunk)
	}
}

func TestChunkText_OverlapRepeatsTail(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("alpha beta gamma delta ", 120))
	cfg := ChunkConfig{MaxChars: 500, MinChars: 200, Overlap: 100}

	chunks := chunkText(text, cfg)
	require.Greater(t, len(chunks), 1)

	// The start of each subsequent chunk re-covers the previous chunk's tail.
	tail := chunks[0][len(chunks[0])-20:]
	assert.Contains(t, chunks[1], strings.TrimSpace(tail))
}

func TestChunkText_PrefersWhitespaceCut(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 500))
	cfg := ChunkConfig{MaxChars: 97, MinChars: 40, Overlap: 0}

	chunks := chunkText(text, cfg)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.False(t, strings.HasSuffix(chunk, "wor"), "chunk cut mid-word: %q", chunk)
	}
}

func TestChunkText_MaxChunksCap(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("filler text segment ", 500))
	cfg := ChunkConfig{MaxChars: 200, MinChars: 50, Overlap: 0, MaxChunks: 3}

	chunks := chunkText(text, cfg)

	assert.Len(t, chunks, 3)
}

func TestChunkText_ZeroConfigFallsBackToDefaults(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("segment of filing text ", 300))

	chunks := chunkText(text, ChunkConfig{})

	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), DefaultChunkConfig().MaxChars)
	}
}
