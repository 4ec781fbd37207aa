package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexlocal/codeintel/internal/config"
	"github.com/cortexlocal/codeintel/internal/model"
)

func testConfig() config.ChunkingConfig {
	return config.ChunkingConfig{
		MaxChunkTokens:    800,
		MinChunkLines:     3,
		ChunkOverlapRatio: 0.25,
		GroundingLines:    3,
	}
}

const goSource = `package sample

// Add returns the sum of two integers.
func Add(a, b int) int {
	return a + b
}

type Greeter struct {
	name string
}

func (g *Greeter) Greet() string {
	return "hello " + g.name
}
`

func TestChunkFileGoExtractsFunctionsAndMethods(t *testing.T) {
	c := New(testConfig())
	chunks, err := c.ChunkFile(context.Background(), "sample.go", "go", []byte(goSource))
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	var names []string
	for _, ch := range chunks {
		names = append(names, ch.Name)
	}
	assert.Contains(t, names, "Add")
	assert.Contains(t, names, "Greet")

	for _, ch := range chunks {
		if ch.Name == "Add" {
			assert.Equal(t, model.KindFunction, ch.Kind)
			assert.Contains(t, ch.Docstring, "Add returns the sum")
		}
		if ch.Name == "Greet" {
			assert.Equal(t, model.KindMethod, ch.Kind)
		}
		assert.LessOrEqual(t, ch.StartLine, ch.EndLine)
	}
}

func TestChunkFileUnsupportedLanguage(t *testing.T) {
	c := New(testConfig())
	_, err := c.ChunkFile(context.Background(), "f.kt", "kotlin", []byte("fun main() {}"))
	require.Error(t, err)
	var unsupported *ErrUnsupportedLanguage
	assert.ErrorAs(t, err, &unsupported)
}

func TestSplitOversizeProducesOverlappingParts(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 400; i++ {
		b.WriteString("    x := 1\n")
	}
	chunk := model.Chunk{
		ID:            "f.go:1:400",
		Code:          b.String(),
		StartLine:     1,
		EndLine:       400,
		TokenEstimate: estimateTokens(b.String()),
	}
	cfg := config.ChunkingConfig{MaxChunkTokens: 50, MinChunkLines: 3, ChunkOverlapRatio: 0.25, GroundingLines: 2}

	parts := splitOversize(chunk, cfg)
	require.Greater(t, len(parts), 1)
	for i, p := range parts {
		assert.Contains(t, p.ID, ":part")
		assert.LessOrEqual(t, p.StartLine, p.EndLine)
		if i > 0 {
			assert.Less(t, parts[i-1].StartLine, p.StartLine)
		}
	}
}

func TestMinChunkLinesDropsTinyUnits(t *testing.T) {
	src := `package sample

func A() int { return 1 }
`
	cfg := testConfig()
	cfg.MinChunkLines = 5
	c := New(cfg)
	chunks, err := c.ChunkFile(context.Background(), "tiny.go", "go", []byte(src))
	require.NoError(t, err)

	for _, ch := range chunks {
		assert.NotEqual(t, "A", ch.Name)
	}
}
