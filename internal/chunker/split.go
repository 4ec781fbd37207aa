package chunker

import (
	"fmt"
	"strings"

	"github.com/cortexlocal/codeintel/internal/config"
	"github.com/cortexlocal/codeintel/internal/model"
)

// splitOversize implements spec §4.2's oversize handling: a chunk
// whose token_estimate exceeds MAX_CHUNK_TOKENS is split into
// overlapping line windows, each carrying at least GroundingLines of
// leading context, with sub-chunk ids suffixed ":part{N}".
func splitOversize(chunk model.Chunk, cfg config.ChunkingConfig) []model.Chunk {
	if chunk.TokenEstimate <= cfg.MaxChunkTokens {
		return []model.Chunk{chunk}
	}

	lines := strings.Split(chunk.Code, "\n")
	if len(lines) <= cfg.GroundingLines+1 {
		return []model.Chunk{chunk}
	}

	avgCharsPerLine := (len(chunk.Code) + 1) / max(len(lines), 1)
	maxLinesPerWindow := (cfg.MaxChunkTokens * 4) / max(avgCharsPerLine, 1)
	if maxLinesPerWindow < cfg.GroundingLines+1 {
		maxLinesPerWindow = cfg.GroundingLines + 1
	}

	overlap := int(float64(maxLinesPerWindow) * cfg.ChunkOverlapRatio)
	if overlap < cfg.GroundingLines {
		overlap = cfg.GroundingLines
	}
	if overlap >= maxLinesPerWindow {
		overlap = maxLinesPerWindow - 1
	}
	step := maxLinesPerWindow - overlap
	if step < 1 {
		step = 1
	}

	var out []model.Chunk
	part := 1
	for start := 0; start < len(lines); start += step {
		end := start + maxLinesPerWindow
		if end > len(lines) {
			end = len(lines)
		}

		windowLines := lines[start:end]
		code := strings.Join(windowLines, "\n")

		sub := chunk
		sub.ID = fmt.Sprintf("%s:part%d", chunk.ID, part)
		sub.StartLine = chunk.StartLine + start
		sub.EndLine = chunk.StartLine + end - 1
		sub.Code = code
		sub.TokenEstimate = estimateTokens(code)
		out = append(out, sub)

		part++
		if end >= len(lines) {
			break
		}
	}
	return out
}
