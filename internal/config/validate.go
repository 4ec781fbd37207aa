package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidProvider   = errors.New("invalid embedding provider")
	ErrInvalidDimensions = errors.New("invalid embedding dimensions")
	ErrInvalidChunkSize  = errors.New("invalid chunk size")
	ErrInvalidOverlap    = errors.New("invalid overlap")
	ErrEmptyEndpoint     = errors.New("empty embedding endpoint")
	ErrEmptyModel        = errors.New("empty embedding model")
)

// Validate checks that the configuration is complete, grounded on the
// teacher's internal/config/validate.go (multi-error accumulation and
// wrapped sentinel errors).
func Validate(cfg *Config) error {
	var errs []error
	errs = append(errs, validateEmbedding(&cfg.Embedding)...)
	errs = append(errs, validateChunking(&cfg.Chunking)...)

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateEmbedding(cfg *EmbeddingConfig) []error {
	var errs []error

	provider := strings.ToLower(cfg.Provider)
	if provider != "local" && provider != "mock" {
		errs = append(errs, fmt.Errorf("%w: must be 'local' or 'mock', got %q", ErrInvalidProvider, cfg.Provider))
	}
	if strings.TrimSpace(cfg.ModelID) == "" {
		errs = append(errs, fmt.Errorf("%w: model_id is required", ErrEmptyModel))
	}
	if cfg.Dimensions <= 0 {
		errs = append(errs, fmt.Errorf("%w: dimensions must be positive, got %d", ErrInvalidDimensions, cfg.Dimensions))
	}
	if provider == "local" && strings.TrimSpace(cfg.Endpoint) == "" {
		errs = append(errs, fmt.Errorf("%w: endpoint is required for local provider", ErrEmptyEndpoint))
	}
	return errs
}

func validateChunking(cfg *ChunkingConfig) []error {
	var errs []error
	if cfg.MaxChunkTokens <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_chunk_tokens must be positive, got %d", ErrInvalidChunkSize, cfg.MaxChunkTokens))
	}
	if cfg.MinChunkLines < 0 {
		errs = append(errs, fmt.Errorf("%w: min_chunk_lines cannot be negative, got %d", ErrInvalidChunkSize, cfg.MinChunkLines))
	}
	if cfg.ChunkOverlapRatio < 0 || cfg.ChunkOverlapRatio >= 1 {
		errs = append(errs, fmt.Errorf("%w: chunk_overlap_ratio must be in [0,1), got %v", ErrInvalidOverlap, cfg.ChunkOverlapRatio))
	}
	return errs
}

func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
