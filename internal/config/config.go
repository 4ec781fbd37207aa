// Package config loads project configuration for the indexing core.
// Grounded on the teacher's internal/config/config.go: a YAML file
// under the project root with environment variable overrides, loaded
// via viper (defaults -> file -> env, env wins).
package config

import "path/filepath"

// Config is the complete configuration for one project's index.
type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding" mapstructure:"embedding"`
	Paths     PathsConfig     `yaml:"paths" mapstructure:"paths"`
	Chunking  ChunkingConfig  `yaml:"chunking" mapstructure:"chunking"`
	DataDir   string          `yaml:"-" mapstructure:"-"`
	ProjectRoot string        `yaml:"-" mapstructure:"-"`
}

// EmbeddingConfig configures the embedding provider (spec §4.3, §6).
type EmbeddingConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"`
	ModelID    string `yaml:"model_id" mapstructure:"model_id"`
	Dimensions int    `yaml:"dimensions" mapstructure:"dimensions"`
	Endpoint   string `yaml:"endpoint" mapstructure:"endpoint"`
}

// PathsConfig controls which files the change planner and chunker see
// (spec §4.1).
type PathsConfig struct {
	Languages []string `yaml:"languages" mapstructure:"languages"`
	Ignore    []string `yaml:"ignore" mapstructure:"ignore"`
}

// ChunkingConfig controls chunk sizing (spec §4.2).
type ChunkingConfig struct {
	MaxChunkTokens    int     `yaml:"max_chunk_tokens" mapstructure:"max_chunk_tokens"`
	MinChunkLines     int     `yaml:"min_chunk_lines" mapstructure:"min_chunk_lines"`
	ChunkOverlapRatio float64 `yaml:"chunk_overlap_ratio" mapstructure:"chunk_overlap_ratio"`
	GroundingLines    int     `yaml:"grounding_lines" mapstructure:"grounding_lines"`
}

// Default returns a configuration with the spec's defaults.
func Default() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:   "local",
			ModelID:    "bge-small-en-v1.5",
			Dimensions: 384,
			Endpoint:   "http://127.0.0.1:8121",
		},
		Paths: PathsConfig{
			Languages: []string{
				"go", "typescript", "javascript", "python", "rust",
				"java", "c", "cpp", "ruby", "php",
			},
			Ignore: []string{
				"node_modules/**", "vendor/**", ".git/**", "dist/**",
				"build/**", "target/**", "__pycache__/**", "*.min.js",
			},
		},
		Chunking: ChunkingConfig{
			MaxChunkTokens:    800,
			MinChunkLines:     5,
			ChunkOverlapRatio: 0.25,
			GroundingLines:    3,
		},
	}
}

// DefaultDataDir returns ~/.<app>/ per spec §6, given a home directory.
func DefaultDataDir(home string) string {
	return filepath.Join(home, ".codeintel")
}
