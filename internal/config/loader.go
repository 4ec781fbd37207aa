package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Loader loads Config from defaults, a project YAML file, and the
// environment variables named in spec §6, in that priority order
// (environment wins). Grounded on internal/config/loader.go.
type Loader interface {
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a Loader rooted at rootDir (the project root).
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".codeintel")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("CODEINTEL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyBitExactEnvVars(cfg, l.rootDir)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.model_id", d.Embedding.ModelID)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)
	v.SetDefault("embedding.endpoint", d.Embedding.Endpoint)

	v.SetDefault("paths.languages", d.Paths.Languages)
	v.SetDefault("paths.ignore", d.Paths.Ignore)

	v.SetDefault("chunking.max_chunk_tokens", d.Chunking.MaxChunkTokens)
	v.SetDefault("chunking.min_chunk_lines", d.Chunking.MinChunkLines)
	v.SetDefault("chunking.chunk_overlap_ratio", d.Chunking.ChunkOverlapRatio)
	v.SetDefault("chunking.grounding_lines", d.Chunking.GroundingLines)
}

// applyBitExactEnvVars applies the spec §6 environment variables, which
// use names distinct from the CODEINTEL_* viper convention and so are
// read directly.
func applyBitExactEnvVars(cfg *Config, rootDir string) {
	cfg.ProjectRoot = rootDir
	if v := os.Getenv("PROJECT_ROOT"); v != "" {
		cfg.ProjectRoot = v
	}

	cfg.DataDir = DefaultDataDir(homeDir())
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.ModelID = v
	}

	if v := os.Getenv("EMBEDDING_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.Dimensions = n
		}
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// LoadConfigFromDir is a convenience wrapper used by the CLI.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
