package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BudgetConfig carries the assembler's token caps.
type BudgetConfig struct {
	StructureMapTokens int `yaml:"structureMapTokens,omitempty"`
	FullFileTokens     int `yaml:"fullFileTokens,omitempty"`
	SemanticTokens     int `yaml:"semanticTokens,omitempty"`
	TotalTokens        int `yaml:"totalTokens,omitempty"`
}

// EmbedderConfig selects and configures the embedding provider.
type EmbedderConfig struct {
	// Provider is "openai", "ollama", or "none".
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	// BaseURL applies to the ollama provider.
	BaseURL string `yaml:"baseURL,omitempty"`
	// Dimensions, when positive, requests reduced-dimension vectors from
	// providers that support it.
	Dimensions int `yaml:"dimensions,omitempty"`
}

// ProjectConfig holds project-level settings loaded from gather.yml.
type ProjectConfig struct {
	Include   []string       `yaml:"include,omitempty"`
	Exclude   []string       `yaml:"exclude,omitempty"`
	Budget    BudgetConfig   `yaml:"budget,omitempty"`
	Embedder  EmbedderConfig `yaml:"embedder,omitempty"`
	IndexPath string         `yaml:"indexPath,omitempty"`
	Verbose   bool           `yaml:"verbose,omitempty"`
}

// Defaults used when gather.yml leaves a field unset.
const (
	DefaultStructureMapTokens = 4000
	DefaultFullFileTokens     = 16000
	DefaultSemanticTokens     = 8000
	DefaultTotalTokens        = 32000
	DefaultEmbedModel         = "text-embedding-3-small"
	DefaultOllamaBaseURL      = "http://localhost:11434"
)

// Load attempts to read gather.yml or gather.yaml from the given
// directory. Returns a defaulted config (not an error) if no config file
// exists; a file that exists but fails to parse is an error.
func Load(dir string) (*ProjectConfig, error) {
	cfg := &ProjectConfig{}
	for _, name := range []string{"gather.yml", "gather.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		break
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *ProjectConfig) applyDefaults() {
	if c.Budget.StructureMapTokens == 0 {
		c.Budget.StructureMapTokens = DefaultStructureMapTokens
	}
	if c.Budget.FullFileTokens == 0 {
		c.Budget.FullFileTokens = DefaultFullFileTokens
	}
	if c.Budget.SemanticTokens == 0 {
		c.Budget.SemanticTokens = DefaultSemanticTokens
	}
	if c.Budget.TotalTokens == 0 {
		c.Budget.TotalTokens = DefaultTotalTokens
	}
	if c.Embedder.Provider == "" {
		c.Embedder.Provider = "none"
	}
	if c.Embedder.Model == "" {
		c.Embedder.Model = DefaultEmbedModel
	}
	if c.Embedder.BaseURL == "" {
		c.Embedder.BaseURL = DefaultOllamaBaseURL
	}
}
