// Package config provides configuration loading and management for the
// prompts toolchain.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the complete toolchain configuration
type Config struct {
	Corpus   CorpusConfig   `yaml:"corpus"`
	Validate ValidateConfig `yaml:"validate"`
	Optimize OptimizeConfig `yaml:"optimize"`
	Links    LinksConfig    `yaml:"links"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Importer ImporterConfig `yaml:"importer"`
	Watch    WatchConfig    `yaml:"watch"`
	NATS     NATSConfig     `yaml:"nats"`
}

// CorpusConfig locates the template corpus
type CorpusConfig struct {
	// Root is the corpus directory used when no pattern is given
	Root string `yaml:"root"`
	// Extensions lists watched file extensions
	Extensions []string `yaml:"extensions"`
	// ExcludeDirs lists directory names skipped by resolution and watching
	ExcludeDirs []string `yaml:"exclude_dirs"`
}

// ValidateConfig configures template validation
type ValidateConfig struct {
	// OutputDir receives per-file reports and the run summary
	OutputDir string `yaml:"output_dir"`
	// Ruleset is an optional YAML criteria table overriding the built-in one
	Ruleset string `yaml:"ruleset"`
}

// OptimizeConfig configures the pattern scanner
type OptimizeConfig struct {
	// OutputDir receives per-file reports and the run summary
	OutputDir string `yaml:"output_dir"`
	// CodeCheck enables syntax checking of fenced code blocks
	CodeCheck bool `yaml:"code_check"`
}

// LinksConfig configures the link checker
type LinksConfig struct {
	// External enables HTTP checks of external links
	External bool `yaml:"external"`
	// Timeout bounds each external link check (duration string)
	Timeout string `yaml:"timeout"`
	// Concurrency caps simultaneous external checks
	Concurrency int `yaml:"concurrency"`
}

// DatasetConfig configures fine-tuning dataset assembly
type DatasetConfig struct {
	// OutputDir receives the train and validation JSONL files
	OutputDir string `yaml:"output_dir"`
	// SystemPrompt is the system turn for every record
	SystemPrompt string `yaml:"system_prompt"`
	// MinScore drops templates scoring below this percent
	MinScore int `yaml:"min_score"`
	// ValidationPct is the share of records routed to the validation split
	ValidationPct int `yaml:"validation_pct"`
	// TargetTokens, MaxTokens, and MinTokens bound record chunking
	TargetTokens int `yaml:"target_tokens"`
	MaxTokens    int `yaml:"max_tokens"`
	MinTokens    int `yaml:"min_tokens"`
}

// ImporterConfig configures web imports
type ImporterConfig struct {
	// Timeout bounds the fetch (duration string)
	Timeout string `yaml:"timeout"`
	// MaxSizeMB caps the fetched body size
	MaxSizeMB int `yaml:"max_size_mb"`
	// Category is written into imported template frontmatter
	Category string `yaml:"category"`
}

// WatchConfig configures continuous validation
type WatchConfig struct {
	// DebounceDelay is how long to wait for more changes before rescoring
	DebounceDelay string `yaml:"debounce_delay"`
	// MetricsAddr is the Prometheus listen address (empty = disabled)
	MetricsAddr string `yaml:"metrics_addr"`
}

// NATSConfig configures report event publishing
type NATSConfig struct {
	// URL is the NATS server URL (empty = publishing disabled)
	URL string `yaml:"url"`
	// SubjectPrefix prefixes every published subject
	SubjectPrefix string `yaml:"subject_prefix"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Root:        "prompts",
			Extensions:  []string{".md"},
			ExcludeDirs: []string{".git", "node_modules", "vendor"},
		},
		Validate: ValidateConfig{
			OutputDir: "validation-reports",
		},
		Optimize: OptimizeConfig{
			OutputDir: "optimization-reports",
		},
		Links: LinksConfig{
			External:    false,
			Timeout:     "10s",
			Concurrency: 8,
		},
		Dataset: DatasetConfig{
			OutputDir:     "dataset",
			SystemPrompt:  "You are an expert Next.js developer assistant for the SolnAI project.",
			MinScore:      50,
			ValidationPct: 10,
			TargetTokens:  1000,
			MaxTokens:     1500,
			MinTokens:     200,
		},
		Importer: ImporterConfig{
			Timeout:   "30s",
			MaxSizeMB: 10,
			Category:  "imported",
		},
		Watch: WatchConfig{
			DebounceDelay: "500ms",
			MetricsAddr:   ":9090",
		},
		NATS: NATSConfig{
			URL:           "",
			SubjectPrefix: "prompts",
		},
	}
}

// Check verifies that the configuration is valid
func (c *Config) Check() error {
	if c.Corpus.Root == "" {
		return fmt.Errorf("corpus.root is required")
	}
	if c.Dataset.ValidationPct < 0 || c.Dataset.ValidationPct > 100 {
		return fmt.Errorf("dataset.validation_pct must be between 0 and 100")
	}
	if c.Dataset.MinScore < 0 || c.Dataset.MinScore > 100 {
		return fmt.Errorf("dataset.min_score must be between 0 and 100")
	}
	if c.Links.Concurrency < 1 {
		return fmt.Errorf("links.concurrency must be at least 1")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Corpus
	if other.Corpus.Root != "" {
		c.Corpus.Root = other.Corpus.Root
	}
	if len(other.Corpus.Extensions) > 0 {
		c.Corpus.Extensions = other.Corpus.Extensions
	}
	if len(other.Corpus.ExcludeDirs) > 0 {
		c.Corpus.ExcludeDirs = other.Corpus.ExcludeDirs
	}

	// Validate
	if other.Validate.OutputDir != "" {
		c.Validate.OutputDir = other.Validate.OutputDir
	}
	if other.Validate.Ruleset != "" {
		c.Validate.Ruleset = other.Validate.Ruleset
	}

	// Optimize
	if other.Optimize.OutputDir != "" {
		c.Optimize.OutputDir = other.Optimize.OutputDir
	}
	if other.Optimize.CodeCheck {
		c.Optimize.CodeCheck = true
	}

	// Links
	if other.Links.External {
		c.Links.External = true
	}
	if other.Links.Timeout != "" {
		c.Links.Timeout = other.Links.Timeout
	}
	if other.Links.Concurrency != 0 {
		c.Links.Concurrency = other.Links.Concurrency
	}

	// Dataset
	if other.Dataset.OutputDir != "" {
		c.Dataset.OutputDir = other.Dataset.OutputDir
	}
	if other.Dataset.SystemPrompt != "" {
		c.Dataset.SystemPrompt = other.Dataset.SystemPrompt
	}
	if other.Dataset.MinScore != 0 {
		c.Dataset.MinScore = other.Dataset.MinScore
	}
	if other.Dataset.ValidationPct != 0 {
		c.Dataset.ValidationPct = other.Dataset.ValidationPct
	}
	if other.Dataset.TargetTokens != 0 {
		c.Dataset.TargetTokens = other.Dataset.TargetTokens
	}
	if other.Dataset.MaxTokens != 0 {
		c.Dataset.MaxTokens = other.Dataset.MaxTokens
	}
	if other.Dataset.MinTokens != 0 {
		c.Dataset.MinTokens = other.Dataset.MinTokens
	}

	// Importer
	if other.Importer.Timeout != "" {
		c.Importer.Timeout = other.Importer.Timeout
	}
	if other.Importer.MaxSizeMB != 0 {
		c.Importer.MaxSizeMB = other.Importer.MaxSizeMB
	}
	if other.Importer.Category != "" {
		c.Importer.Category = other.Importer.Category
	}

	// Watch
	if other.Watch.DebounceDelay != "" {
		c.Watch.DebounceDelay = other.Watch.DebounceDelay
	}
	if other.Watch.MetricsAddr != "" {
		c.Watch.MetricsAddr = other.Watch.MetricsAddr
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.SubjectPrefix != "" {
		c.NATS.SubjectPrefix = other.NATS.SubjectPrefix
	}
}
