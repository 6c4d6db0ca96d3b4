package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type IngestConfig struct {
	DPI                    int     `toml:"dpi"`
	OCRConfidenceThreshold float64 `toml:"ocr_confidence_threshold"`
	MaxPages               int     `toml:"max_pages"`
	ImagesSubdir           string  `toml:"images_subdir"`
	OCRLanguage            string  `toml:"ocr_language"`
}

type PrepConfig struct {
	MaxChunkChars          int     `toml:"max_chunk_chars"`
	BoilerplateMinFraction float64 `toml:"boilerplate_min_fraction"`
}

type FactsConfig struct {
	MaxAttempts int `toml:"max_attempts"`
}

// ConflictRule configures one opposite-assertion pair for conflict
// detection. Pattern lists are matched against normalized statement text.
type ConflictRule struct {
	Type     string   `toml:"type"`
	Subjects []string `toml:"subjects"`
	Negators []string `toml:"negators"`
	Absent   []string `toml:"absent"`
}

type MergeConfig struct {
	SimilarityThreshold float64        `toml:"similarity_threshold"`
	Rules               []ConflictRule `toml:"rules"`
}

type ReasonConfig struct {
	Temperature float32 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
}

type ReportConfig struct {
	PropertyName string   `toml:"property_name"`
	Formats      []string `toml:"formats"`
}

type ServerConfig struct {
	DataDir string `toml:"data_dir"`
}

type StoreConfig struct {
	Path string `toml:"path"`
}

type Config struct {
	LLM    LLMConfig    `toml:"llm"`
	Ingest IngestConfig `toml:"ingest"`
	Prep   PrepConfig   `toml:"prep"`
	Facts  FactsConfig  `toml:"facts"`
	Merge  MergeConfig  `toml:"merge"`
	Reason ReasonConfig `toml:"reason"`
	Report ReportConfig `toml:"report"`
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
}

// Default returns the full default configuration, so every stage can run
// without a config file on disk.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "groq",
			Model:    "llama-3.3-70b-versatile",
		},
		Ingest: IngestConfig{
			DPI:                    150,
			OCRConfidenceThreshold: 0.55,
			MaxPages:               0,
			ImagesSubdir:           "page_images",
			OCRLanguage:            "eng",
		},
		Prep: PrepConfig{
			MaxChunkChars:          1400,
			BoilerplateMinFraction: 0.6,
		},
		Facts: FactsConfig{
			MaxAttempts: 3,
		},
		Merge: MergeConfig{
			SimilarityThreshold: 0.92,
		},
		Reason: ReasonConfig{
			Temperature: 0.1,
			MaxTokens:   2000,
		},
		Report: ReportConfig{
			PropertyName: "Property Inspection Report",
			Formats:      []string{"markdown"},
		},
		Server: ServerConfig{
			DataDir: "data",
		},
		Store: StoreConfig{
			Path: "data/gypsum.db",
		},
	}
}

// Load reads a TOML config file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides config values with environment variables if present.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}

	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case "groq":
			c.LLM.APIKey = os.Getenv("GROQ_API_KEY")
		case "openai":
			c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "claude":
			c.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "gemini":
			c.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
}
