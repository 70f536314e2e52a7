// Package config provides configuration loading and structs for the bunrui pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug    bool           `yaml:"debug"`
	Paths    PathsConfig    `yaml:"paths"`
	Extract  ExtractConfig  `yaml:"extract"`
	Analyze  AnalyzeConfig  `yaml:"analyze"`
	Prompts  PromptsConfig  `yaml:"prompts"`
	LLM      LLMConfig      `yaml:"llm"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Watch    WatchConfig    `yaml:"watch"`
}

// PathsConfig holds the workbook intake dir and the extraction output root.
type PathsConfig struct {
	InputDir string `yaml:"input_dir"`
	DataDir  string `yaml:"data_dir"`
}

// ExtractConfig holds extraction settings.
type ExtractConfig struct {
	Formats       []string `yaml:"formats"`
	IncludeStyles *bool    `yaml:"include_styles"`
	IncludeImages *bool    `yaml:"include_images"`
	IncludeCharts *bool    `yaml:"include_charts"`
}

// StylesEnabled returns whether cell styles are extracted; defaults to true when unset.
func (e *ExtractConfig) StylesEnabled() bool {
	return e.IncludeStyles == nil || *e.IncludeStyles
}

// ImagesEnabled returns whether embedded images are extracted; defaults to true when unset.
func (e *ExtractConfig) ImagesEnabled() bool {
	return e.IncludeImages == nil || *e.IncludeImages
}

// ChartsEnabled returns whether charts are extracted; defaults to true when unset.
func (e *ExtractConfig) ChartsEnabled() bool {
	return e.IncludeCharts == nil || *e.IncludeCharts
}

// AnalyzeConfig holds workbook analysis settings.
type AnalyzeConfig struct {
	Enabled             *bool `yaml:"enabled"`
	ComplexityThreshold int   `yaml:"complexity_threshold"`
}

// AnalysisEnabled returns whether the analysis report is produced; defaults to true when unset.
func (a *AnalyzeConfig) AnalysisEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// PromptsConfig holds the prompt template file locations.
type PromptsConfig struct {
	PromptsPath string `yaml:"prompts_path"`
	DetailsPath string `yaml:"details_path"`
}

// LLMConfig holds LLM backend settings.
type LLMConfig struct {
	Provider            string `yaml:"provider"`
	BaseURL             string `yaml:"base_url"`
	APIKeyEnv           string `yaml:"api_key_env"`
	Model               string `yaml:"model"`
	ModelPrefix         string `yaml:"model_prefix"`
	ScenarioGUID        string `yaml:"scenario_guid"`
	KeywordScenarioGUID string `yaml:"keyword_scenario_guid"`
	TimeoutSeconds      int    `yaml:"timeout_seconds"`
	MaxRetries          int    `yaml:"max_retries"`
}

// Validate checks that the scenario GUIDs parse as UUIDs.
func (l *LLMConfig) Validate() error {
	if l.ScenarioGUID != "" {
		if _, err := uuid.Parse(l.ScenarioGUID); err != nil {
			return fmt.Errorf("invalid scenario_guid %q: %w", l.ScenarioGUID, err)
		}
	}
	if l.KeywordScenarioGUID != "" {
		if _, err := uuid.Parse(l.KeywordScenarioGUID); err != nil {
			return fmt.Errorf("invalid keyword_scenario_guid %q: %w", l.KeywordScenarioGUID, err)
		}
	}
	return nil
}

// PipelineConfig holds the analysis stage settings.
type PipelineConfig struct {
	Steps           StepToggles `yaml:"steps"`
	DataSampleBytes int         `yaml:"data_sample_bytes"`
}

// StepToggles enables or disables individual pipeline stages.
// Unset toggles default to enabled.
type StepToggles struct {
	Keywords *bool `yaml:"keywords"`
	Codes    *bool `yaml:"codes"`
	Themes   *bool `yaml:"themes"`
	Concepts *bool `yaml:"concepts"`
	Model    *bool `yaml:"model"`
}

// Enabled reports whether the named stage is on; unknown names are off.
func (s *StepToggles) Enabled(stage string) bool {
	on := func(p *bool) bool { return p == nil || *p }
	switch stage {
	case "keywords":
		return on(s.Keywords)
	case "codes":
		return on(s.Codes)
	case "themes":
		return on(s.Themes)
	case "concepts":
		return on(s.Concepts)
	case "model":
		return on(s.Model)
	}
	return false
}

// CatalogConfig holds the run catalog location.
type CatalogConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// WatchConfig holds workbook intake watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	DebounceMS  int      `yaml:"debounce_ms"`
	RunPipeline bool     `yaml:"run_pipeline"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Paths.InputDir = expandPath(cfg.Paths.InputDir, configDir)
	cfg.Paths.DataDir = expandPath(cfg.Paths.DataDir, configDir)
	cfg.Prompts.PromptsPath = expandPath(cfg.Prompts.PromptsPath, configDir)
	cfg.Prompts.DetailsPath = expandPath(cfg.Prompts.DetailsPath, configDir)
	cfg.Catalog.DatabasePath = expandPath(cfg.Catalog.DatabasePath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Save writes the config to path. Used for persisting watch directory add/remove.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
