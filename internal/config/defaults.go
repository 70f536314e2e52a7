package config

// Default LLM settings. The scenario GUIDs route requests on the LLM
// gateway; keyword extraction and coding use their own scenario.
const (
	DefaultModel               = "gpt-4o-2024-05-13"
	DefaultModelPrefix         = "dev-"
	DefaultScenarioGUID        = "fd004048-ba97-46c8-9b09-6f566bdcd2d7"
	DefaultKeywordScenarioGUID = "4d89af25-54b8-414a-807a-0c9186ff7539"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Paths.InputDir == "" {
		cfg.Paths.InputDir = "/usr/local/var/bunrui/workbooks"
	}
	if cfg.Paths.DataDir == "" {
		cfg.Paths.DataDir = "/usr/local/var/bunrui/data"
	}
	if cfg.Extract.Formats == nil {
		cfg.Extract.Formats = []string{".xlsx", ".xls"}
	}
	if cfg.Analyze.ComplexityThreshold == 0 {
		cfg.Analyze.ComplexityThreshold = 5
	}
	if cfg.Prompts.PromptsPath == "" {
		cfg.Prompts.PromptsPath = "./prompts.yaml"
	}
	if cfg.Prompts.DetailsPath == "" {
		cfg.Prompts.DetailsPath = "./prompt_details.yaml"
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "gateway"
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "BUNRUI_API_KEY"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultModel
	}
	if cfg.LLM.ModelPrefix == "" {
		cfg.LLM.ModelPrefix = DefaultModelPrefix
	}
	if cfg.LLM.ScenarioGUID == "" {
		cfg.LLM.ScenarioGUID = DefaultScenarioGUID
	}
	if cfg.LLM.KeywordScenarioGUID == "" {
		cfg.LLM.KeywordScenarioGUID = DefaultKeywordScenarioGUID
	}
	if cfg.LLM.TimeoutSeconds == 0 {
		cfg.LLM.TimeoutSeconds = 120
	}
	if cfg.LLM.MaxRetries == 0 {
		cfg.LLM.MaxRetries = 3
	}
	if cfg.Pipeline.DataSampleBytes == 0 {
		cfg.Pipeline.DataSampleBytes = 4096
	}
	if cfg.Catalog.DatabasePath == "" {
		cfg.Catalog.DatabasePath = "/usr/local/var/bunrui/catalog.db"
	}
	if cfg.Watch.DebounceMS == 0 {
		cfg.Watch.DebounceMS = 400
	}
}
