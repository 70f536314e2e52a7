package pipeline

import "github.com/hyperjump/bunrui/internal/prompt"

// Stage names, in execution order.
const (
	StageKeywords = "keywords"
	StageCodes    = "codes"
	StageThemes   = "themes"
	StageConcepts = "concepts"
	StageModel    = "model"
)

// Placeholder sources that are not stage output files.
const (
	srcData       = "@data"
	srcDataSample = "@data_sample"
)

// Stage describes one pipeline step: which template it renders, where
// its output goes, and where each placeholder's content comes from.
// A placeholder source is either a prior stage's output file (relative
// to the workbook dir) or one of the src* markers.
type Stage struct {
	Name            string
	TemplateKey     string
	OutputFile      string
	Placeholders    map[string]string
	UsesKeywordGUID bool
}

// Stages is the fixed stage order. Each stage consumes the outputs of
// earlier ones, so skipping a stage only works when its file already
// exists from a previous run.
var Stages = []Stage{
	{
		Name:            StageKeywords,
		TemplateKey:     prompt.KeyKeywords,
		OutputFile:      "keywords.txt",
		Placeholders:    map[string]string{"data": srcData},
		UsesKeywordGUID: true,
	},
	{
		Name:        StageCodes,
		TemplateKey: prompt.KeyCodes,
		OutputFile:  "codes.txt",
		Placeholders: map[string]string{
			"keywords": "keywords.txt",
			"data":     srcDataSample,
		},
		UsesKeywordGUID: true,
	},
	{
		Name:        StageThemes,
		TemplateKey: prompt.KeyThemes,
		OutputFile:  "themes.txt",
		Placeholders: map[string]string{
			"codes":    "codes.txt",
			"keywords": "keywords.txt",
		},
	},
	{
		Name:        StageConcepts,
		TemplateKey: prompt.KeyConcepts,
		OutputFile:  "concepts.txt",
		Placeholders: map[string]string{
			"codes":    "codes.txt",
			"keywords": "keywords.txt",
			"themes":   "themes.txt",
		},
	},
	{
		Name:        StageModel,
		TemplateKey: prompt.KeyModel,
		OutputFile:  "conceptual_model.txt",
		Placeholders: map[string]string{
			"codes":    "codes.txt",
			"keywords": "keywords.txt",
			"themes":   "themes.txt",
		},
	},
}

// StageByName looks up a stage definition.
func StageByName(name string) (Stage, bool) {
	for _, s := range Stages {
		if s.Name == name {
			return s, true
		}
	}
	return Stage{}, false
}
