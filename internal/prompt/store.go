// Package prompt stores the analysis prompt templates and their
// placeholder handling.
//
// Templates live in a YAML file keyed by template name (system, step2
// .. step6). A companion details file holds reusable text fragments.
// Get applies detail interpolation: every [name] placeholder whose
// name is a key in the details map is replaced by the detail text, and
// placeholders without a matching detail stay literal. That second
// rule is what keeps the runtime placeholders ([data], [keywords],
// [codes], [themes]) intact until Fill substitutes them per call.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// NotFound is returned by Get for an unknown template key.
const NotFound = "Prompt not found."

// Template keys used by the pipeline stages.
const (
	KeySystem   = "system"
	KeyKeywords = "step2"
	KeyCodes    = "step3"
	KeyThemes   = "step4"
	KeyConcepts = "step5"
	KeyModel    = "step6"
)

var placeholderRe = regexp.MustCompile(`\[([^\[\]]+)\]`)

// Store holds the loaded templates and detail fragments.
type Store struct {
	prompts map[string]string
	details map[string]string
}

// Load reads the template and details files. A missing file is created
// with the built-in defaults first, so a fresh install starts from
// editable files on disk.
func Load(promptsPath, detailsPath string) (*Store, error) {
	if err := writeIfMissing(promptsPath, defaultPromptsYAML); err != nil {
		return nil, err
	}
	if err := writeIfMissing(detailsPath, defaultDetailsYAML); err != nil {
		return nil, err
	}

	prompts, err := loadYAMLMap(promptsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}
	details, err := loadYAMLMap(detailsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt details: %w", err)
	}
	return &Store{prompts: prompts, details: details}, nil
}

// Get returns the template for key with detail interpolation applied.
// Unknown keys return NotFound.
func (s *Store) Get(key string) string {
	tpl, ok := s.prompts[key]
	if !ok {
		return NotFound
	}
	return placeholderRe.ReplaceAllStringFunc(tpl, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := s.details[name]; ok {
			return v
		}
		return m
	})
}

// Has reports whether a template exists for key.
func (s *Store) Has(key string) bool {
	_, ok := s.prompts[key]
	return ok
}

// Keys returns the template keys in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.prompts))
	for k := range s.prompts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fill substitutes the runtime placeholders: every [name] for a key in
// values is replaced literally. Placeholders not in values are left
// alone.
func Fill(tpl string, values map[string]string) string {
	for k, v := range values {
		tpl = strings.ReplaceAll(tpl, "["+k+"]", v)
	}
	return tpl
}

// WriteDefaults writes the built-in template and details files,
// overwriting existing ones.
func WriteDefaults(promptsPath, detailsPath string) error {
	if err := writeFile(promptsPath, defaultPromptsYAML); err != nil {
		return err
	}
	return writeFile(detailsPath, defaultDetailsYAML)
}

func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return writeFile(path, content)
}

func writeFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create prompt dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func loadYAMLMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	m := make(map[string]string)
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return m, nil
}
