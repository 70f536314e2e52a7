package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_writesDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	promptsPath := filepath.Join(dir, "prompts.yaml")
	detailsPath := filepath.Join(dir, "prompt_details.yaml")

	store, err := Load(promptsPath, detailsPath)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(promptsPath); err != nil {
		t.Errorf("prompts file should be created: %v", err)
	}
	if _, err := os.Stat(detailsPath); err != nil {
		t.Errorf("details file should be created: %v", err)
	}

	for _, key := range []string{KeySystem, KeyKeywords, KeyCodes, KeyThemes, KeyConcepts, KeyModel} {
		if !store.Has(key) {
			t.Errorf("default store missing template %s", key)
		}
	}
}

func TestLoad_keepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	promptsPath := filepath.Join(dir, "prompts.yaml")
	detailsPath := filepath.Join(dir, "prompt_details.yaml")

	custom := "step2: |\n  Custom template with [data]\n"
	if err := os.WriteFile(promptsPath, []byte(custom), 0644); err != nil {
		t.Fatal(err)
	}

	store, err := Load(promptsPath, detailsPath)
	if err != nil {
		t.Fatal(err)
	}
	got := store.Get(KeyKeywords)
	if !strings.Contains(got, "Custom template") {
		t.Errorf("existing prompts file should not be overwritten, got %q", got)
	}
	if store.Has(KeySystem) {
		t.Error("custom prompts file has no system template; store should not invent one")
	}
}

func TestStore_Get(t *testing.T) {
	store := &Store{
		prompts: map[string]string{
			"step2": "As [role], extract keywords from:\n[data]",
			"step3": "[missing_detail] stays, [hint] goes.",
		},
		details: map[string]string{
			"role": "a coder",
			"hint": "see [keywords]",
		},
	}

	t.Run("interpolates details", func(t *testing.T) {
		got := store.Get("step2")
		if !strings.Contains(got, "As a coder,") {
			t.Errorf("detail not interpolated: %q", got)
		}
	})

	t.Run("keeps runtime placeholders literal", func(t *testing.T) {
		got := store.Get("step2")
		if !strings.Contains(got, "[data]") {
			t.Errorf("[data] should survive interpolation: %q", got)
		}
	})

	t.Run("unknown detail stays literal", func(t *testing.T) {
		got := store.Get("step3")
		if !strings.Contains(got, "[missing_detail]") {
			t.Errorf("unknown detail should stay: %q", got)
		}
	})

	t.Run("detail value may carry a runtime placeholder", func(t *testing.T) {
		got := store.Get("step3")
		if !strings.Contains(got, "see [keywords]") {
			t.Errorf("placeholder inside detail value should survive: %q", got)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		if got := store.Get("step9"); got != NotFound {
			t.Errorf("Get(step9) = %q, want %q", got, NotFound)
		}
	})
}

func TestFill(t *testing.T) {
	tpl := "Keywords:\n[keywords]\nData:\n[data]\nUntouched: [codes]"
	got := Fill(tpl, map[string]string{
		"keywords": "alpha\nbeta\n",
		"data":     "{\"worksheets\":{}}",
	})
	if !strings.Contains(got, "alpha\nbeta\n") {
		t.Errorf("keywords not filled: %q", got)
	}
	if !strings.Contains(got, "{\"worksheets\":{}}") {
		t.Errorf("data not filled: %q", got)
	}
	if !strings.Contains(got, "[codes]") {
		t.Errorf("placeholders without values should stay: %q", got)
	}
}

func TestDefaultTemplates_placeholders(t *testing.T) {
	dir := t.TempDir()
	store, err := Load(filepath.Join(dir, "p.yaml"), filepath.Join(dir, "d.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		key  string
		want []string
	}{
		{KeyKeywords, []string{"[data]"}},
		{KeyCodes, []string{"[keywords]", "[data]"}},
		{KeyThemes, []string{"[codes]", "[keywords]"}},
		{KeyConcepts, []string{"[codes]", "[keywords]", "[themes]"}},
		{KeyModel, []string{"[codes]", "[keywords]", "[themes]"}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := store.Get(tt.key)
			for _, ph := range tt.want {
				if !strings.Contains(got, ph) {
					t.Errorf("template %s should carry %s after interpolation", tt.key, ph)
				}
			}
			if strings.Contains(got, "[role]") || strings.Contains(got, "_rules]") {
				t.Errorf("template %s has uninterpolated details: %q", tt.key, got)
			}
		})
	}
}

func TestWriteDefaults_overwrites(t *testing.T) {
	dir := t.TempDir()
	promptsPath := filepath.Join(dir, "prompts.yaml")
	detailsPath := filepath.Join(dir, "details.yaml")
	if err := os.WriteFile(promptsPath, []byte("step2: old\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := WriteDefaults(promptsPath, detailsPath); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(promptsPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "step2: old") {
		t.Error("WriteDefaults should overwrite the prompts file")
	}
}

func TestStore_Keys(t *testing.T) {
	store := &Store{prompts: map[string]string{"step3": "", "system": "", "step2": ""}}
	keys := store.Keys()
	if len(keys) != 3 || keys[0] != "step2" || keys[1] != "step3" || keys[2] != "system" {
		t.Errorf("Keys() = %v, want sorted", keys)
	}
}
