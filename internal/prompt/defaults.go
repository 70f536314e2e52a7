package prompt

// Built-in templates, written to disk on first load so researchers can
// edit them without rebuilding. [data], [keywords], [codes] and
// [themes] are filled at call time; the remaining placeholders come
// from the details file.

const defaultPromptsYAML = `system: |
  You are [role]. You support qualitative researchers running thematic
  analysis over spreadsheet data. Follow [method]. Answer in plain text,
  one item per line, with no numbering and no commentary.

step2: |
  The JSON below contains the full contents of a research workbook.
  Identify the keywords: recurring terms, topics and signals that appear
  in the data. [keyword_rules]

  [data]

step3: |
  Derive codes from the keywords below. A code is a short label that
  groups related keywords into one analytic unit. [code_rules]

  Keywords:
  [keywords]
  Data sample for grounding:
  [data]

step4: |
  Derive themes from the codes below. A theme expresses a pattern that
  runs across several codes. [theme_rules]

  Codes:
  [codes]
  Keywords for reference:
  [keywords]

step5: |
  Derive concepts from the analysis below. A concept abstracts one or
  more themes into the vocabulary of the research field. [concept_rules]

  Codes:
  [codes]
  Keywords:
  [keywords]
  Themes:
  [themes]

step6: |
  Build the conceptual model from the analysis below: relate the
  concepts behind these themes into one connected structure, stating
  each relation on its own line as "concept -> relation -> concept".
  [model_rules]

  Codes:
  [codes]
  Keywords:
  [keywords]
  Themes:
  [themes]
`

const defaultDetailsYAML = `role: "an experienced qualitative research assistant"
method: "the staged procedure keywords, codes, themes, concepts, conceptual model, never skipping a stage"
keyword_rules: "Report each keyword once, lowercased unless it is a proper noun."
code_rules: "Report each code followed by a colon and the keywords it groups."
theme_rules: "Report each theme followed by a colon and the codes it draws on."
concept_rules: "Report each concept followed by a colon and a one-sentence definition."
model_rules: "Use only concepts that follow from the listed themes."
`
