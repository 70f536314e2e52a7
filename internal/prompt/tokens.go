package prompt

// Response token budgets per template key. Later stages synthesize
// over everything before them and need room: a flat budget truncates
// the conceptual model.
const defaultMaxTokens = 2000

var maxTokens = map[string]int{
	KeySystem:   500,
	KeyKeywords: 1000,
	KeyCodes:    2000,
	KeyThemes:   2000,
	KeyConcepts: 3000,
	KeyModel:    4000,
}

// MaxTokens returns the response token budget for the template key.
func MaxTokens(key string) int {
	if v, ok := maxTokens[key]; ok {
		return v
	}
	return defaultMaxTokens
}
