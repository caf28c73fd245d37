// Package prompts holds the fixed instruction prompts sent to the
// enrichment service. Prompt text is versioned through the import
// configuration's prompt_version, recorded on every tag candidate row.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"
)

// tagPromptTemplate asks for bounded discovery tags. The rules keep tags
// generic enough to group well while still allowing place names.
const tagPromptTemplate = `You are generating discovery tags for a large photo collection.
Rules:
- Output 10-15 tags
- lowercase
- 1-2 words per tag
- no years, no camera/lens/contest names
- no photographer names
- generic but meaningful
- proper nouns allowed: cities, countries

Input:
Title: %s
Description: %s
Categories: %s

Output:
JSON array of strings only.
`

// TagPrompt builds the tag-generation prompt for one image draft.
func TagPrompt(title, description string, categories []string) string {
	return fmt.Sprintf(tagPromptTemplate, title, description, strings.Join(categories, ", "))
}

// categorizePromptTemplate assigns one broad category per tag from an open
// vocabulary.
const categorizePromptTemplate = `You are categorizing tags for a wallpaper website.

Rules:
- Assign each tag to one broad category (like "city", "country", "nature", "animal", "landscape", "people")
- Only assign one category per tag
- Output a JSON object with tags as keys and categories as values
- Proper nouns like cities/countries can remain as "city" or "country"

Input tags: %s

Output:
JSON object
`

// CategorizePrompt builds the tag-categorization prompt for a batch of
// distinct tag texts.
func CategorizePrompt(tags []string) string {
	encoded, _ := json.Marshal(tags)
	return fmt.Sprintf(categorizePromptTemplate, string(encoded))
}
