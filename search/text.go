package search

import "strings"

// tokenize splits text into words, lowercases them, and trims
// surrounding punctuation.
func tokenize(text string) []string {
	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" {
			tokens = append(tokens, cleaned)
		}
	}

	return tokens
}

// tokenSet builds a membership set over the distinct tokens in text.
func tokenSet(text string) map[string]bool {
	tokens := tokenize(text)
	set := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		set[token] = true
	}
	return set
}

// matchesKeyword checks whether a keyword occurs in the record text.
// Single words must match a whole token, so short acronyms never hit
// inside longer words; multi-word phrases match as substrings of the
// lowercased text.
func matchesKeyword(tokens map[string]bool, lowerText, keyword string) bool {
	lower := strings.ToLower(strings.TrimSpace(keyword))
	if lower == "" {
		return false
	}
	if strings.ContainsRune(lower, ' ') {
		return strings.Contains(lowerText, lower)
	}
	return tokens[lower]
}
