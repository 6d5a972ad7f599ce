package textutil

import (
	"regexp"
	"strings"
)

// tokenSplitPattern matches non-alphanumeric character sequences for tokenization.
var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Tokenize splits text into lowercase tokens, filtering short tokens.
func Tokenize(text string) []string {
	raw := tokenSplitPattern.Split(strings.ToLower(text), -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if len(token) < 3 {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// ContainsKeyword reports whether any token of text starts with one of the
// keywords. Prefix matching lets "crack" match "cracked" and "cracks".
func ContainsKeyword(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	for _, token := range Tokenize(text) {
		for _, kw := range keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.HasPrefix(token, kw) {
				return true
			}
		}
	}
	return false
}
