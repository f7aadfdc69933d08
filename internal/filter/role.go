package filter

import "strings"

const minTokenLength = 2

// RoleTokens splits a role on non-alphanumeric boundaries and drops tokens shorter than two
// characters.
func RoleTokens(role string) []string {
	fields := strings.FieldsFunc(strings.ToLower(role), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if len(field) < minTokenLength {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

// MatchesRole reports whether title contains at least min(2, len(tokens)) of the role tokens.
func MatchesRole(title string, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	title = strings.ToLower(title)
	hits := 0
	for _, token := range tokens {
		if strings.Contains(title, token) {
			hits++
		}
	}
	return hits >= min(2, len(tokens))
}
