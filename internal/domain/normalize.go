package domain

import "strings"

// NormalizeHumanName trims leading/trailing whitespace and collapses internal
// whitespace runs. It is used for name normalization.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeLanguage trims a language entry. Comparison between languages is
// case-insensitive but the entered casing is preserved.
func NormalizeLanguage(s string) string {
	return strings.TrimSpace(s)
}

// ContainsLanguage reports whether list already holds lang (case-insensitive).
func ContainsLanguage(list []string, lang string) bool {
	for _, l := range list {
		if strings.EqualFold(l, lang) {
			return true
		}
	}
	return false
}
