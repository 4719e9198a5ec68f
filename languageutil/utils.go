package languageutil

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Wardrobe labels are mostly Polish file names, casing follows Polish rules.
var Tag = language.Polish

// Casers are stateful, a fresh one is built per call so helpers stay safe
// across goroutines.
func Lower(value string) string {
	return cases.Lower(Tag).String(value)
}

func Title(value string) string {
	return cases.Title(Tag).String(value)
}

// CapitalizeFirst upper-cases only the first letter and keeps the rest as is.
func CapitalizeFirst(value string) string {
	if value == "" {
		return value
	}
	first, size := utf8.DecodeRuneInString(value)
	return cases.Upper(Tag).String(string(first)) + value[size:]
}

// LowerFirst is the inverse of CapitalizeFirst.
func LowerFirst(value string) string {
	if value == "" {
		return value
	}
	first, size := utf8.DecodeRuneInString(value)
	return cases.Lower(Tag).String(string(first)) + value[size:]
}

// ContainsAny reports whether any of the keywords is a substring of the lowercased label.
func ContainsAny(lowerLabel string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(lowerLabel, keyword) {
			return true
		}
	}
	return false
}

func CountMatches(lowerLabel string, keywords []string) int {
	count := 0
	for _, keyword := range keywords {
		if strings.Contains(lowerLabel, keyword) {
			count++
		}
	}
	return count
}
