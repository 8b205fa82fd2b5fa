package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DisplayCity lowercases the name and capitalizes the first letter of each
// space-separated word: "DES MOINES" -> "Des Moines".
func DisplayCity(name string) string {
	words := strings.Split(strings.ToLower(name), " ")
	for i, w := range words {
		words[i] = upperFirst(w)
	}
	return strings.Join(words, " ")
}

// DisplayState capitalizes the first letter and leaves the rest untouched.
func DisplayState(state string) string {
	return upperFirst(state)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
