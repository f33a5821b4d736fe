package tokenize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Stop words dropped from lexical terms
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// Normalize applies NFKC normalization, lowercases and trims the text.
// Control characters other than newlines and tabs are removed.
func Normalize(text string) string {
	normed := strings.TrimSpace(norm.NFKC.String(text))
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, normed)
}

// IsBlank reports whether text has no content after normalization.
func IsBlank(text string) bool {
	return Normalize(text) == ""
}

// isSeparator splits on whitespace and punctuation, keeping symbols that
// carry meaning in technology names such as "c++" and "c#".
func isSeparator(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '+', '#', '-', '_':
		return false
	}
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// Tokenize splits text into normalized words.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(Normalize(text), isSeparator)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if cleaned := strings.Trim(f, "-_"); cleaned != "" {
			tokens = append(tokens, cleaned)
		}
	}
	return tokens
}

// Terms tokenizes text and removes stop words.
func Terms(text string) []string {
	tokens := Tokenize(text)
	filtered := tokens[:0]
	for _, token := range tokens {
		if !stopWords[token] {
			filtered = append(filtered, token)
		}
	}
	return filtered
}

// SplitList splits a delimited list ("Python, PyTorch; Go") into trimmed,
// non-empty entries.
func SplitList(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '/' || r == '|'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
