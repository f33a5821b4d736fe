package similarity

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the default window length, in runes, for MeanPooled.
const DefaultChunkSize = 512

// Chunk splits text into word windows of at most size runes. Words longer
// than size are cut at rune boundaries. Blank text yields no chunks.
func Chunk(text string, size int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 || utf8.RuneCountInString(text) <= size {
		return []string{text}
	}

	var chunks []string
	var current []string
	currentLen := 0
	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = current[:0]
			currentLen = 0
		}
	}

	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > size {
			flush()
			runes := []rune(word)
			chunks = append(chunks, string(runes[:size]))
			word = string(runes[size:])
		}
		wordLen := utf8.RuneCountInString(word)
		if len(current) > 0 && currentLen+1+wordLen > size {
			flush()
		}
		if len(current) > 0 {
			currentLen++
		}
		current = append(current, word)
		currentLen += wordLen
	}
	flush()
	return chunks
}
