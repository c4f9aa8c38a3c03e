package correction

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

const wordAlphabet = "abcdefghijklmnopqrstuvwxyz'"

// Dictionary is the built-in correction model: unknown words are replaced
// by the most frequent vocabulary word within edit distance one. Words
// already in the vocabulary pass through unchanged, which makes the model
// idempotent on correct text.
type Dictionary struct {
	// rank maps a lowercase word to its frequency rank; lower is more
	// frequent.
	rank map[string]int
}

// NewDictionary builds the dictionary corrector for a language. Only
// languages with a built-in vocabulary are supported; others must go
// through NewDictionaryWithVocab or a different provider.
func NewDictionary(language string) (*Dictionary, error) {
	vocab, ok := builtinVocab[strings.ToLower(language)]
	if !ok {
		return nil, fmt.Errorf("no built-in vocabulary for language %q", language)
	}
	return NewDictionaryWithVocab(vocab), nil
}

// NewDictionaryWithVocab builds a dictionary corrector from a vocabulary
// ordered from most to least frequent.
func NewDictionaryWithVocab(vocab []string) *Dictionary {
	rank := make(map[string]int, len(vocab))
	for i, w := range vocab {
		w = strings.ToLower(w)
		if _, exists := rank[w]; !exists {
			rank[w] = i
		}
	}
	return &Dictionary{rank: rank}
}

// Correct fixes misspelled words while preserving separators, punctuation
// and capitalization.
func (d *Dictionary) Correct(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", nil
	}
	var out strings.Builder
	out.Grow(len(text))

	runes := []rune(text)
	i := 0
	for i < len(runes) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !isWordRune(runes[i]) {
			out.WriteRune(runes[i])
			i++
			continue
		}
		j := i
		for j < len(runes) && isWordRune(runes[j]) {
			j++
		}
		out.WriteString(d.correctWord(string(runes[i:j])))
		i = j
	}
	return out.String(), nil
}

// correctWord replaces a single unknown word with its best candidate, or
// returns it unchanged when it is known or no candidate exists.
func (d *Dictionary) correctWord(word string) string {
	lower := strings.ToLower(word)
	if _, known := d.rank[lower]; known {
		return word
	}
	// Digits and mixed tokens are left alone; they are rarely misspellings.
	for _, r := range lower {
		if !strings.ContainsRune(wordAlphabet, r) {
			return word
		}
	}

	best := ""
	bestRank := -1
	for _, cand := range edits1(lower) {
		if r, ok := d.rank[cand]; ok && (bestRank == -1 || r < bestRank) {
			best = cand
			bestRank = r
		}
	}
	if best == "" {
		return word
	}
	return matchCase(word, best)
}

// edits1 generates all strings within edit distance one of word:
// deletions, transpositions, replacements and insertions.
func edits1(word string) []string {
	var out []string
	n := len(word)
	for i := 0; i < n; i++ {
		out = append(out, word[:i]+word[i+1:]) // delete
	}
	for i := 0; i < n-1; i++ {
		out = append(out, word[:i]+string(word[i+1])+string(word[i])+word[i+2:]) // transpose
	}
	for i := 0; i < n; i++ {
		for _, c := range wordAlphabet {
			out = append(out, word[:i]+string(c)+word[i+1:]) // replace
		}
	}
	for i := 0; i <= n; i++ {
		for _, c := range wordAlphabet {
			out = append(out, word[:i]+string(c)+word[i:]) // insert
		}
	}
	return out
}

// matchCase transfers the source word's capitalization onto the
// replacement: all-caps stays all-caps, a leading capital stays leading.
func matchCase(source, replacement string) string {
	if source == strings.ToUpper(source) && len(source) > 1 {
		return strings.ToUpper(replacement)
	}
	first, _ := firstRune(source)
	if unicode.IsUpper(first) {
		r := []rune(replacement)
		r[0] = unicode.ToUpper(r[0])
		return string(r)
	}
	return replacement
}

func firstRune(s string) (rune, bool) {
	for _, r := range s {
		return r, true
	}
	return 0, false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\''
}
