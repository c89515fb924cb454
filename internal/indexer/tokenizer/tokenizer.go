// Package tokenizer splits text into index terms. Words are runs of ASCII
// letters, digits and a fixed set of French accented letters; terms are the
// lowercased words cut to MaxTermLength runes.
package tokenizer

import (
	"iter"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxTermLength is the number of runes kept from each word. Distinct words
// sharing a prefix collapse to the same term.
const MaxTermLength = 7

// accented lists the non-ASCII word letters. Uppercase forms are included so
// that a capitalised word such as "École" keeps its first letter.
const accented = "éàèùâêîôûëïüÿçœæÉÀÈÙÂÊÎÔÛËÏÜŸÇŒÆ"

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r < utf8.RuneSelf:
		return false
	}
	return strings.ContainsRune(accented, r)
}

// Normalize lowercases word and truncates it to MaxTermLength runes.
func Normalize(word string) string {
	word = strings.ToLower(word)
	if utf8.RuneCountInString(word) <= MaxTermLength {
		return word
	}
	n := 0
	for i := range word {
		if n == MaxTermLength {
			return word[:i]
		}
		n++
	}
	return word
}

// Tokenize yields the raw words of text in order. Text is NFC-composed
// first so decomposed accents match the word alphabet. The sequence can be
// ranged over any number of times.
func Tokenize(text string) iter.Seq[string] {
	text = norm.NFC.String(text)
	return func(yield func(string) bool) {
		start := -1
		for i, r := range text {
			if isWordRune(r) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 {
				if !yield(text[start:i]) {
					return
				}
				start = -1
			}
		}
		if start >= 0 {
			yield(text[start:])
		}
	}
}

// Terms yields the normalized words of text, skipping stop words.
func Terms(text string, stop StopWords) iter.Seq[string] {
	return func(yield func(string) bool) {
		for word := range Tokenize(text) {
			term := Normalize(word)
			if term == "" || stop.Contains(term) {
				continue
			}
			if !yield(term) {
				return
			}
		}
	}
}
