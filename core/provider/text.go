package provider

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/sentences"
	"github.com/clipperhouse/uax29/v2/words"
)

// sentence is one segmented sentence with its word tokens.
type sentence struct {
	raw   string
	words []string
}

// document is the tokenized view of a text shared by the built-in providers.
type document struct {
	sentences []sentence
	words     []string
	lower     []string
}

// analyze segments text into sentences and words following UAX #29.
// Tokens without a letter or digit (punctuation, whitespace) are dropped.
func analyze(text string) (*document, error) {
	doc := &document{}
	sents := sentences.FromString(text)
	for sents.Next() {
		raw := sents.Value()
		s := sentence{raw: raw}
		toks := words.FromString(raw)
		for toks.Next() {
			tok := toks.Value()
			if isWord(tok) {
				s.words = append(s.words, tok)
			}
		}
		if len(s.words) == 0 {
			continue
		}
		doc.sentences = append(doc.sentences, s)
		doc.words = append(doc.words, s.words...)
	}
	if len(doc.words) == 0 {
		return nil, ErrEmptyText
	}

	doc.lower = make([]string, len(doc.words))
	for i, w := range doc.words {
		doc.lower[i] = strings.ToLower(w)
	}
	return doc, nil
}

func (d *document) wordCount() float64 {
	return float64(len(d.words))
}

func (d *document) sentenceCount() float64 {
	return float64(len(d.sentences))
}

// alphabetic returns the lowercased words made only of letters and apostrophes.
func (d *document) alphabetic() []string {
	out := make([]string, 0, len(d.lower))
	for _, w := range d.lower {
		if isAlpha(w) {
			out = append(out, w)
		}
	}
	return out
}

func isWord(tok string) bool {
	for _, r := range tok {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func isAlpha(w string) bool {
	hasLetter := false
	for _, r := range w {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case r == '\'' || r == '’':
		default:
			return false
		}
	}
	return hasLetter
}

func countLetters(w string) int {
	n := 0
	for _, r := range w {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

// countSyllables estimates English syllables from vowel groups, with the
// usual corrections for a silent final "e" and for "-ed" and "-es" endings.
func countSyllables(word string) int {
	var letters []rune
	for _, r := range strings.ToLower(word) {
		if unicode.IsLetter(r) {
			letters = append(letters, r)
		}
	}
	n := len(letters)
	if n == 0 {
		return 0
	}
	if n <= 3 {
		return 1
	}

	count := 0
	prevVowel := false
	for _, r := range letters {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	last, prev, before := letters[n-1], letters[n-2], letters[n-3]
	switch {
	case last == 'e' && !isVowel(prev) && (prev != 'l' || isVowel(before)):
		count--
	case last == 'd' && prev == 'e' && before != 't' && before != 'd' && !isVowel(before):
		count--
	case last == 's' && prev == 'e' && !isVowel(before) && !strings.ContainsRune("sxzcgh", before):
		count--
	}
	return max(count, 1)
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
