package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountSyllables(t *testing.T) {
	tests := []struct {
		word     string
		expected int
	}{
		{"the", 1},
		{"cat", 1},
		{"make", 1},
		{"table", 2},
		{"whale", 1},
		{"tree", 1},
		{"agree", 2},
		{"jumped", 1},
		{"wanted", 2},
		{"boxes", 2},
		{"makes", 1},
		{"happy", 2},
		{"beautiful", 3},
		{"complexity", 4},
		{"Quantum", 2},
		{"", 0},
		{"123", 0},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.expected, countSyllables(tt.word))
		})
	}
}

func TestAnalyze(t *testing.T) {
	doc, err := analyze("The cat sat on the mat. It was a sunny day.")
	require.NoError(t, err)

	assert.Len(t, doc.sentences, 2)
	assert.Len(t, doc.words, 11)
	assert.Equal(t, "the", doc.lower[0])
	assert.Equal(t, "The", doc.words[0])
	assert.NotContains(t, doc.words, ".")
}

func TestAnalyzeEmpty(t *testing.T) {
	for _, text := range []string{"", "   ", "...", "\n\t!?"} {
		_, err := analyze(text)
		assert.ErrorIs(t, err, ErrEmptyText, "text %q", text)
	}
}

func TestAlphabetic(t *testing.T) {
	doc, err := analyze("In 2024 we shipped 3 releases, didn't we?")
	require.NoError(t, err)

	alpha := doc.alphabetic()
	assert.NotContains(t, alpha, "2024")
	assert.NotContains(t, alpha, "3")
	assert.Contains(t, alpha, "didn't")
}
