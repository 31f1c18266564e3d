package provider

import (
	"bufio"
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed lexicon/*.txt
var lexiconFS embed.FS

// Lexicon holds the word lists used by the linguistic and translation providers.
type Lexicon struct {
	CommonWords map[string]struct{}
	DomainTerms map[string]struct{}
	Idioms      [][]string
}

// lexiconFile is the TOML override format. Lists that are absent keep their defaults.
type lexiconFile struct {
	CommonWords *[]string `toml:"common_words"`
	DomainTerms *[]string `toml:"domain_terms"`
	Idioms      *[]string `toml:"idioms"`
}

// DefaultLexicon returns the built-in word lists.
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		CommonWords: toSet(mustReadList("lexicon/common_words.txt")),
		DomainTerms: toSet(mustReadList("lexicon/domain_terms.txt")),
		Idioms:      toIdioms(mustReadList("lexicon/idioms.txt")),
	}
}

// LoadLexicon reads a TOML override from path on top of the built-in lists.
// An empty path returns the defaults.
func LoadLexicon(path string) (*Lexicon, error) {
	lex := DefaultLexicon()
	if path == "" {
		return lex, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat lexicon: %w", err)
	}

	var f lexiconFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("failed to decode lexicon: %w", err)
	}
	if f.CommonWords != nil {
		lex.CommonWords = toSet(*f.CommonWords)
	}
	if f.DomainTerms != nil {
		lex.DomainTerms = toSet(*f.DomainTerms)
	}
	if f.Idioms != nil {
		lex.Idioms = toIdioms(*f.Idioms)
	}
	return lex, nil
}

func mustReadList(name string) []string {
	fh, err := lexiconFS.Open(name)
	if err != nil {
		panic(fmt.Sprintf("embedded lexicon %s missing: %v", name, err))
	}
	defer func() { _ = fh.Close() }()

	var out []string
	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

func toIdioms(lines []string) [][]string {
	idioms := make([][]string, 0, len(lines))
	for _, line := range lines {
		if fields := strings.Fields(strings.ToLower(line)); len(fields) > 0 {
			idioms = append(idioms, fields)
		}
	}
	return idioms
}
