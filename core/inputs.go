package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/huangsam/transcomplex/internal/contract"
	"github.com/huangsam/transcomplex/schema"
)

// StdinSource is the source name of texts read from standard input.
const StdinSource = "stdin"

// ErrNoInput is returned when neither arguments, globs nor stdin supplied any text.
var ErrNoInput = errors.New("no input texts: pass files, --glob patterns or pipe text on stdin")

// CollectArgText builds the single input of the score command: the joined
// arguments, or all of stdin when there are none.
func CollectArgText(args []string, stdin io.Reader) (schema.TextInput, error) {
	if len(args) > 0 {
		return schema.TextInput{Source: "args", Text: strings.Join(args, " ")}, nil
	}
	if stdin == nil {
		return schema.TextInput{}, ErrNoInput
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return schema.TextInput{}, fmt.Errorf("failed to read stdin: %w", err)
	}
	return schema.TextInput{Source: StdinSource, Text: string(data)}, nil
}

// CollectInputs resolves paths and cfg.Globs into files, drops excluded ones,
// reads them and splits them according to cfg.Split. When no file is named at
// all, stdin is read instead.
func CollectInputs(cfg *contract.Config, paths []string, stdin io.Reader) ([]schema.TextInput, error) {
	files, err := resolveFiles(paths, cfg.Globs, cfg.Excludes)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		if len(paths) > 0 || len(cfg.Globs) > 0 {
			return nil, fmt.Errorf("no files matched after excludes were applied")
		}
		if stdin == nil {
			return nil, ErrNoInput
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return SplitText(StdinSource, string(data), cfg.Split)
	}

	var inputs []schema.TextInput
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		pieces, err := SplitText(f, string(data), cfg.Split)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, pieces...)
	}
	if len(inputs) == 0 {
		return nil, ErrNoInput
	}
	return inputs, nil
}

// resolveFiles expands globs, keeps explicit paths in order and removes
// duplicates and excluded files.
func resolveFiles(paths, globs, excludes []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	add := func(f string) {
		if _, dup := seen[f]; dup || contract.ShouldIgnore(f, excludes) {
			return
		}
		seen[f] = struct{}{}
		files = append(files, f)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot read input %s: %w", p, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory; use --glob '%s/**/*.txt' to score its files", p, strings.TrimRight(p, "/"))
		}
		add(p)
	}

	for _, pattern := range globs {
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to expand glob %q: %w", pattern, err)
		}
		slices.Sort(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return files, nil
}

// maxLineBytes is the longest line the line split mode accepts.
var maxLineBytes = 16 * 1024 * 1024

// SplitText cuts one document into texts. Line and paragraph modes drop blank
// pieces and tag each piece's source with its 1-based position.
func SplitText(source, content string, mode schema.SplitMode) ([]schema.TextInput, error) {
	switch mode {
	case schema.SplitLine:
		var out []schema.TextInput
		scanner := bufio.NewScanner(strings.NewReader(content))
		scanner.Buffer(make([]byte, 0, min(64*1024, maxLineBytes)), maxLineBytes)
		line := 0
		for scanner.Scan() {
			line++
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			out = append(out, schema.TextInput{Source: source + ":" + strconv.Itoa(line), Text: text})
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to split %s after line %d: %w", source, line, err)
		}
		return out, nil
	case schema.SplitParagraph:
		var out []schema.TextInput
		n := 0
		for _, para := range splitParagraphs(content) {
			n++
			out = append(out, schema.TextInput{Source: source + "#" + strconv.Itoa(n), Text: para})
		}
		return out, nil
	default:
		return []schema.TextInput{{Source: source, Text: content}}, nil
	}
}

// splitParagraphs splits on blank lines and trims each paragraph.
func splitParagraphs(content string) []string {
	var paras []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paras = append(paras, strings.Join(current, "\n"))
			current = current[:0]
		}
	}
	for line := range strings.Lines(strings.ReplaceAll(content, "\r\n", "\n")) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		current = append(current, trimmed)
	}
	flush()
	return paras
}
