package core

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/transcomplex/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestCollectArgText(t *testing.T) {
	in, err := CollectArgText([]string{"hello", "world"}, nil)
	require.NoError(t, err)
	assert.Equal(t, schema.TextInput{Source: "args", Text: "hello world"}, in)

	in, err = CollectArgText(nil, strings.NewReader("from stdin"))
	require.NoError(t, err)
	assert.Equal(t, StdinSource, in.Source)
	assert.Equal(t, "from stdin", in.Text)

	_, err = CollectArgText(nil, nil)
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestCollectInputs(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.txt":         "Alpha text.",
		"b.txt":         "Beta text.",
		"nested/c.txt":  "Gamma text.",
		"nested/d.md":   "Not matched.",
		"vendor/e.txt":  "Excluded text.",
		"para.txt":      "First para.\n\n\nSecond para\ncontinues.\n",
		"lines.txt":     "one\n\n two \nthree\n",
	})

	t.Run("explicit paths keep order", func(t *testing.T) {
		cfg := testConfig()
		inputs, err := CollectInputs(cfg, []string{filepath.Join(dir, "b.txt"), filepath.Join(dir, "a.txt")}, nil)
		require.NoError(t, err)
		require.Len(t, inputs, 2)
		assert.Equal(t, "Beta text.", inputs[0].Text)
		assert.Equal(t, "Alpha text.", inputs[1].Text)
	})

	t.Run("globs with excludes and dedup", func(t *testing.T) {
		cfg := testConfig()
		cfg.Globs = []string{filepath.Join(dir, "**", "*.txt")}
		cfg.Excludes = []string{"vendor/", "para.txt", "lines.txt"}
		inputs, err := CollectInputs(cfg, []string{filepath.Join(dir, "a.txt")}, nil)
		require.NoError(t, err)

		var sources []string
		for _, in := range inputs {
			sources = append(sources, filepath.Base(in.Source))
		}
		assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, sources)
	})

	t.Run("everything excluded", func(t *testing.T) {
		cfg := testConfig()
		cfg.Excludes = []string{".txt"}
		_, err := CollectInputs(cfg, []string{filepath.Join(dir, "a.txt")}, nil)
		assert.Error(t, err)
	})

	t.Run("directory is rejected", func(t *testing.T) {
		_, err := CollectInputs(testConfig(), []string{dir}, nil)
		assert.ErrorContains(t, err, "is a directory")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := CollectInputs(testConfig(), []string{filepath.Join(dir, "missing.txt")}, nil)
		assert.Error(t, err)
	})

	t.Run("invalid glob", func(t *testing.T) {
		cfg := testConfig()
		cfg.Globs = []string{"[unclosed"}
		_, err := CollectInputs(cfg, nil, nil)
		assert.Error(t, err)
	})

	t.Run("paragraph split", func(t *testing.T) {
		cfg := testConfig()
		cfg.Split = schema.SplitParagraph
		inputs, err := CollectInputs(cfg, []string{filepath.Join(dir, "para.txt")}, nil)
		require.NoError(t, err)
		require.Len(t, inputs, 2)
		assert.Equal(t, "First para.", inputs[0].Text)
		assert.Equal(t, "Second para\ncontinues.", inputs[1].Text)
		assert.True(t, strings.HasSuffix(inputs[1].Source, "para.txt#2"))
	})

	t.Run("stdin fallback", func(t *testing.T) {
		cfg := testConfig()
		cfg.Split = schema.SplitLine
		inputs, err := CollectInputs(cfg, nil, strings.NewReader("x\ny\n"))
		require.NoError(t, err)
		assert.Equal(t, []schema.TextInput{
			{Source: "stdin:1", Text: "x"},
			{Source: "stdin:2", Text: "y"},
		}, inputs)
	})

	t.Run("no input at all", func(t *testing.T) {
		_, err := CollectInputs(testConfig(), nil, nil)
		assert.ErrorIs(t, err, ErrNoInput)
	})
}

func TestSplitText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		mode    schema.SplitMode
		want    []schema.TextInput
	}{
		{
			name:    "file mode keeps the document",
			content: "a\n\nb",
			mode:    schema.SplitFile,
			want:    []schema.TextInput{{Source: "doc", Text: "a\n\nb"}},
		},
		{
			name:    "line mode skips blanks and keeps line numbers",
			content: "one\n\n two \nthree",
			mode:    schema.SplitLine,
			want: []schema.TextInput{
				{Source: "doc:1", Text: "one"},
				{Source: "doc:3", Text: "two"},
				{Source: "doc:4", Text: "three"},
			},
		},
		{
			name:    "paragraph mode handles CRLF",
			content: "p1 line1\r\np1 line2\r\n\r\np2\r\n",
			mode:    schema.SplitParagraph,
			want: []schema.TextInput{
				{Source: "doc#1", Text: "p1 line1\np1 line2"},
				{Source: "doc#2", Text: "p2"},
			},
		},
		{
			name:    "blank document yields nothing",
			content: "\n \n",
			mode:    schema.SplitParagraph,
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitText("doc", tt.content, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitTextLineTooLong(t *testing.T) {
	orig := maxLineBytes
	maxLineBytes = 16
	t.Cleanup(func() { maxLineBytes = orig })

	content := "short line\n" + strings.Repeat("x", 64) + "\nnever reached\n"

	_, err := SplitText("doc", content, schema.SplitLine)
	require.ErrorIs(t, err, bufio.ErrTooLong)
	assert.Contains(t, err.Error(), "doc after line 1")

	path := filepath.Join(t.TempDir(), "long.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	cfg := testConfig()
	cfg.Split = schema.SplitLine
	_, err = CollectInputs(cfg, []string{path}, nil)
	assert.ErrorIs(t, err, bufio.ErrTooLong)
}
