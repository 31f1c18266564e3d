package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/huangsam/transcomplex/schema"
	"github.com/mattn/go-runewidth"
)

// Color variables for console output.
var (
	VeryHighColor = color.New(color.FgRed, color.Bold)     // VeryHighColor represents standard danger.
	HighColor     = color.New(color.FgMagenta, color.Bold) // HighColor represents strong, distinct warning.
	MediumColor   = color.New(color.FgYellow)              // MediumColor represents standard caution, not bold.
	LowColor      = color.New(color.FgCyan)                // LowColor represents informational / low-priority signal.
	ErrorColor    = color.New(color.FgRed)
)

// GetColorLabel returns a colored text label for console output (table).
// It uses schema.GetPlainLabel to determine the string, and then applies the appropriate color.
// Custom tiers outside the default set are printed without color.
func GetColorLabel(tier schema.Tier) string {
	text := schema.GetPlainLabel(tier)

	switch tier {
	case schema.VeryHighTier:
		return VeryHighColor.Sprint(text)
	case schema.HighTier:
		return HighColor.Sprint(text)
	case schema.MediumTier:
		return MediumColor.Sprint(text)
	case schema.LowTier:
		return LowColor.Sprint(text)
	default:
		return text
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ShouldIgnore returns true if the given path matches any of the exclude patterns.
// Patterns with wildcard characters (*, ?, [ ], **) are matched with doublestar
// against the full path and the base name. Patterns ending with '/' are treated
// as prefixes. Patterns starting with '.' are treated as suffix (extension) matches.
func ShouldIgnore(path string, excludes []string) bool {
	slashed := filepath.ToSlash(path)
	for _, ex := range excludes {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}

		if strings.ContainsAny(ex, "*?[") {
			if ok, err := doublestar.Match(ex, slashed); err == nil && ok {
				return true
			}
			if ok, err := doublestar.Match(ex, filepath.Base(slashed)); err == nil && ok {
				return true
			}
			continue
		}

		switch {
		case strings.HasSuffix(ex, "/"):
			if strings.HasPrefix(slashed, ex) || strings.Contains(slashed, "/"+ex) {
				return true
			}
		case strings.HasPrefix(ex, "."):
			if strings.HasSuffix(slashed, ex) {
				return true
			}
		case strings.Contains(slashed, ex):
			return true
		}
	}
	return false
}

// GetCacheDBFilePath returns the path to the SQLite DB file for result cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".transcomplex_cache.db"
	}
	return filepath.Join(homeDir, ".transcomplex_cache.db")
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for analysis storage.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".transcomplex_analysis.db"
	}
	return filepath.Join(homeDir, ".transcomplex_analysis.db")
}

// TruncateText shortens text to at most maxWidth terminal cells, ending with an ellipsis.
// Newlines and tabs are flattened to spaces first so a text fits on one table row.
func TruncateText(text string, maxWidth int) string {
	flat := strings.Join(strings.Fields(text), " ")
	if maxWidth <= 3 || runewidth.StringWidth(flat) <= maxWidth {
		return flat
	}
	return runewidth.Truncate(flat, maxWidth, "...")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to leave room for the prefix and at least one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
