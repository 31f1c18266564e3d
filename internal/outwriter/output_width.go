package outwriter

import (
	"os"

	"github.com/huangsam/transcomplex/internal/contract"
	"golang.org/x/term"
)

// terminalWidth returns the --width override, the detected terminal width, or 80.
func terminalWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		// Fallback to conservative default if terminal size can't be detected
		return 80
	}
	return detectedWidth
}

// getMaxTableSourceWidth calculates the maximum width for text sources in table
// output based on terminal width and table configuration.
func getMaxTableSourceWidth(cfg *contract.Config) int {
	// Reserve space for fixed columns with table formatting
	baseWidth := 30 // Index + Score + Tier with borders/padding

	// Add family columns with formatting
	if cfg.Detail {
		baseWidth += 42
	}

	// Add explain column
	if cfg.Explain {
		baseWidth += 45
	}

	// Reserve space for table borders, separators, and padding
	baseWidth += 10

	available := terminalWidth(cfg) - baseWidth
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}

// getMaxExplainWidth bounds the explain column so rows stay on one line.
func getMaxExplainWidth(cfg *contract.Config) int {
	return max(20, min(60, terminalWidth(cfg)/3))
}
