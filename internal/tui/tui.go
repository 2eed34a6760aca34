package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// IsTTY returns true if stdin and stdout are both terminals
func IsTTY() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

// IsOutputTTY returns true if stdout is a terminal
func IsOutputTTY() bool {
	return isTerminal(os.Stdout)
}

// ConfigureColor turns styling off when stdout is not a terminal or NO_COLOR is set
func ConfigureColor() {
	if !IsOutputTTY() || os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
