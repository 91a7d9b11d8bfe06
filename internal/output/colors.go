package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ColorsEnabled reports whether styled output should be produced. Colors are
// disabled when stdout is not a terminal or the terminal reports no color
// support.
func ColorsEnabled() bool {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return false
	}
	return termenv.EnvColorProfile() != termenv.Ascii
}

func styled(text string, style lipgloss.Style) string {
	if !ColorsEnabled() {
		return text
	}
	return style.Render(text)
}

// ColorRunName colors a run directory name, highlighting the most recent run
func ColorRunName(name string, latest bool) string {
	if latest {
		return styled(name+" (latest)", lipgloss.NewStyle().Foreground(lipgloss.Color("6")))
	}
	return styled(name, lipgloss.NewStyle().Foreground(lipgloss.Color("12")))
}

// ColorDim makes text dim/gray
func ColorDim(text string) string {
	return styled(text, lipgloss.NewStyle().Foreground(lipgloss.Color("8")))
}

// ColorWarn colors warning text
func ColorWarn(text string) string {
	return styled(text, lipgloss.NewStyle().Foreground(lipgloss.Color("3")))
}
