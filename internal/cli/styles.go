package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Styles contains the lipgloss styles for text output.
type Styles struct {
	Header  lipgloss.Style
	Group   lipgloss.Style
	Rank    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style

	// Icons (degraded to ASCII when not interactive)
	IconSuccess string
	IconError   string
}

// NewStyles creates a new Styles instance.
// When enabled is false, styles return text unchanged (for non-TTY output).
func NewStyles(enabled bool) *Styles {
	s := &Styles{}

	if enabled {
		s.Header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")) // White bold
		s.Group = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))  // Blue
		s.Rank = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))              // Yellow
		s.Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))              // Gray
		s.Success = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))           // Green
		s.Error = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))              // Red

		s.IconSuccess = "✓"
		s.IconError = "✗"
	} else {
		s.Header = lipgloss.NewStyle()
		s.Group = lipgloss.NewStyle()
		s.Rank = lipgloss.NewStyle()
		s.Muted = lipgloss.NewStyle()
		s.Success = lipgloss.NewStyle()
		s.Error = lipgloss.NewStyle()

		s.IconSuccess = "PASS"
		s.IconError = "FAIL"
	}

	return s
}

// stylesFor enables styling only when w is a terminal.
func stylesFor(w io.Writer) *Styles {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return NewStyles(true)
	}
	return NewStyles(false)
}
