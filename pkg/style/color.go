package style

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
)

// ColorEnabled reports whether styled output should be written to out.
// Colour is off when out is not a terminal, NO_COLOR is set or the
// terminal only supports ASCII.
func ColorEnabled(out io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	return termenv.NewOutput(f).Profile != termenv.Ascii
}

// Setup configures lipgloss and pterm for out. noColor forces plain output.
func Setup(out io.Writer, noColor bool) {
	if noColor || !ColorEnabled(out) {
		DisableColor()
		return
	}
	lipgloss.SetColorProfile(termenv.NewOutput(out).Profile)
	pterm.EnableColor()
}

// DisableColor turns every style into plain text
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
	pterm.DisableColor()
}
