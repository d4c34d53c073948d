package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)

// PrintError writes err as a single line, styled when w is a terminal.
func PrintError(w io.Writer, err error) {
	prefix := "Error:"
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		prefix = errorStyle.Render(prefix)
	}
	fmt.Fprintln(w, prefix, err)
}
