// Package ui provides stderr-based UI output for the gridgen CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// Printer writes styled status lines for CLI commands.
type Printer struct {
	Out io.Writer
}

// New returns a Printer writing to stderr.
func New() *Printer {
	return &Printer{Out: os.Stderr}
}

// Info prints a dimmed progress line.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintln(p.Out, dimStyle.Render(fmt.Sprintf(format, args...)))
}

// Success prints a green check line.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.Out, successStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

// Error prints a red error line.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintln(p.Out, errorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// WarningWriter returns an io.Writer that renders each written line in the
// warning style. The settings and scenario engines write plain "warning:"
// lines to an injected writer; routing them through this writer styles them
// on a terminal without the engines knowing about the UI.
func (p *Printer) WarningWriter() io.Writer {
	return warningWriter{out: p.Out}
}

type warningWriter struct {
	out io.Writer
}

func (w warningWriter) Write(b []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(b), "\n"), "\n") {
		fmt.Fprintln(w.out, warnStyle.Render(line))
	}
	return len(b), nil
}
