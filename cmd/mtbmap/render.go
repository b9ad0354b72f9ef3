package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"mtb-mapper/internal/diagnostic"
)

type styles struct {
	err, warn, info lipgloss.Style
	pair, field     lipgloss.Style
	hint, ok        lipgloss.Style
}

func plainStyles() styles {
	s := lipgloss.NewStyle()
	return styles{s, s, s, s, s, s, s}
}

func colorStyles(r *lipgloss.Renderer) styles {
	return styles{
		err:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")),
		warn:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFB86C")),
		info:  r.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		pair:  r.NewStyle().Foreground(lipgloss.Color("#7D56F4")),
		field: r.NewStyle().Bold(true),
		hint:  r.NewStyle().Foreground(lipgloss.Color("#666666")),
		ok:    r.NewStyle().Foreground(lipgloss.Color("#90EE90")),
	}
}

// printer writes diagnostics, colored when w is a terminal.
type printer struct {
	w  io.Writer
	st styles
}

func newPrinter(w io.Writer, color bool) *printer {
	p := &printer{w: w, st: plainStyles()}

	if color && isTerminal(w) {
		p.st = colorStyles(lipgloss.NewRenderer(w))
	}

	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *printer) severity(s diagnostic.DiagnosticSeverity) string {
	label := fmt.Sprintf("%-7s", s)

	switch s {
	case diagnostic.DiagnosticError:
		return p.st.err.Render(label)
	case diagnostic.DiagnosticWarning:
		return p.st.warn.Render(label)
	default:
		return p.st.info.Render(label)
	}
}

func (p *printer) diagnostics(d *diagnostic.Diagnostics) {
	for _, diag := range d.All() {
		var b strings.Builder

		b.WriteString(p.severity(diag.Severity))
		b.WriteByte(' ')

		if diag.File != "" {
			b.WriteString(diag.File)
			b.WriteString(": ")
		}

		if diag.TypePair != "" {
			b.WriteString(p.st.pair.Render(diag.TypePair))
			b.WriteByte(' ')
		}

		if diag.FieldPath != "" {
			b.WriteString(p.st.field.Render(diag.FieldPath))
			b.WriteString(": ")
		}

		b.WriteString(diag.Message)
		fmt.Fprintf(&b, " [%s]", diag.Code)

		if len(diag.Suggestions) > 0 {
			b.WriteByte(' ')
			b.WriteString(p.st.hint.Render("did you mean " + strings.Join(diag.Suggestions, ", ") + "?"))
		}

		fmt.Fprintln(p.w, b.String())
	}
}

func (p *printer) summary(mappings int, d *diagnostic.Diagnostics) {
	line := fmt.Sprintf("%d mappings checked: %d errors, %d warnings", mappings, len(d.Errors), len(d.Warnings))

	if d.HasErrors() {
		fmt.Fprintln(p.w, p.st.err.Render(line))
		return
	}

	fmt.Fprintln(p.w, p.st.ok.Render(line))
}
