package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/arbor/pkg/dispatch"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// IsTTY reports whether stdout is attached to a terminal. Piped output gets
// plain markdown instead of styled text.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// RoutesMarkdown renders the dispatch table as a markdown table.
func RoutesMarkdown(rows []dispatch.TableRow) string {
	var sb strings.Builder
	sb.WriteString("# Dispatch Table\n\n")
	if len(rows) == 0 {
		sb.WriteString("_No public actions registered._\n")
		return sb.String()
	}

	sb.WriteString("| Path | Action | Captures | Args | Doc |\n")
	sb.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, row := range rows {
		args := fmt.Sprintf("%d", row.Args)
		if row.Args == dispatch.VariableArgs {
			args = "variable"
		}
		fmt.Fprintf(&sb, "| %s | %s | %d | %s | %s |\n",
			row.Path, row.Reverse, row.Captures, args, row.Doc)
	}
	return sb.String()
}

// RenderRoutes renders the dispatch table for the current output: styled when
// stdout is a terminal, raw markdown otherwise.
func RenderRoutes(rows []dispatch.TableRow) string {
	markdown := RoutesMarkdown(rows)
	if !IsTTY() {
		return markdown
	}
	styled, err := NewRenderer()(markdown)
	if err != nil {
		return markdown
	}
	return styled
}
