// Package graph renders the dispatch table as a Mermaid flowchart: namespaces
// form the tree, public actions hang off their namespace.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/dispatch"
)

// GenerateMermaid produces Mermaid flowchart syntax from the dispatch table.
// Namespace nodes are circles, actions are rectangles; capture/argument arity
// is annotated on the action label.
func GenerateMermaid(rows []dispatch.TableRow) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    root((\"/\"))\n")

	seen := map[string]bool{"": true}
	for _, row := range rows {
		emitNamespace(&sb, seen, row.Namespace)

		safeID := sanitizeMermaidID("action_" + row.Reverse)
		label := row.Path
		if arity := arityNote(row); arity != "" {
			label = fmt.Sprintf("%s <br/> %s", row.Path, arity)
		}
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", safeID, label)
		fmt.Fprintf(&sb, "    %s --> %s\n", nsID(row.Namespace), safeID)
	}

	return sb.String()
}

// emitNamespace declares every namespace on the chain once, linked to its
// parent.
func emitNamespace(sb *strings.Builder, seen map[string]bool, ns string) {
	if ns == "" || seen[ns] {
		return
	}

	parent := ""
	if i := strings.LastIndex(ns, "/"); i >= 0 {
		parent = ns[:i]
	}
	emitNamespace(sb, seen, parent)

	fmt.Fprintf(sb, "    %s((\"%s\"))\n", nsID(ns), ns)
	fmt.Fprintf(sb, "    %s --> %s\n", nsID(parent), nsID(ns))
	seen[ns] = true
}

func nsID(ns string) string {
	if ns == "" {
		return "root"
	}
	return sanitizeMermaidID("ns_" + ns)
}

func arityNote(row dispatch.TableRow) string {
	var parts []string
	if row.Captures > 0 {
		parts = append(parts, fmt.Sprintf("captures: %d", row.Captures))
	}
	switch {
	case row.Args == dispatch.VariableArgs:
		parts = append(parts, "args: variable")
	case row.Args > 0:
		parts = append(parts, fmt.Sprintf("args: %d", row.Args))
	}
	return strings.Join(parts, ", ")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
