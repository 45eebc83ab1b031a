// Package visualizer renders a wizard form as a Mermaid flowchart.
//
// Fields appear in the order they are visited. Conditional fields are drawn
// as decision nodes with a bypass edge, since a run may skip them, and
// declared dependencies become dotted edges.
package visualizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amp-labs/amp-wizard/wizard"
)

// Visualizer errors.
var (
	ErrFormNil   = errors.New("form cannot be nil")
	ErrEmptyForm = errors.New("form has no fields")
	ErrDirection = errors.New("direction must be TD or LR")
)

// GenerateMermaid converts a form to a Mermaid flowchart.
func GenerateMermaid(form *wizard.Form) (string, error) {
	return GenerateMermaidWithOptions(form, DefaultOptions())
}

// GenerateMermaidWithOptions generates a Mermaid flowchart with custom options.
func GenerateMermaidWithOptions(form *wizard.Form, opts Options) (string, error) {
	if form == nil {
		return "", ErrFormNil
	}

	fields := form.Fields()
	if len(fields) == 0 {
		return "", ErrEmptyForm
	}

	if opts.Direction == "" {
		opts.Direction = "TD"
	}

	if opts.Direction != "TD" && opts.Direction != "LR" {
		return "", fmt.Errorf("%w: %q", ErrDirection, opts.Direction)
	}

	highlighted := make(map[string]bool, len(opts.HighlightPath))
	for _, path := range opts.HighlightPath {
		highlighted[path] = true
	}

	var sb strings.Builder

	sb.WriteString("```mermaid\n")
	fmt.Fprintf(&sb, "flowchart %s\n", opts.Direction)
	sb.WriteString("    start([start])\n")

	for i, info := range fields {
		fmt.Fprintf(&sb, "    %s%s\n", nodeID(i), shape(info, opts.ShowDescriptions))
	}

	sb.WriteString("    done([done])\n")

	// Visit order. A conditional field can be bypassed, so the previous
	// node also links to the next one.
	prev := "start"

	for i, info := range fields {
		id := nodeID(i)
		fmt.Fprintf(&sb, "    %s --> %s\n", prev, id)

		if info.Conditional {
			fmt.Fprintf(&sb, "    %s -- skip --> %s\n", id, next(i, len(fields)))
		}

		prev = id
	}

	fmt.Fprintf(&sb, "    %s --> done\n", prev)

	if opts.ShowDependencies {
		for i, info := range fields {
			for _, dep := range info.Dependencies {
				for j := range i {
					if writes(fields[j].Path, dep) {
						fmt.Fprintf(&sb, "    %s -.-> %s\n", nodeID(j), nodeID(i))
					}
				}
			}
		}
	}

	for i, info := range fields {
		switch {
		case highlighted[info.Path]:
			fmt.Fprintf(&sb, "    class %s highlighted\n", nodeID(i))
		case info.Conditional:
			fmt.Fprintf(&sb, "    class %s conditional\n", nodeID(i))
		}
	}

	sb.WriteString("\n")
	sb.WriteString("    classDef conditional fill:#e1f5ff,stroke:#01579b,stroke-width:2px\n")
	sb.WriteString("    classDef highlighted fill:#fff9c4,stroke:#f57f17,stroke-width:3px\n")
	sb.WriteString("```\n")

	return sb.String(), nil
}

func nodeID(index int) string {
	return fmt.Sprintf("f%d", index)
}

func next(index, count int) string {
	if index+1 == count {
		return "done"
	}

	return nodeID(index + 1)
}

func shape(info wizard.FieldInfo, withDescription bool) string {
	label := info.Path
	if withDescription && info.Description != "" {
		label += "<br/>" + info.Description
	}

	label = strings.ReplaceAll(label, `"`, "#quot;")

	if info.Conditional {
		return fmt.Sprintf(`{"%s"}`, label)
	}

	return fmt.Sprintf(`["%s"]`, label)
}

// writes reports whether a field stored at path provides dep, either the
// path itself or a value nested under it.
func writes(path, dep string) bool {
	return path == dep || strings.HasPrefix(path, dep+".")
}
