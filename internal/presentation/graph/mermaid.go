package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/debot/pkg/domain"
)

// Overlay contains session data to highlight on the graph.
type Overlay struct {
	Current  domain.StateID
	Previous domain.StateID
}

const exitNode = "exit"

// GenerateMermaid produces a Mermaid flowchart of a debot context graph.
// Contexts are rectangles, the initial context a circle and EXIT a stadium.
// Edges carry the action label: solid for presented actions, dotted for
// instant ones. CURRENT targets loop back to the context; PREV targets are
// drawn as dashed edges to a "prev" marker since they resolve at runtime.
func GenerateMermaid(g domain.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	usesExit, usesPrev := false, false
	for _, c := range g {
		id := nodeID(c.State())
		label := fmt.Sprintf("#%d", c.ID)
		if c.Desc != "" {
			label += " " + c.Desc
		}
		opener, closer := "[", "]"
		if c.State() == domain.StateZero {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, escape(label), closer)

		for _, act := range c.Actions {
			label := act.Desc
			if label == "" {
				label = act.Name
			}
			label = escape(fmt.Sprintf("%s (%s)", label, domain.KindName(act.Kind)))

			var to string
			switch {
			case act.To.IsCurrent():
				to = id
			case act.To.IsPrev():
				usesPrev = true
				fmt.Fprintf(&sb, "    %s -. \"%s\" .-> prev\n", id, label)
				continue
			case act.To.IsExit():
				usesExit = true
				to = exitNode
			default:
				to = nodeID(act.To)
			}

			if act.Instant {
				fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", id, label, to)
			} else {
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", id, label, to)
			}
		}
	}
	if usesExit {
		fmt.Fprintf(&sb, "    %s([\"EXIT\"])\n", exitNode)
	}
	if usesPrev {
		sb.WriteString("    prev{{\"previous context\"}}\n")
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on both light and dark themes.
		sb.WriteString("    classDef previous fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		if id := overlayID(overlay.Previous); id != "" && overlay.Previous != overlay.Current {
			fmt.Fprintf(&sb, "    class %s previous;\n", id)
		}
		if id := overlayID(overlay.Current); id != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", id)
		}
	}

	return sb.String()
}

func nodeID(s domain.StateID) string {
	if s.IsExit() {
		return exitNode
	}
	return "ctx" + s.String()
}

func overlayID(s domain.StateID) string {
	if _, ok := s.Context(); ok || s.IsExit() {
		return nodeID(s)
	}
	return ""
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
