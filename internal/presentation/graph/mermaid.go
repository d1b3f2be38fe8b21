package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/weft/pkg/domain"
)

// GraphOverlay contains run state to visualize on the graph.
type GraphOverlay struct {
	Visited []string
	Failed  []string
	Skipped []string
}

// OverlayFromReport marks the nodes a run visited, failed or skipped.
func OverlayFromReport(r *domain.Report) *GraphOverlay {
	o := &GraphOverlay{
		Visited: r.Trace,
		Skipped: r.Skipped,
	}
	for _, f := range r.Failures {
		o.Failed = append(o.Failed, f.NodeID)
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of g.
// Execution connections are solid arrows, data connections dotted arrows labelled
// with their pins. Reroutes are drawn as small circles and nodes without an entry
// function as rounded boxes.
func GenerateMermaid(g *domain.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, n := range g.Nodes {
		safeID := sanitizeMermaidID(n.ID)
		label := strings.ReplaceAll(n.Label(), "\"", "'")

		switch {
		case n.Reroute:
			fmt.Fprintf(&sb, "    %s((\" \"))\n", safeID)
		case n.Function == "":
			fmt.Fprintf(&sb, "    %s(\"%s\")\n", safeID, label)
		default:
			fmt.Fprintf(&sb, "    %s[\"%s <br/> <i>%s</i>\"]\n", safeID, label, n.Function)
		}
	}

	for _, c := range g.Connections() {
		from := sanitizeMermaidID(c.From.Owner.ID)
		to := sanitizeMermaidID(c.To.Owner.ID)
		if c.From.IsExecution() {
			fmt.Fprintf(&sb, "    %s --> %s\n", from, to)
			continue
		}
		fmt.Fprintf(&sb, "    %s -. \"%s → %s\" .-> %s\n", from, c.From.Name, c.To.Name, to)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef skipped fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:4,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#c62828,stroke-width:3px,color:#000;\n")

		writeClass(&sb, "visited", overlay.Visited)
		writeClass(&sb, "skipped", overlay.Skipped)
		writeClass(&sb, "failed", overlay.Failed)
	}

	return sb.String()
}

// writeClass styles each node once. Later classes win in Mermaid, so failures go last.
func writeClass(sb *strings.Builder, class string, ids []string) {
	seen := make(map[string]bool)
	for _, id := range ids {
		safeID := sanitizeMermaidID(id)
		if safeID == "" || seen[safeID] {
			continue
		}
		seen[safeID] = true
		fmt.Fprintf(sb, "    class %s %s;\n", safeID, class)
	}
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
