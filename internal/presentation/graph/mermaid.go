package graph

import (
	"fmt"
	"strings"

	"github.com/yurixander/minimal/pkg/domain"
	"github.com/yurixander/minimal/pkg/registry"
)

// Overlay carries the feature lifecycle to color on the graph.
type Overlay struct {
	Status map[string]registry.Status
}

// GenerateMermaid produces a Mermaid flowchart of the propagation wiring:
// every bound state field points at the event it raises, and every event
// fans out to the features listening on it. Shapes:
// - Field: [Rectangle]
// - Event: ([Stadium])
// - Feature: [[Subroutine]]
// Awaited features get a solid edge, background ones a dotted edge.
func GenerateMermaid(points []domain.DeltaPoint, features []registry.Feature, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, p := range points {
		fieldID := "field_" + sanitizeMermaidID(string(p.Field))
		eventID := "event_" + sanitizeMermaidID(p.Event.String())
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", fieldID, p.Field))
		sb.WriteString(fmt.Sprintf("    %s([\"%s\"])\n", eventID, p.Event))
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", fieldID, eventID))
	}

	for _, f := range features {
		featureID := "feature_" + sanitizeMermaidID(f.Name)
		sb.WriteString(fmt.Sprintf("    %s[[\"%s\"]]\n", featureID, f.Name))

		arrow := "-.->"
		if f.AwaitInit {
			arrow = "-->"
		}
		for _, event := range domain.Events(points) {
			eventID := "event_" + sanitizeMermaidID(event.String())
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", eventID, arrow, featureID))
		}
	}

	if overlay != nil && len(overlay.Status) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme.
		sb.WriteString("    classDef active fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef pending fill:#fff8e1,stroke:#f9a825,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef disabled fill:#eceff1,stroke:#90a4ae,stroke-dasharray:4,color:#000;\n")

		for _, f := range features {
			status, ok := overlay.Status[f.Name]
			if !ok {
				continue
			}
			sb.WriteString(fmt.Sprintf("    class feature_%s %s;\n", sanitizeMermaidID(f.Name), status))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
