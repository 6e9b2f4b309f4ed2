package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/datamodel/pkg/domain"
)

// Overlay marks records touched by the last propagation.
type Overlay struct {
	Changed []domain.Ref
	Failed  []domain.Ref
}

// GenerateMermaid produces a Mermaid flowchart of schemas and records.
// Each schema is a subgraph of its fields:
// - Derived field: [[Subroutine]], with an edge from its source
// - Reference field: [/Parallelogram/], with a dotted edge to its target schema
// - Default: [Rectangle]
// Records are rounded nodes with dotted edges to the records they reference.
func GenerateMermaid(schemas []*domain.Schema, records []*domain.Record, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	known := make(map[string]bool, len(schemas))
	for _, s := range schemas {
		known[s.Name] = true
	}

	for _, s := range schemas {
		fmt.Fprintf(&sb, "    subgraph %s[\"%s\"]\n", schemaID(s.Name), s.Name)
		for _, f := range s.Fields() {
			opener, closer := "[", "]"
			switch {
			case f.DependsOn != nil:
				opener, closer = "[[", "]]"
			case f.Kind != nil && f.Kind.References:
				opener, closer = "[/", "/]"
			}
			fmt.Fprintf(&sb, "        %s%s\"%s: %s\"%s\n", fieldID(s.Name, f.Name), opener, f.Name, f.Kind, closer)
		}
		sb.WriteString("    end\n")

		for _, f := range s.Fields() {
			if f.DependsOn != nil {
				fmt.Fprintf(&sb, "    %s --> %s\n", fieldID(s.Name, f.DependsOn.Name), fieldID(s.Name, f.Name))
			}
			if f.Target != "" && known[f.Target] {
				fmt.Fprintf(&sb, "    %s -.-> %s\n", fieldID(s.Name, f.Name), schemaID(f.Target))
			}
		}
	}

	present := make(map[domain.Ref]bool, len(records))
	for _, rc := range records {
		present[rc.Ref()] = true
	}
	for _, rc := range records {
		fmt.Fprintf(&sb, "    %s(\"%s\")\n", recordID(rc.Ref()), escape(rc.Ref().Code()))
		for _, slot := range rc.Slots() {
			refs, ok := slot.Value.(domain.Referencing)
			if !ok {
				continue
			}
			for _, to := range refs.References() {
				if !present[to] {
					continue
				}
				fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", recordID(rc.Ref()), escape(slot.Field.Name), recordID(to))
			}
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef changed fill:#dcfce7,stroke:#15803d,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#fee2e2,stroke:#b91c1c,stroke-width:4px,color:#000;\n")
		for _, ref := range overlay.Changed {
			fmt.Fprintf(&sb, "    class %s changed;\n", recordID(ref))
		}
		for _, ref := range overlay.Failed {
			fmt.Fprintf(&sb, "    class %s failed;\n", recordID(ref))
		}
	}

	return sb.String()
}

func schemaID(name string) string { return "schema_" + sanitizeMermaidID(name) }

func fieldID(schema, field string) string {
	return sanitizeMermaidID(schema) + "__" + sanitizeMermaidID(field)
}

func recordID(ref domain.Ref) string {
	return "rec_" + sanitizeMermaidID(ref.Model) + "__" + sanitizeMermaidID(ref.Name)
}

func escape(label string) string { return strings.ReplaceAll(label, "\"", "'") }

var idReplacer = strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_", ":", "_")

func sanitizeMermaidID(id string) string { return idReplacer.Replace(id) }
