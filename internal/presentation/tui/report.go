package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/datamodel/pkg/domain"
	"github.com/aretw0/datamodel/pkg/variants"
)

// RecordMarkdown describes a record as a markdown section with one table row per slot.
func RecordMarkdown(rc *domain.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", rc.Name)
	if m := rc.Model(); m != "" {
		fmt.Fprintf(&sb, "*%s*", m)
		if rc.Path != "" {
			fmt.Fprintf(&sb, " at `%s`", rc.Path)
		}
		sb.WriteString("\n\n")
	}
	sb.WriteString("| Field | Kind | Value |\n|---|---|---|\n")
	for _, s := range rc.Slots() {
		kind := s.Field.Kind.String()
		if s.Field.DependsOn != nil {
			kind += " ← " + s.Field.DependsOn.Name
		}
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", s.Field.Name, kind, cell(s.Value))
	}
	return sb.String()
}

// SchemaMarkdown lists the fields of a schema.
func SchemaMarkdown(s *domain.Schema) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n| Field | Kind | Depends on | Target |\n|---|---|---|---|\n", s.Name)
	for _, f := range s.Fields() {
		dep := ""
		if f.DependsOn != nil {
			dep = f.DependsOn.Name
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", f.Name, f.Kind.String(), dep, f.Target)
	}
	return sb.String()
}

func cell(v domain.Value) string {
	if v == nil {
		return "-"
	}
	if p, ok := v.(*variants.Palette); ok {
		hexes := make([]string, 0, len(p.Colors()))
		for _, c := range p.Colors() {
			hexes = append(hexes, fmt.Sprintf("`%s` %.1f%%", c.Value.Hex(), c.Weight*100))
		}
		if len(hexes) == 0 {
			return "empty palette"
		}
		return strings.Join(hexes, ", ")
	}
	s := strings.ReplaceAll(fmt.Sprint(v), "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
