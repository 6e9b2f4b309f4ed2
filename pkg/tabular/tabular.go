package tabular

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/datamodel/pkg/domain"
)

// Default separators, in their escaped form.
const (
	DefaultRowSep = `\n`
	DefaultColSep = `\t`
)

var escapes = strings.NewReplacer(`\t`, "\t", `\n`, "\n", `\r`, "\r")

// Unescape turns the escape sequences \t, \n and \r into the characters they name.
func Unescape(sep string) string { return escapes.Replace(sep) }

// Table is parsed text: rows of cells.
type Table [][]string

// Parse splits text into rows and cells. Separators may be given escaped. Spaces before a
// line break are dropped and empty rows are skipped.
func Parse(text, rowSep, colSep string) Table {
	rowSep, colSep = Unescape(rowSep), Unescape(colSep)
	if rowSep == "" {
		rowSep = "\n"
	}
	text = strings.ReplaceAll(text, " \r\n", "\n")
	text = strings.ReplaceAll(text, " \n", "\n")

	var t Table
	for _, line := range strings.Split(text, rowSep) {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		if colSep == "" {
			t = append(t, []string{line})
			continue
		}
		t = append(t, strings.Split(line, colSep))
	}
	return t
}

// Row is one parsed line matched to its record. Record is nil when no record carries the
// name in the first cell.
type Row struct {
	Line   int
	Name   string
	Cells  []string
	Record *domain.Record
}

// Short reports whether the row has fewer cells than the plan has columns.
func (r Row) Short(columns int) bool { return len(r.Cells) < columns+1 }

// Plan pairs rows with records and columns with fields.
type Plan struct {
	Fields []*domain.Variable
	Rows   []Row
	// Missing lists records no row mentions.
	Missing []*domain.Record
}

// NewPlan matches the first cell of every row to a record name, ignoring case. Column i+1
// feeds Fields[i]; nil fields skip their column.
func NewPlan(records []*domain.Record, fields []*domain.Variable, t Table) *Plan {
	byName := make(map[string]*domain.Record, len(records))
	for _, rc := range records {
		byName[strings.ToLower(rc.Name)] = rc
	}

	p := &Plan{Fields: fields}
	seen := make(map[*domain.Record]bool)
	for i, cells := range t {
		if len(cells) == 0 {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(cells[0]))
		rc := byName[name]
		if rc != nil {
			seen[rc] = true
		}
		p.Rows = append(p.Rows, Row{Line: i + 1, Name: name, Cells: cells, Record: rc})
	}
	for _, rc := range records {
		if !seen[rc] {
			p.Missing = append(p.Missing, rc)
		}
	}
	return p
}

// Unknown returns the names of rows without a record.
func (p *Plan) Unknown() []string {
	var out []string
	for _, r := range p.Rows {
		if r.Record == nil {
			out = append(out, r.Name)
		}
	}
	return out
}

// Result summarizes an execution.
type Result struct {
	Accepted int
	Rejected int
	// Changed lists records that accepted at least one cell, in row order.
	Changed []*domain.Record
}

// Execute feeds every cell to its record with SetVariableData. When a row has a cell past
// the last column, the last column receives the pair (cell, next cell) so that two-part
// values such as a yearly entry fit in one field.
func (p *Plan) Execute(logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var res Result
	columns := len(p.Fields)
	for _, row := range p.Rows {
		if row.Record == nil {
			logger.Warn("no record for row", "line", row.Line, "name", row.Name)
			continue
		}
		setSome := false
		for j := 1; j < len(row.Cells) && j <= columns; j++ {
			field := p.Fields[j-1]
			if field == nil {
				continue
			}
			var input any = row.Cells[j]
			if j == columns && j+1 < len(row.Cells) {
				input = [2]string{row.Cells[j], row.Cells[j+1]}
			}
			if row.Record.SetVariableData(field, input) {
				res.Accepted++
				setSome = true
				logger.Debug("cell set", "record", row.Record.Ref().Code(), "field", field.Name, "value", input)
			} else {
				res.Rejected++
				logger.Debug("cell rejected", "record", row.Record.Ref().Code(), "field", field.Name, "value", input)
			}
		}
		if setSome {
			res.Changed = append(res.Changed, row.Record)
		}
	}
	logger.Info("table infused", "rows", len(p.Rows), "accepted", res.Accepted, "rejected", res.Rejected)
	return res
}

// Extract writes a header and one row per record: the record name, then the text form of
// each field's value. Empty slots produce empty cells.
func Extract(w io.Writer, records []*domain.Record, fields []string, colSep string) error {
	colSep = Unescape(colSep)
	if colSep == "" {
		colSep = "\t"
	}
	header := append([]string{"name"}, fields...)
	if _, err := fmt.Fprintln(w, strings.Join(header, colSep)); err != nil {
		return err
	}
	for _, rc := range records {
		cells := make([]string, 0, len(fields)+1)
		cells = append(cells, rc.Name)
		for _, name := range fields {
			v, _ := rc.ValueByName(name)
			cells = append(cells, cellText(v))
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, colSep)); err != nil {
			return err
		}
	}
	return nil
}

func cellText(v domain.Value) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}
