package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/datamodel"
	"github.com/aretw0/datamodel/internal/presentation/graph"
	"github.com/aretw0/datamodel/internal/presentation/tui"
	"github.com/aretw0/datamodel/pkg/codec"
	"github.com/aretw0/datamodel/pkg/domain"
	"github.com/aretw0/datamodel/pkg/grammar"
	"github.com/aretw0/datamodel/pkg/imaging"
	"github.com/aretw0/datamodel/pkg/tabular"
	"github.com/aretw0/datamodel/pkg/variants"
	"github.com/muesli/termenv"
)

// ErrInvalid is returned by Validate when issues were found.
var ErrInvalid = errors.New("workspace is not valid")

// Issue is one problem found by Validate.
type Issue struct {
	Subject string
	Message string
}

func (i Issue) String() string { return i.Subject + ": " + i.Message }

// Validate checks loaded schemas and reports references that point at no record.
func Validate(ws *datamodel.Workspace, loadErr error) []Issue {
	var issues []Issue
	for _, err := range unjoin(loadErr) {
		issues = append(issues, Issue{Subject: "load", Message: err.Error()})
	}
	for _, s := range ws.Schemas() {
		if err := s.Validate(); err != nil {
			issues = append(issues, Issue{Subject: "schema " + s.Name, Message: err.Error()})
		}
	}
	for _, rc := range ws.Records() {
		for _, slot := range rc.Slots() {
			refs, ok := slot.Value.(domain.Referencing)
			if !ok {
				continue
			}
			for _, ref := range refs.References() {
				if _, err := rc.Find(ref); err != nil {
					issues = append(issues, Issue{
						Subject: rc.Ref().Code(),
						Message: fmt.Sprintf("field %s references missing record %s", slot.Field.Name, ref.Code()),
					})
				}
			}
		}
	}
	return issues
}

func unjoin(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

// ParseRef reads a "name:model" code.
func ParseRef(code string) (domain.Ref, error) {
	ref, err := grammar.ParseCode(code)
	if err != nil {
		return domain.Ref{}, fmt.Errorf("invalid record %q (want name:model): %w", code, err)
	}
	return ref, nil
}

// InfuseOptions configure Infuse.
type InfuseOptions struct {
	Model string
	// Fields name the columns after the record name; "-" skips a column.
	Fields []string
	RowSep string
	ColSep string
	Save   bool
}

// Infuse feeds a delimited table into the records of one model.
func Infuse(ctx context.Context, ws *datamodel.Workspace, text string, opts InfuseOptions, logger *slog.Logger) (tabular.Result, *tabular.Plan, error) {
	schema, err := ws.Catalog().Schema(opts.Model)
	if err != nil {
		return tabular.Result{}, nil, err
	}
	fields := make([]*domain.Variable, len(opts.Fields))
	for i, name := range opts.Fields {
		if name == "-" || name == "" {
			continue
		}
		if fields[i] = schema.Field(name); fields[i] == nil {
			return tabular.Result{}, nil, &domain.FieldError{Field: name, Reason: "not part of " + schema.Name, Err: domain.ErrFieldNotFound}
		}
	}

	var records []*domain.Record
	for _, rc := range ws.Records() {
		if rc.Model() == opts.Model {
			records = append(records, rc)
		}
	}

	rowSep, colSep := tabular.Unescape(opts.RowSep), tabular.Unescape(opts.ColSep)
	if rowSep == "" {
		rowSep = tabular.Unescape(tabular.DefaultRowSep)
	}
	if colSep == "" {
		colSep = tabular.Unescape(tabular.DefaultColSep)
	}
	plan := tabular.NewPlan(records, fields, tabular.Parse(text, rowSep, colSep))
	res := plan.Execute(logger)

	if opts.Save {
		for _, rc := range res.Changed {
			if err := ws.Save(ctx, rc.Ref()); err != nil {
				return res, plan, fmt.Errorf("save %s: %w", rc.Ref().Code(), err)
			}
		}
	}
	return res, plan, nil
}

// Extract writes the named fields of every record of model as a delimited table.
func Extract(w io.Writer, ws *datamodel.Workspace, model string, fields []string, colSep string) error {
	var records []*domain.Record
	for _, rc := range ws.Records() {
		if model == "" || rc.Model() == model {
			records = append(records, rc)
		}
	}
	return tabular.Extract(w, records, fields, colSep)
}

// PaletteOptions configure Palette.
type PaletteOptions struct {
	Ref domain.Ref
	// Field is the palette field; empty picks the first one of the schema.
	Field string
	// Image, when set, is decoded and stored in the palette's source field first.
	Image string
	Save  bool
}

// Palette prints the palette of a record as color swatches.
func Palette(ctx context.Context, w io.Writer, p termenv.Profile, ws *datamodel.Workspace, opts PaletteOptions) error {
	rc, err := ws.Record(opts.Ref)
	if err != nil {
		return err
	}
	field := paletteField(rc, opts.Field)
	if field == nil {
		return &domain.FieldError{Field: opts.Field, Reason: "no palette field on " + opts.Ref.Code(), Err: domain.ErrFieldNotFound}
	}

	if opts.Image != "" {
		f, err := os.Open(opts.Image)
		if err != nil {
			return err
		}
		img, err := imaging.Load(f)
		f.Close()
		if err != nil {
			return err
		}
		if field.DependsOn != nil {
			if _, err := ws.Set(ctx, opts.Ref, field.DependsOn.Name, img); err != nil {
				return err
			}
		}
		// The palette keeps its colors until cleared, so the new image is offered to it directly.
		ok, err := ws.Set(ctx, opts.Ref, field.Name, img)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("palette of %s rejected %s", opts.Ref.Code(), opts.Image)
		}
	} else if _, err := ws.Propagate(ctx, opts.Ref); err != nil {
		return err
	}

	pal, ok := rc.Value(field).(*variants.Palette)
	if !ok {
		fmt.Fprintf(w, "%s has no palette yet\n", opts.Ref.Code())
		return nil
	}
	fmt.Fprintf(w, "%s.%s: %s\n", opts.Ref.Code(), field.Name, pal)
	tui.Swatches(w, p, pal.Colors())
	if opts.Save {
		return ws.Save(ctx, opts.Ref)
	}
	return nil
}

func paletteField(rc *domain.Record, name string) *domain.Variable {
	if name != "" {
		return rc.Field(name)
	}
	for _, s := range rc.Slots() {
		if s.Field.Kind != nil && s.Field.Kind.Name == variants.KindPalette {
			return s.Field
		}
	}
	if schema := rc.Schema(); schema != nil {
		for _, f := range schema.Fields() {
			if f.Kind != nil && f.Kind.Name == variants.KindPalette {
				return f
			}
		}
	}
	return nil
}

// Inspect formats.
const (
	FormatMarkdown = "markdown"
	FormatMermaid  = "mermaid"
	FormatJSON     = "json"
)

// Inspect describes schemas and records. With refs it only shows those records.
func Inspect(w io.Writer, ws *datamodel.Workspace, format string, render tui.Renderer, refs ...domain.Ref) error {
	records := ws.Records()
	if len(refs) > 0 {
		records = records[:0:0]
		for _, ref := range refs {
			rc, err := ws.Record(ref)
			if err != nil {
				return err
			}
			records = append(records, rc)
		}
	}

	switch format {
	case FormatMermaid:
		_, err := io.WriteString(w, graph.GenerateMermaid(ws.Schemas(), records, nil))
		return err
	case FormatJSON:
		out := struct {
			Schemas []codec.SchemaDocument `json:"schemas"`
			Records []codec.RecordDocument `json:"records"`
		}{Schemas: []codec.SchemaDocument{}, Records: []codec.RecordDocument{}}
		for _, s := range ws.Schemas() {
			out.Schemas = append(out.Schemas, codec.EncodeSchema(s))
		}
		for _, rc := range records {
			out.Records = append(out.Records, codec.EncodeRecord(rc))
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case FormatMarkdown, "":
		var sb strings.Builder
		if len(refs) == 0 {
			sb.WriteString("# Schemas\n\n")
			for _, s := range ws.Schemas() {
				sb.WriteString(tui.SchemaMarkdown(s))
				sb.WriteString("\n")
			}
			sb.WriteString("# Records\n\n")
		}
		for _, rc := range records {
			sb.WriteString(tui.RecordMarkdown(rc))
			sb.WriteString("\n")
		}
		if render == nil {
			render = tui.Plain
		}
		out, err := render(sb.String())
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	}
	return fmt.Errorf("unknown format %q (want markdown, mermaid or json)", format)
}
