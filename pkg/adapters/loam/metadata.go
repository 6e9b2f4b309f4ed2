package loam

import (
	"github.com/aretw0/datamodel/pkg/codec"
)

// Document types stored in the front-matter "type" key.
const (
	TypeSchema = "schema"
	TypeRecord = "record"
)

// Metadata is the front-matter of a datamodel document. Schemas fill Fields, records fill
// Model, Path and Slots.
type Metadata struct {
	Type   string                `json:"type" yaml:"type" mapstructure:"type"`
	Name   string                `json:"name" yaml:"name" mapstructure:"name"`
	Model  string                `json:"model,omitempty" yaml:"model,omitempty" mapstructure:"model"`
	Path   string                `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`
	Fields []codec.FieldDocument `json:"fields,omitempty" yaml:"fields,omitempty" mapstructure:"fields"`
	Slots  []codec.SlotDocument  `json:"slots,omitempty" yaml:"slots,omitempty" mapstructure:"slots"`
}

func schemaMetadata(doc codec.SchemaDocument) Metadata {
	return Metadata{Type: TypeSchema, Name: doc.Name, Fields: doc.Fields}
}

func (m Metadata) schema() codec.SchemaDocument {
	return codec.SchemaDocument{Name: m.Name, Fields: m.Fields}
}

func recordMetadata(doc codec.RecordDocument) Metadata {
	return Metadata{Type: TypeRecord, Name: doc.Name, Model: doc.Model, Path: doc.Path, Slots: doc.Slots}
}

func (m Metadata) record() codec.RecordDocument {
	return codec.RecordDocument{Name: m.Name, Model: m.Model, Path: m.Path, Slots: m.Slots}
}
