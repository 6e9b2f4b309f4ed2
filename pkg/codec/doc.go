// Package codec converts schemas and records to plain documents and back.
//
// Documents carry only data (kind tags, field names, exported values) so they can be stored
// as JSON, YAML or markdown front-matter by any adapter. Decoding resolves kind tags
// through a domain.Registry and feeds stored values back through each value's TrySet.
package codec
