/*
Package domain contains the core data model: schemas of typed fields, records holding
slot values, the coercion protocol every value implements, and the dependency
propagation engine that keeps derived fields in sync with their sources.

The package is pure. It performs no I/O and has no knowledge of storage; finding other
records by name is delegated to a Lookup bound to each record.

# Key Entities

  - Value: a field value that accepts loosely typed input through TrySet.
  - Dependent: a Value that is computed from another field's value through Feed.
  - Kind: a registered value kind (tag plus zero-argument constructor).
  - Variable: one named, typed field definition, optionally depending on another.
  - Schema: an ordered set of Variables shared by many records.
  - Record: an ordered set of Slots, optionally bound to a Schema.
*/
package domain
