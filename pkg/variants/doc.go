/*
Package variants is the catalog of concrete field value kinds: scalars, references to
other records, weighted reference collections, images with their derived color palette,
and ordered time series.

Every kind implements domain.Value. Coercion follows one precedence: the exact native
type, then composite pair shapes, then text that needs parsing, then sequences (bulk
replace). Values that persist implement domain.Exporter and accept their exported form
back through TrySet.

NewRegistry returns a registry holding every kind in this package.
*/
package variants
