/*
Package datamodel is a typed record store with derived fields.

Schemas declare named fields of registered kinds (numbers, strings, series, references,
images, palettes). Records hold one slot per field. Setting a slot coerces loosely typed
input (strings, numbers, maps from YAML or JSON) into the field's value or rejects it
without touching the record. Fields may depend on another field; propagation feeds the
source value to the derived one, so a palette field is extracted from an image field.

# Usage

	ws, err := datamodel.Open("./data", datamodel.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}
	if err := ws.Load(ctx); err != nil {
		log.Print(err)
	}

	ref := domain.Ref{Name: "peru", Model: "country"}
	if _, err := ws.Set(ctx, ref, "flag", img); err != nil {
		log.Fatal(err)
	}
	if _, err := ws.Propagate(ctx, ref); err != nil {
		log.Fatal(err)
	}
	_ = ws.Save(ctx, ref)

Storage is pluggable through pkg/ports: a loam repository (the default for Open), JSON
files, Redis or memory. See cmd/datamodel for the command line front end.
*/
package datamodel
