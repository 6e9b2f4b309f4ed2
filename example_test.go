package datamodel_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/datamodel"
	"github.com/aretw0/datamodel/pkg/codec"
	"github.com/aretw0/datamodel/pkg/domain"
	"github.com/aretw0/datamodel/pkg/imaging"
	"github.com/aretw0/datamodel/pkg/variants"
)

// ExampleNew_memory builds a workspace in memory, stores a flag and derives its palette.
func ExampleNew_memory() {
	ws := datamodel.New()
	if _, err := ws.AddSchema(codec.SchemaDocument{
		Name: "country",
		Fields: []codec.FieldDocument{
			{Name: "flag", Kind: variants.KindImage},
			{Name: "colors", Kind: variants.KindPalette, DependsOn: "flag"},
		},
	}); err != nil {
		log.Fatal(err)
	}
	if _, err := ws.AddRecord(codec.RecordDocument{Name: "peru", Model: "country"}); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	ref := domain.Ref{Name: "peru", Model: "country"}
	flag := &imaging.Image{Width: 1, Height: 1, Format: imaging.RGB24, Pix: []byte{255, 0, 0}}

	accepted, err := ws.Set(ctx, ref, "flag", flag)
	if err != nil {
		log.Fatal(err)
	}
	changed, err := ws.Propagate(ctx, ref)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("accepted:", accepted)
	fmt.Println("changed:", changed)

	rc, _ := ws.Record(ref)
	v, _ := rc.ValueByName("colors")
	for _, c := range v.(*variants.Palette).Colors() {
		fmt.Printf("%s %.0f%%\n", c.Value.Hex(), c.Weight*100)
	}
	// Output:
	// accepted: true
	// changed: true
	// #ff0000 100%
}
