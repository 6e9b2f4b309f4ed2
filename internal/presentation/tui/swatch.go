package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/datamodel/pkg/imaging"
	"github.com/aretw0/datamodel/pkg/weighted"
	"github.com/muesli/termenv"
)

// SwatchWidth is the number of cells the full palette bar spans.
const SwatchWidth = 40

// Swatches writes one colored line per palette entry followed by a bar whose segments
// are proportional to the color weights. Ascii profiles print hex codes only.
func Swatches(w io.Writer, p termenv.Profile, colors []weighted.Weighted[imaging.Color]) {
	for _, c := range colors {
		block := termenv.String("    ").Background(p.Color(c.Value.Hex()))
		fmt.Fprintf(w, "%s %s %5.1f%%\n", block, c.Value.Hex(), c.Weight*100)
	}
	if len(colors) == 0 || p == termenv.Ascii {
		return
	}

	var bar strings.Builder
	for _, c := range colors {
		n := int(c.Weight*SwatchWidth + 0.5)
		if n == 0 {
			continue
		}
		bar.WriteString(termenv.String(strings.Repeat(" ", n)).Background(p.Color(c.Value.Hex())).String())
	}
	fmt.Fprintln(w, bar.String())
}
