/*
Package imaging decodes packed pixel buffers and extracts a weighted color palette.

A pixel's raw bytes are packed little-endian into a code, codes are counted over exactly
width*height pixels, and each distinct code is decoded back into normalized RGBA using the
bit layout of its Format. Opaque colors (alpha above 0.9) that cover more than the cut
fraction of the image form the palette.

The format table is the wire contract: the same buffer and format always produce the same
palette, in the same order.
*/
package imaging
