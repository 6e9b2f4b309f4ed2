// Package grammar parses the small textual encodings accepted by reference values:
// record codes ("name:model"), the FindOrCreate command, and weighted codes ("25% name:model").
//
// Parsers only validate and return typed values. Acting on them is up to the caller.
package grammar
