package grammar

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/aretw0/datamodel/pkg/domain"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrMalformedCode is returned for text that is not a "name:model" code.
	ErrMalformedCode = errors.New("malformed record code")

	// ErrMalformedCommand is returned for a FindOrCreate command with missing fields.
	ErrMalformedCommand = errors.New("malformed command")

	// ErrMalformedWeight is returned for weighted codes without a valid percentage.
	ErrMalformedWeight = errors.New("malformed weight")
)

const (
	codeSep    = ":"
	listSep    = ","
	percentSep = "%"
)

// ParseCode parses "name:model". Exactly two fields are accepted and the name must not
// be empty.
func ParseCode(s string) (domain.Ref, error) {
	parts := strings.Split(strings.TrimSpace(s), codeSep)
	if len(parts) != 2 {
		return domain.Ref{}, fmt.Errorf("%w: %q", ErrMalformedCode, s)
	}
	ref := domain.Ref{Name: strings.TrimSpace(parts[0]), Model: strings.TrimSpace(parts[1])}
	if ref.Name == "" {
		return domain.Ref{}, fmt.Errorf("%w: %q has no name", ErrMalformedCode, s)
	}
	return ref, nil
}

// FindOrCreate is the command "FindOrCreate:<model>:<name1>,<name2>,...".
type FindOrCreate struct {
	Model string
	Names []string
}

var findOrCreateVerbs = []string{"FindOrCreate", "FOC"}

// ParseFindOrCreate recognizes the FindOrCreate command (also spelled "FOC").
// ok is false when text is not the command at all; err is set when it is the command but
// malformed. Names are sanitized and empty entries dropped.
func ParseFindOrCreate(s string) (cmd FindOrCreate, ok bool, err error) {
	s = strings.TrimSpace(s)
	verb, rest, found := strings.Cut(s, codeSep)
	if !found || !isFindOrCreateVerb(verb) {
		return FindOrCreate{}, false, nil
	}

	model, list, found := strings.Cut(rest, codeSep)
	model = strings.TrimSpace(model)
	if !found || model == "" {
		return FindOrCreate{}, true, fmt.Errorf("%w: %q needs a model and a name list", ErrMalformedCommand, s)
	}

	cmd.Model = model
	for _, n := range strings.Split(list, listSep) {
		if n = SanitizeName(n); n != "" {
			cmd.Names = append(cmd.Names, n)
		}
	}
	if len(cmd.Names) == 0 {
		return FindOrCreate{}, true, fmt.Errorf("%w: %q names no records", ErrMalformedCommand, s)
	}
	return cmd, true, nil
}

func isFindOrCreateVerb(v string) bool {
	for _, verb := range findOrCreateVerbs {
		if strings.EqualFold(strings.TrimSpace(v), verb) {
			return true
		}
	}
	return false
}

// WeightedCode is a parsed "<pct>% <code>".
type WeightedCode struct {
	Weight float64
	Ref    domain.Ref
}

// ParseWeighted parses "<percent>% <code>" or "<percent>%<code>". The percentage is
// divided by 100 and must land in [0,1].
func ParseWeighted(s string) (WeightedCode, error) {
	pct, code, found := strings.Cut(strings.TrimSpace(s), percentSep)
	if !found {
		return WeightedCode{}, fmt.Errorf("%w: %q has no percentage", ErrMalformedWeight, s)
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
	if err != nil || math.IsNaN(p) || p < 0 || p > 100 {
		return WeightedCode{}, fmt.Errorf("%w: %q", ErrMalformedWeight, pct)
	}
	ref, err := ParseCode(code)
	if err != nil {
		return WeightedCode{}, err
	}
	return WeightedCode{Weight: p / 100, Ref: ref}, nil
}

// SanitizeName turns free text into a name usable as a record file name: NFC normalized,
// trimmed, with path separators, reserved and control characters removed.
func SanitizeName(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(`<>:"/\|?*`, r) {
			return -1
		}
		return r
	}, s)
	return strings.Trim(s, " .")
}
