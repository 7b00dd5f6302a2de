package dither

import (
	"fmt"
	"strings"
)

// Type selects the probability distribution of the dither noise.
type Type int

const (
	// TypeNone rounds without noise.
	TypeNone Type = iota
	// TypeRectangular adds uniform noise of +-1/2 LSB.
	TypeRectangular
	// TypeTriangular adds triangular noise of +-1 LSB (TPDF).
	TypeTriangular
)

var typeNames = [...]string{"none", "rectangular", "triangular"}

// Types lists the known dither types.
var Types = []Type{TypeNone, TypeRectangular, TypeTriangular}

// String returns the lower-case type name.
func (t Type) String() string {
	if t.Valid() {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Valid reports whether t is a known dither type.
func (t Type) Valid() bool {
	return t >= 0 && int(t) < len(typeNames)
}

// ParseType parses a type name, case-insensitively. "tpdf" is accepted
// for triangular.
func ParseType(s string) (Type, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "tpdf" {
		return TypeTriangular, nil
	}

	for _, t := range Types {
		if typeNames[t] == name {
			return t, nil
		}
	}

	return TypeNone, fmt.Errorf("unknown dither type %q", s)
}
