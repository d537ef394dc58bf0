// Package sic implements the classification lookup engine: an immutable
// index built once from a reference table and queried by description,
// code, or 2-digit division.
package sic

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
)

const (
	// codeLength is the width of a full SIC code.
	codeLength = 5
	// divisionLength is the width of a division prefix.
	divisionLength = 2
)

// ErrInvalidCode reports a code argument too short or non-numeric in the
// division prefix position.
var ErrInvalidCode = eris.New("sic: invalid classification code")

// NormalizeCode trims a code and zero-pads 4-digit values to 5 digits.
// Codes from the 0x divisions lose their leading zero in some source
// tables.
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if len(code) == codeLength-1 {
		return "0" + code
	}
	return code
}

// Division derives the 2-digit division prefix from a full or partial
// code. Returns ErrInvalidCode when the input is shorter than 2
// characters or the prefix contains non-digits.
func Division(code string) (string, error) {
	code = strings.TrimSpace(code)
	if len(code) < divisionLength {
		return "", eris.Wrapf(ErrInvalidCode, "%q is shorter than %d characters", code, divisionLength)
	}
	prefix := code[:divisionLength]
	for _, c := range prefix {
		if c < '0' || c > '9' {
			return "", eris.Wrapf(ErrInvalidCode, "%q has a non-numeric division prefix", code)
		}
	}
	return prefix, nil
}

// NormalizeDescription folds case and trims whitespace so that lookups
// are exact matches over a canonical form. Folding (rather than
// lowercasing) keeps matching stable for non-ASCII descriptions.
func NormalizeDescription(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
