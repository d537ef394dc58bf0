// Package hierarchy models the full SIC 2007 hierarchy: sections down to
// subclasses, with parent/child navigation, per-code metadata, and the
// activity index used to enumerate leaf-level text.
package hierarchy

import (
	"strings"

	"github.com/rotisserie/eris"
)

const alphaCodeLength = 6

// levelNames maps digit counts to hierarchy level names.
var levelNames = map[int]string{
	1: "section",
	2: "division",
	3: "group",
	4: "class",
	5: "subclass",
}

// Code is a classification code in alpha form: the section letter,
// followed by the numeric code, padded with 'x' to six characters
// (e.g. "A0111x"). The alpha form makes prefix relationships between
// levels directly comparable.
type Code struct {
	Alpha  string
	Digits int
	Level  string

	formatted string
	trimmed   string
}

// ParseAlpha validates and parses an alpha code.
func ParseAlpha(alpha string) (Code, error) {
	if len(alpha) != alphaCodeLength {
		return Code{}, eris.Errorf("hierarchy: alpha code %q must be padded to %d characters", alpha, alphaCodeLength)
	}
	first := alpha[0]
	if first < 'A' || first > 'Z' {
		return Code{}, eris.Errorf("hierarchy: alpha code %q must start with an upper case letter", alpha)
	}

	trimmed := strings.ReplaceAll(alpha, "x", "")
	digits := len(trimmed) - 1
	if len(trimmed) == 1 {
		digits = 1
	} else if digits == 1 {
		return Code{}, eris.Errorf("hierarchy: invalid alpha code %q", alpha)
	}

	formatted, err := formatCode(trimmed)
	if err != nil {
		return Code{}, err
	}

	return Code{
		Alpha:     alpha,
		Digits:    digits,
		Level:     levelNames[digits],
		formatted: formatted,
		trimmed:   trimmed,
	}, nil
}

// FromSectionCodeLevel builds a Code from the three columns of the
// published structure table, validating that they agree.
func FromSectionCodeLevel(section, code, level string) (Code, error) {
	level = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(level)), " ", "")

	if len(code) < 5 {
		if levelNames[len(code)] != level {
			return Code{}, eris.Errorf("hierarchy: code/level mismatch: %q -> %q", code, level)
		}
	} else if len(code) == 5 {
		if level != "class" && level != "subclass" {
			return Code{}, eris.Errorf("hierarchy: code/level mismatch: %q -> %q", code, level)
		}
	}

	if level == "section" && section != code {
		return Code{}, eris.Errorf("hierarchy: section/code mismatch: %q - %q", section, code)
	}

	var alpha string
	switch level {
	case "section":
		alpha = section
	case "class":
		// A 4-digit class published as 5 digits carries a trailing zero.
		if len(code) == 5 {
			if code[4] != '0' {
				return Code{}, eris.Errorf("hierarchy: 4-digit class as 5 digits must end in zero: %q", code)
			}
			code = code[:4]
		}
		alpha = section + code
	default:
		alpha = section + code
	}

	if len(alpha) > alphaCodeLength {
		return Code{}, eris.Errorf("hierarchy: code %q too long for level %q", code, level)
	}
	alpha += strings.Repeat("x", alphaCodeLength-len(alpha))
	return ParseAlpha(alpha)
}

// String returns the publication form of the code, e.g. "01.11/1".
func (c Code) String() string { return c.formatted }

// Section returns the section letter.
func (c Code) Section() string { return c.Alpha[:1] }

// Trimmed returns the alpha code with padding removed.
func (c Code) Trimmed() string { return c.trimmed }

// Less orders codes by their unpadded alpha form.
func (c Code) Less(other Code) bool { return c.trimmed < other.trimmed }

// formatCode renders a trimmed alpha code in publication form.
func formatCode(trimmed string) (string, error) {
	switch len(trimmed) {
	case 1:
		return trimmed, nil
	case 3:
		return trimmed[1:3], nil
	case 4, 5:
		return trimmed[1:3] + "." + trimmed[3:], nil
	case 6:
		return trimmed[1:3] + "." + trimmed[3:5] + "/" + trimmed[5:], nil
	}
	return "", eris.Errorf("hierarchy: unable to format code %q", trimmed)
}
