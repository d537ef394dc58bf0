// Package meta holds per-code classification metadata: the short title,
// the long detail text, and the includes/excludes lists used to build
// prompt context for the downstream classifier.
package meta

import (
	"encoding/json"
	"html"
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// minDigits is the minimum number of code digits for partial matching.
const minDigits = 2

// seeCodeRe matches cross-reference fragments like ", see 46.45/1" or
// "see division 52" that the published texts embed as ##-prefixed codes.
var seeCodeRe = regexp.MustCompile(`(?i)(,?\s?see\s(divisions?\s)?)?##\d+(\.\d+(/\d)?)?`)

// Meta is the metadata attached to one classification code. Code is the
// alpha form: section letter, digits, padded with 'x' to six characters
// (partial codes for higher levels keep their padding).
type Meta struct {
	Code     string   `json:"code"`
	Title    string   `json:"title"`
	Detail   string   `json:"detail,omitempty"`
	Includes []string `json:"includes,omitempty"`
	Excludes []string `json:"excludes,omitempty"`
}

// LoadFile reads a JSON object of alpha code → metadata. Each entry's
// Code field is filled from its key.
func LoadFile(path string) (map[string]Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "meta: read metadata file")
	}

	var raw map[string]Meta
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "meta: unmarshal metadata")
	}
	if len(raw) == 0 {
		return nil, eris.Errorf("meta: %s: no entries", path)
	}

	out := make(map[string]Meta, len(raw))
	for code, m := range raw {
		m.Code = code
		out[code] = m
	}
	return out, nil
}

// CleanText unescapes HTML entities and strips embedded cross-reference
// fragments from published description text.
func CleanText(text string) string {
	return seeCodeRe.ReplaceAllString(html.UnescapeString(text), "")
}

// Clean returns a copy of m with Detail, Includes and Excludes cleaned.
func (m Meta) Clean() Meta {
	out := m
	out.Detail = CleanText(m.Detail)
	if len(m.Includes) > 0 {
		out.Includes = make([]string, len(m.Includes))
		for i, s := range m.Includes {
			out.Includes[i] = CleanText(s)
		}
	}
	if len(m.Excludes) > 0 {
		out.Excludes = make([]string, len(m.Excludes))
		for i, s := range m.Excludes {
			out.Excludes[i] = CleanText(s)
		}
	}
	return out
}

// Digits returns the numeric part of the alpha code with padding removed.
func (m Meta) Digits() string {
	code := strings.ReplaceAll(m.Code, "x", "")
	if len(code) <= 1 {
		return ""
	}
	return code[1:]
}

// MatchesSubcode reports whether a 2-5 digit subcode partially matches
// this entry's code. The section letter is discarded before comparing.
func (m Meta) MatchesSubcode(subcode string) bool {
	trimmed := strings.ReplaceAll(m.Code, "x", "")
	n := len(trimmed)
	if len(subcode)+1 < n {
		n = len(subcode) + 1
	}
	if n <= minDigits {
		return false
	}
	return m.Code[1:n] == subcode[:n-1]
}

// Summary renders the entry as a single prompt-ready sentence block when
// its digit count is in subsetDigits (default: divisions and classes).
func (m Meta) Summary(subsetDigits []int) string {
	if subsetDigits == nil {
		subsetDigits = []int{4, 2}
	}

	digits := m.Digits()
	match := false
	for _, n := range subsetDigits {
		if len(digits) == n {
			match = true
			break
		}
	}
	if !match {
		return ""
	}

	var b strings.Builder
	b.WriteString("Code " + digits + ": " + m.Title + ". ")
	if m.Detail != "" {
		b.WriteString(m.Detail + ". ")
	}
	if len(m.Includes) > 0 {
		b.WriteString("Includes " + strings.Join(m.Includes, ", ") + ". ")
	}
	if len(m.Excludes) > 0 {
		b.WriteString("Excludes " + strings.Join(m.Excludes, ", ") + ". ")
	}
	return b.String()
}
