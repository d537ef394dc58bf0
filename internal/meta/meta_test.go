package meta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "growing of rice", "growing of rice"},
		{"html entities unescaped", "wholesale &amp; retail", "wholesale & retail"},
		{"see reference stripped", "retail sale of bread, see ##47.24", "retail sale of bread"},
		{"see division stripped", "repair of furniture, see division ##95", "repair of furniture"},
		{"subclass reference stripped", "manufacture of cider, see ##11.03/0", "manufacture of cider"},
		{"bare code stripped", "covered by ##10.71", "covered by "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestMetaClean(t *testing.T) {
	m := Meta{
		Code:     "C1071x",
		Title:    "Manufacture of bread",
		Detail:   "bread &amp; fresh pastry",
		Includes: []string{"manufacture of cakes, see ##10.71"},
		Excludes: []string{"rusks, see ##10.72"},
	}

	cleaned := m.Clean()
	assert.Equal(t, "bread & fresh pastry", cleaned.Detail)
	assert.Equal(t, []string{"manufacture of cakes"}, cleaned.Includes)
	assert.Equal(t, []string{"rusks"}, cleaned.Excludes)

	// Original is untouched.
	assert.Equal(t, "bread &amp; fresh pastry", m.Detail)
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "10", Meta{Code: "C10xxx"}.Digits())
	assert.Equal(t, "1071", Meta{Code: "C1071x"}.Digits())
	assert.Equal(t, "10710", Meta{Code: "C10710"}.Digits())
	assert.Equal(t, "", Meta{Code: "C"}.Digits())
	assert.Equal(t, "", Meta{Code: ""}.Digits())
}

func TestMatchesSubcode(t *testing.T) {
	division := Meta{Code: "C10xxx"}
	class := Meta{Code: "C1071x"}

	assert.True(t, division.MatchesSubcode("10"))
	assert.True(t, class.MatchesSubcode("10"))
	assert.True(t, class.MatchesSubcode("1071"))
	assert.True(t, division.MatchesSubcode("1071"))

	assert.False(t, division.MatchesSubcode("11"))
	assert.False(t, class.MatchesSubcode("1072"))
	// Single digit is below the partial match floor.
	assert.False(t, division.MatchesSubcode("1"))
}

func TestSummary(t *testing.T) {
	m := Meta{
		Code:     "C1071x",
		Title:    "Manufacture of bread",
		Detail:   "fresh pastry goods and cakes",
		Includes: []string{"bread", "cakes"},
		Excludes: []string{"rusks"},
	}

	s := m.Summary(nil)
	assert.Equal(t, "Code 1071: Manufacture of bread. fresh pastry goods and cakes. Includes bread, cakes. Excludes rusks. ", s)

	// Default subset is divisions and classes; a section is skipped.
	assert.Empty(t, Meta{Code: "Cxxxxx", Title: "Manufacturing"}.Summary(nil))

	// Explicit subset overrides the default.
	assert.Empty(t, m.Summary([]int{2}))
	assert.NotEmpty(t, Meta{Code: "C10xxx", Title: "Food"}.Summary([]int{2}))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	content := `{
		"C10xxx": {"title": "Manufacture of food products"},
		"C1071x": {"title": "Manufacture of bread", "includes": ["bread", "cakes"]}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	byCode, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, byCode, 2)

	m, ok := byCode["C1071x"]
	require.True(t, ok)
	assert.Equal(t, "C1071x", m.Code)
	assert.Equal(t, "Manufacture of bread", m.Title)
	assert.Equal(t, []string{"bread", "cakes"}, m.Includes)
}

func TestLoadFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no entries")
}

func TestLoadFile_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
}
