package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statsight/sic-cli/internal/meta"
)

func testStructure() []StructureRow {
	return []StructureRow{
		{Description: "Agriculture, forestry and fishing", Section: "A", Code: "A", Level: "SECTION"},
		{Description: "Crop and animal production", Section: "A", Code: "01", Level: "Division"},
		{Description: "Growing of non-perennial crops", Section: "A", Code: "011", Level: "Group"},
		{Description: "Growing of cereals", Section: "A", Code: "01110", Level: "Class"},
		{Description: "Animal production", Section: "A", Code: "014", Level: "Group"},
		{Description: "Raising of swine/pigs", Section: "A", Code: "0146", Level: "Class"},
		{Description: "Breeding of pigs", Section: "A", Code: "01461", Level: "Sub Class"},
		{Description: "Production of pigs", Section: "A", Code: "01462", Level: "Sub Class"},
	}
}

func testActivities() []ActivityRow {
	return []ActivityRow{
		{Code: "01110", Activity: "Barley growing"},
		{Code: "01110", Activity: "Cereal growing"},
		{Code: "01461", Activity: "Pig breeding"},
	}
}

func TestLoad(t *testing.T) {
	h, err := Load(testStructure(), testActivities(), nil)
	require.NoError(t, err)
	assert.Equal(t, 8, h.Len())

	section, ok := h.Get("A")
	require.True(t, ok)
	assert.Nil(t, section.Parent)
	require.Len(t, section.Children, 1)
	assert.Equal(t, "01", section.Children[0].Code.String())

	class, ok := h.Get("01.11")
	require.True(t, ok)
	assert.True(t, class.IsLeaf())
	assert.Equal(t, "Growing of cereals", class.Description)
	assert.Equal(t, []string{"Barley growing", "Cereal growing"}, class.Activities)
	require.NotNil(t, class.Parent)
	assert.Equal(t, "01.1", class.Parent.Code.String())

	// A class with subclasses is not a leaf and carries no activities.
	parent, ok := h.Get("01.46")
	require.True(t, ok)
	assert.False(t, parent.IsLeaf())
	assert.Len(t, parent.Children, 2)
	assert.Empty(t, parent.Activities)
}

func TestLoad_Empty(t *testing.T) {
	_, err := Load(nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no structure rows")
}

func TestLoad_MissingParent(t *testing.T) {
	rows := []StructureRow{
		{Description: "Agriculture", Section: "A", Code: "A", Level: "Section"},
		// Group 011 without its division 01.
		{Description: "Growing of non-perennial crops", Section: "A", Code: "011", Level: "Group"},
	}
	_, err := Load(rows, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing parent")
}

func TestLoad_OverlongCode(t *testing.T) {
	rows := []StructureRow{
		{Description: "Agriculture", Section: "A", Code: "A", Level: "Section"},
		{Description: "Breeding of pigs", Section: "A", Code: "014611", Level: "Sub Class"},
	}
	_, err := Load(rows, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `structure row "014611"`)
}

func TestLoad_UnknownActivityCode(t *testing.T) {
	_, err := Load(testStructure(), []ActivityRow{{Code: "99999", Activity: "Time travel"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown code")
}

func TestLoad_MetaAttached(t *testing.T) {
	metaByCode := map[string]meta.Meta{
		"A0111x": {Code: "A0111x", Title: "Growing of cereals", Detail: "except rice, see ##01.12"},
	}

	h, err := Load(testStructure(), nil, metaByCode)
	require.NoError(t, err)

	node, ok := h.Get("A0111x")
	require.True(t, ok)
	assert.Equal(t, "Growing of cereals", node.Meta.Title)
	// Metadata text is cleaned on attach.
	assert.Equal(t, "except rice", node.Meta.Detail)
}

func TestGet_KeyForms(t *testing.T) {
	h, err := Load(testStructure(), nil, nil)
	require.NoError(t, err)

	// Every key form resolves to the same leaf class node.
	want, ok := h.Get("A0111x")
	require.True(t, ok)

	for _, key := range []string{"01.11", "A0111x", "A0111", "0111", "01110"} {
		node, ok := h.Get(key)
		require.True(t, ok, "key %q", key)
		assert.Same(t, want, node, "key %q", key)
	}

	sub, ok := h.Get("01.46/1")
	require.True(t, ok)
	assert.Equal(t, "Breeding of pigs", sub.Description)

	_, ok = h.Get("nope")
	assert.False(t, ok)
}

func TestNumericPadded(t *testing.T) {
	h, err := Load(testStructure(), nil, nil)
	require.NoError(t, err)

	leafClass, _ := h.Get("01.11")
	assert.Equal(t, "01110", leafClass.NumericPadded())

	parentClass, _ := h.Get("01.46")
	assert.Equal(t, "0146", parentClass.NumericPadded())

	sub, _ := h.Get("01.46/1")
	assert.Equal(t, "01461", sub.NumericPadded())
}

func TestLeafText(t *testing.T) {
	h, err := Load(testStructure(), testActivities(), nil)
	require.NoError(t, err)

	leaves := h.LeafDescriptions()
	require.Len(t, leaves, 3)

	activities := h.LeafActivities()
	require.Len(t, activities, 3)

	text := h.LeafText()
	assert.Len(t, text, 6)

	// Sorted by code; the leaf description comes with its activities.
	assert.Equal(t, "01.11", text[0].Code)
	for i := 1; i < len(text); i++ {
		assert.LessOrEqual(t, text[i-1].Code, text[i].Code)
	}
}

func TestLeafText_Deduplicates(t *testing.T) {
	activities := []ActivityRow{
		// Duplicate of the official description text.
		{Code: "01110", Activity: "Growing of cereals"},
	}
	h, err := Load(testStructure(), activities, nil)
	require.NoError(t, err)

	text := h.LeafText()
	count := 0
	for _, e := range text {
		if e.Code == "01.11" && e.Text == "Growing of cereals" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
