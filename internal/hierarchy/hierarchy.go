package hierarchy

import "sort"

// CodeText pairs a code (publication form) with one of its short texts.
type CodeText struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

// Hierarchy provides lookup and iteration over the loaded forest.
// Immutable after Load; safe for concurrent readers.
type Hierarchy struct {
	nodes []*Node
	byKey map[string]*Node
}

// Get resolves a node by any supported key form: the publication form
// ("01.11"), the alpha code ("A0111x"), the unpadded alpha ("A0111"),
// the bare digits ("0111"), or the zero-padded 5-digit form of a leaf
// class ("01110").
func (h *Hierarchy) Get(key string) (*Node, bool) {
	node, ok := h.byKey[key]
	return node, ok
}

// Len returns the number of nodes across all sections.
func (h *Hierarchy) Len() int { return len(h.nodes) }

// Nodes returns all nodes ordered by code.
func (h *Hierarchy) Nodes() []*Node { return h.nodes }

// LeafDescriptions returns the official description of every leaf node.
func (h *Hierarchy) LeafDescriptions() []CodeText {
	var out []CodeText
	for _, node := range h.nodes {
		if node.IsLeaf() {
			out = append(out, CodeText{Code: node.Code.String(), Text: node.Description})
		}
	}
	return out
}

// LeafActivities returns every activity-index entry of every leaf node.
func (h *Hierarchy) LeafActivities() []CodeText {
	var out []CodeText
	for _, node := range h.nodes {
		if !node.IsLeaf() {
			continue
		}
		for _, activity := range node.Activities {
			out = append(out, CodeText{Code: node.Code.String(), Text: activity})
		}
	}
	return out
}

// LeafText returns the deduplicated union of leaf descriptions and leaf
// activities, sorted by code. This is the corpus handed to the semantic
// matcher.
func (h *Hierarchy) LeafText() []CodeText {
	entries := append(h.LeafDescriptions(), h.LeafActivities()...)

	seen := make(map[CodeText]bool, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
