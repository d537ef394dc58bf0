package model

// SICCandidate is one candidate code in a classifier response. The
// Descriptive field is filled in by rephrase enrichment; a code with no
// reviewed description keeps an empty field rather than being dropped.
type SICCandidate struct {
	SICCode     string  `json:"sic_code"`
	Descriptive string  `json:"sic_descriptive,omitempty"`
	Likelihood  float64 `json:"likelihood,omitempty"`
}

// ClassificationPayload is the contract shared with the downstream
// LLM classifier: a top-level code plus an ordered candidate list.
// Enrichment adds description fields without changing codes or order.
type ClassificationPayload struct {
	SICCode        string         `json:"sic_code"`
	SICDescription string         `json:"sic_description,omitempty"`
	SICCandidates  []SICCandidate `json:"sic_candidates,omitempty"`
}

// Clone returns a deep copy of the payload so enrichment never mutates
// its input.
func (p ClassificationPayload) Clone() ClassificationPayload {
	out := p
	if p.SICCandidates != nil {
		out.SICCandidates = make([]SICCandidate, len(p.SICCandidates))
		copy(out.SICCandidates, p.SICCandidates)
	}
	return out
}

// DivisionGroup is a candidate retained by division-level deduplication,
// carrying every reference record that shares its division in load order.
type DivisionGroup struct {
	SICCode  string   `json:"sic_code"`
	Division string   `json:"division"`
	Records  []Record `json:"records"`
}

// Issue reports a single entry that a batch operation skipped or could
// not enrich. Index is the entry's position in the input; -1 marks the
// payload's top-level code.
type Issue struct {
	Index   int    `json:"index"`
	SICCode string `json:"sic_code"`
	Reason  string `json:"reason"`
}
