// Package model defines the core domain types shared across the resolver.
package model

// Record is a single row of the SIC lookup reference table. Codes are
// 5-digit numeric strings; 4-digit source values are zero-padded on load.
type Record struct {
	Description string `json:"description"`
	Code        string `json:"code"`
	Bridge      string `json:"bridge"`
}

// Division returns the 2-digit division prefix of the record's code.
func (r Record) Division() string {
	if len(r.Code) < 2 {
		return ""
	}
	return r.Code[:2]
}

// RephraseRecord is a single row of the rephrased-description table,
// keyed by SICCode after load.
type RephraseRecord struct {
	InputCode            string `json:"input_code"`
	SICCode              string `json:"sic_code"`
	InputDescription     string `json:"input_description"`
	RephrasedDescription string `json:"llm_rephrased_description"`
	ReviewedDescription  string `json:"reviewed_description"`
}
