// Package rephrase resolves SIC codes to reviewed descriptions and
// enriches classifier payloads with them.
package rephrase

import (
	"github.com/rotisserie/eris"

	"github.com/statsight/sic-cli/internal/model"
	"github.com/statsight/sic-cli/internal/sic"
	"github.com/statsight/sic-cli/internal/tables"
)

// DuplicatePolicy selects which row wins when the rephrase table holds
// several rows for one sic_code. Source tables are not guaranteed to be
// sorted, so the policy is explicit rather than incidental.
type DuplicatePolicy int

const (
	// KeepLast keeps the last row per code, matching the overwrite
	// behavior of loading the table into a dictionary.
	KeepLast DuplicatePolicy = iota
	// KeepFirst keeps the first row per code.
	KeepFirst
)

// Resolver maps SIC codes to their reviewed descriptions. Immutable
// after construction; safe for concurrent readers.
type Resolver struct {
	byCode map[string]model.RephraseRecord
}

// New builds a Resolver from rephrase records, applying policy on
// duplicate codes.
func New(records []model.RephraseRecord, policy DuplicatePolicy) (*Resolver, error) {
	if len(records) == 0 {
		return nil, eris.New("rephrase: no records")
	}

	byCode := make(map[string]model.RephraseRecord, len(records))
	for _, rec := range records {
		rec.SICCode = sic.NormalizeCode(rec.SICCode)
		if _, ok := byCode[rec.SICCode]; ok && policy == KeepFirst {
			continue
		}
		byCode[rec.SICCode] = rec
	}

	return &Resolver{byCode: byCode}, nil
}

// Load reads the rephrase table at path and builds a Resolver.
func Load(path string, policy DuplicatePolicy) (*Resolver, error) {
	records, err := tables.ReadRephraseRecords(path)
	if err != nil {
		return nil, eris.Wrap(err, "rephrase: load")
	}
	return New(records, policy)
}

// Len returns the number of distinct codes loaded.
func (r *Resolver) Len() int { return len(r.byCode) }

// Lookup returns the reviewed description for a code. An absent code is
// a normal miss, never an error.
func (r *Resolver) Lookup(code string) (string, bool) {
	rec, ok := r.byCode[sic.NormalizeCode(code)]
	if !ok {
		return "", false
	}
	return rec.ReviewedDescription, true
}

// Record returns the full rephrase record for a code.
func (r *Resolver) Record(code string) (model.RephraseRecord, bool) {
	rec, ok := r.byCode[sic.NormalizeCode(code)]
	return rec, ok
}

// Process enriches a classifier payload with reviewed descriptions. The
// input is never mutated: the returned payload is a copy with the
// top-level code resolved into sic_description and each candidate's code
// into sic_descriptive. A miss on one entry does not block its siblings;
// misses are reported as issues (index -1 marks the top-level code) and
// the candidate sequence keeps its order and length exactly.
func (r *Resolver) Process(payload model.ClassificationPayload) (model.ClassificationPayload, []model.Issue) {
	out := payload.Clone()
	var issues []model.Issue

	if out.SICCode != "" {
		if desc, ok := r.Lookup(out.SICCode); ok {
			out.SICDescription = desc
		} else {
			issues = append(issues, model.Issue{
				Index:   -1,
				SICCode: out.SICCode,
				Reason:  "no reviewed description for code",
			})
		}
	}

	for i := range out.SICCandidates {
		desc, ok := r.Lookup(out.SICCandidates[i].SICCode)
		if !ok {
			issues = append(issues, model.Issue{
				Index:   i,
				SICCode: out.SICCandidates[i].SICCode,
				Reason:  "no reviewed description for code",
			})
			continue
		}
		out.SICCandidates[i].Descriptive = desc
	}

	return out, issues
}
