package sic

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/statsight/sic-cli/internal/model"
	"github.com/statsight/sic-cli/internal/tables"
)

// Index is the classification lookup index. All derived maps are built
// eagerly at construction and never mutated afterward, so a single Index
// is safe for concurrent readers.
type Index struct {
	records       []model.Record
	byDescription map[string]model.Record
	byCode        map[string][]model.Record
	byDivision    map[string][]model.Record
}

// NewIndex builds an Index from reference records. Codes are normalized
// to 5 digits. When two records share a normalized description the later
// one wins, mirroring the overwrite behavior of the source table's
// dictionary form.
func NewIndex(records []model.Record) (*Index, error) {
	if len(records) == 0 {
		return nil, eris.New("sic: index: no reference records")
	}

	idx := &Index{
		records:       make([]model.Record, 0, len(records)),
		byDescription: make(map[string]model.Record, len(records)),
		byCode:        make(map[string][]model.Record),
		byDivision:    make(map[string][]model.Record),
	}

	for _, rec := range records {
		rec.Code = NormalizeCode(rec.Code)
		idx.records = append(idx.records, rec)

		key := NormalizeDescription(rec.Description)
		if _, dup := idx.byDescription[key]; dup {
			zap.L().Debug("sic index: duplicate description, keeping later record",
				zap.String("description", rec.Description),
				zap.String("code", rec.Code),
			)
		}
		idx.byDescription[key] = rec

		idx.byCode[rec.Code] = append(idx.byCode[rec.Code], rec)

		if div, err := Division(rec.Code); err == nil {
			idx.byDivision[div] = append(idx.byDivision[div], rec)
		}
	}

	return idx, nil
}

// LoadIndex reads the reference table at path and builds the index.
func LoadIndex(path string) (*Index, error) {
	records, err := tables.ReadRecords(path)
	if err != nil {
		return nil, eris.Wrap(err, "sic: load index")
	}
	return NewIndex(records)
}

// Len returns the number of reference records loaded.
func (x *Index) Len() int { return len(x.records) }

// Lookup resolves a free-text description against the stored records by
// normalized equality. A miss is an expected outcome, not an error.
func (x *Index) Lookup(description string) (model.Record, bool) {
	rec, ok := x.byDescription[NormalizeDescription(description)]
	return rec, ok
}

// LookupCode returns every record sharing the (normalized) code, in load
// order.
func (x *Index) LookupCode(code string) []model.Record {
	return copyRecords(x.byCode[NormalizeCode(code)])
}

// LookupCodeDivision derives the division of a full or partial code and
// returns every record in that division, in load order. An unknown
// division yields an empty result; a malformed code yields
// ErrInvalidCode.
func (x *Index) LookupCodeDivision(code string) ([]model.Record, error) {
	div, err := Division(NormalizeCode(code))
	if err != nil {
		return nil, err
	}
	return copyRecords(x.byDivision[div]), nil
}

// copyRecords copies a derived-map slice so callers cannot write into
// the index's internal state.
func copyRecords(records []model.Record) []model.Record {
	if records == nil {
		return nil
	}
	out := make([]model.Record, len(records))
	copy(out, records)
	return out
}

// UniqueCodeDivisions deduplicates candidates by division, keeping the
// first candidate seen per division and preserving input order among
// survivors. Each retained candidate carries its division's records.
// Candidates with malformed codes are skipped and reported; they never
// fail the batch.
func (x *Index) UniqueCodeDivisions(candidates []model.SICCandidate) ([]model.DivisionGroup, []model.Issue) {
	var groups []model.DivisionGroup
	var issues []model.Issue
	seen := make(map[string]bool, len(candidates))

	for i, cand := range candidates {
		code := NormalizeCode(cand.SICCode)
		div, err := Division(code)
		if err != nil {
			issues = append(issues, model.Issue{
				Index:   i,
				SICCode: cand.SICCode,
				Reason:  "invalid sic_code: cannot derive division",
			})
			continue
		}
		if seen[div] {
			continue
		}
		seen[div] = true

		groups = append(groups, model.DivisionGroup{
			SICCode:  code,
			Division: div,
			Records:  copyRecords(x.byDivision[div]),
		})
	}

	return groups, issues
}
