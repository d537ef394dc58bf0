package model

import "time"

// ResolutionRun records one rephrase-enrichment invocation for auditing.
type ResolutionRun struct {
	ID        string                `json:"id"`
	Input     ClassificationPayload `json:"input"`
	Output    ClassificationPayload `json:"output"`
	Issues    []Issue               `json:"issues,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}
