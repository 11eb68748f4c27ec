package models

import "time"

// ResultSource records which tier of the response chain produced the text.
type ResultSource string

const (
	SourceNormalized ResultSource = "normalized"
	SourceLegacy     ResultSource = "legacy"
	SourceLocal      ResultSource = "local"
)

// AdviceLines is the number of advice strings in every result.
const AdviceLines = 3

// AnalysisResult is the outcome of one analysis. It is built fresh per
// request and never mutated after it is returned.
type AnalysisResult struct {
	ID               string       `json:"id"`
	State            State        `json:"state"`
	Health           int          `json:"health"`
	Headline         string       `json:"headline"`
	Advice           []string     `json:"advice"`
	Message          string       `json:"message"`
	Source           ResultSource `json:"source"`
	ParameterVersion string       `json:"parameter_version"`
	Metrics          Metrics      `json:"metrics"`
	CreatedAt        time.Time    `json:"created_at"`
}
