package models

import "github.com/google/uuid"

// Source is a deduplicated, displayable reference to evidence.
type Source struct {
	SourceType     SourceType `json:"sourceType"`
	SourceName     string     `json:"sourceName,omitempty"`
	SourceID       string     `json:"sourceId"`
	RelevanceScore float64    `json:"relevanceScore"`
}

// ClassificationResult is the engine's verdict for one question.
// IsApplicable == nil means the question could not be resolved.
type ClassificationResult struct {
	QuestionID       uuid.UUID
	IsApplicable     *bool
	Justification    *string
	SourcesUsed      []Source
	Succeeded        bool
	InsufficientData bool
}

// Accepted reports whether the result may be written to the answer log.
func (r *ClassificationResult) Accepted() bool {
	return r.Succeeded && r.IsApplicable != nil
}

// FailedResult is the unresolved outcome for a question.
func FailedResult(questionID uuid.UUID) ClassificationResult {
	return ClassificationResult{QuestionID: questionID}
}
