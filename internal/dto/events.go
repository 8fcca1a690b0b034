package dto

import "comply-rag/internal/models"

const (
	EventProgress   = "progress"
	EventProcessing = "processing"
	EventAnswer     = "answer"
	EventComplete   = "complete"
	EventError      = "error"
)

// Event is one line of the auto-answer stream.
type Event interface {
	EventType() string
}

type ProgressEvent struct {
	Type      string `json:"type"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Remaining int    `json:"remaining"`
}

func (e ProgressEvent) EventType() string { return EventProgress }

type ProcessingEvent struct {
	Type       string `json:"type"`
	QuestionID string `json:"questionId"`
	Index      int    `json:"index"`
}

func (e ProcessingEvent) EventType() string { return EventProcessing }

type AnswerEvent struct {
	Type             string          `json:"type"`
	QuestionID       string          `json:"questionId"`
	Index            int             `json:"index"`
	IsApplicable     *bool           `json:"isApplicable"`
	Justification    *string         `json:"justification"`
	Succeeded        bool            `json:"succeeded"`
	InsufficientData bool            `json:"insufficientData"`
	Sources          []models.Source `json:"sources"`
}

func (e AnswerEvent) EventType() string { return EventAnswer }

type CompleteEvent struct {
	Type     string        `json:"type"`
	Total    int           `json:"total"`
	Answered int           `json:"answered"`
	Failed   int           `json:"failed"`
	Results  []AnswerEvent `json:"results"`
}

func (e CompleteEvent) EventType() string { return EventComplete }

type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func (e ErrorEvent) EventType() string { return EventError }

func NewProgressEvent(total, completed int) ProgressEvent {
	return ProgressEvent{Type: EventProgress, Total: total, Completed: completed, Remaining: total - completed}
}

func NewProcessingEvent(questionID string, index int) ProcessingEvent {
	return ProcessingEvent{Type: EventProcessing, QuestionID: questionID, Index: index}
}

func NewErrorEvent(msg string) ErrorEvent {
	return ErrorEvent{Type: EventError, Error: msg}
}

// NewAnswerEvent converts a classification result into its stream form.
func NewAnswerEvent(index int, r models.ClassificationResult) AnswerEvent {
	sources := r.SourcesUsed
	if sources == nil {
		sources = []models.Source{}
	}
	return AnswerEvent{
		Type:             EventAnswer,
		QuestionID:       r.QuestionID.String(),
		Index:            index,
		IsApplicable:     r.IsApplicable,
		Justification:    r.Justification,
		Succeeded:        r.Succeeded,
		InsufficientData: r.InsufficientData,
		Sources:          sources,
	}
}
