package models

import (
	"time"

	"github.com/google/uuid"
)

type SourceType string

const (
	SourceTypePolicy        SourceType = "policy"
	SourceTypeContext       SourceType = "context"
	SourceTypeDocument      SourceType = "document"
	SourceTypeManualAnswer  SourceType = "manual_answer"
	SourceTypeKnowledgeBase SourceType = "knowledge_base"
)

// KnowledgeChunk is a stored, embeddable piece of organizational evidence.
type KnowledgeChunk struct {
	ID             uuid.UUID  `db:"id"`
	OrganizationID uuid.UUID  `db:"organization_id"`
	SourceType     SourceType `db:"source_type"`
	SourceID       string     `db:"source_id"`
	SourceLabel    string     `db:"source_label"`
	Content        string     `db:"content"`
	Embedding      []float32  `db:"embedding"` // nil until embedding sync runs
	CreatedAt      time.Time  `db:"created_at"`
}

// EvidenceChunk is a scored retrieval hit. It lives for one run only.
type EvidenceChunk struct {
	SourceType     SourceType
	SourceID       string
	SourceLabel    string
	Content        string
	RelevanceScore float64
}
