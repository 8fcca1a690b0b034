package models

import (
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	DocumentStatusInProgress DocumentStatus = "in_progress"
	DocumentStatusCompleted  DocumentStatus = "completed"
)

type Document struct {
	ID                uuid.UUID      `db:"id"`
	OrganizationID    uuid.UUID      `db:"organization_id"`
	ConfigurationID   uuid.UUID      `db:"configuration_id"`
	TotalQuestions    int            `db:"total_questions"`
	AnsweredQuestions int            `db:"answered_questions"`
	Status            DocumentStatus `db:"status"`
	CompletedAt       *time.Time     `db:"completed_at"`
	ApprovedAt        *time.Time     `db:"approved_at"`
	ApprovedBy        *uuid.UUID     `db:"approved_by"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

// StatusFor derives the document status from its counters.
func StatusFor(answered, total int) DocumentStatus {
	if answered == total {
		return DocumentStatusCompleted
	}
	return DocumentStatusInProgress
}
