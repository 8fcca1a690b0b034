package models

import (
	"time"

	"github.com/google/uuid"
)

// AnswerVersion is one immutable row of the answer log. Only IsLatest is
// ever flipped after insert.
type AnswerVersion struct {
	ID           uuid.UUID `db:"id"`
	DocumentID   uuid.UUID `db:"document_id"`
	QuestionID   uuid.UUID `db:"question_id"`
	AnswerText   *string   `db:"answer_text"`
	IsApplicable bool      `db:"is_applicable"`
	Version      int       `db:"version"`
	IsLatest     bool      `db:"is_latest"`
	CreatedAt    time.Time `db:"created_at"`
	CreatedBy    uuid.UUID `db:"created_by"`
}
