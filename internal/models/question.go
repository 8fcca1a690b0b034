package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Question struct {
	ID                   uuid.UUID `db:"id"`
	ConfigurationID      uuid.UUID `db:"configuration_id"`
	Position             int       `db:"position"`
	ControlCode          string    `db:"control_code"`
	Title                string    `db:"title"`
	Text                 string    `db:"text"`
	CurrentApplicability *bool     `db:"current_applicability"`
	CurrentJustification *string   `db:"current_justification"`
	UpdatedAt            time.Time `db:"updated_at"`
}

// Answered reports whether the question already has a resolved applicability.
func (q *Question) Answered() bool {
	return q.CurrentApplicability != nil
}

// SearchQuery builds the retrieval query for the question.
func (q *Question) SearchQuery() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{q.ControlCode, q.Title, q.Text} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
