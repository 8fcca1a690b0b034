package models

import (
	"time"

	"github.com/google/uuid"
)

// Configuration is a named set of questions for one compliance framework
// and organization.
type Configuration struct {
	ID             uuid.UUID `db:"id"`
	OrganizationID uuid.UUID `db:"organization_id"`
	Framework      string    `db:"framework"`
	Name           string    `db:"name"`
	CreatedAt      time.Time `db:"created_at"`
}
