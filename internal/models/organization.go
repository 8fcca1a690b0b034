package models

import (
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	FullyRemote bool      `db:"fully_remote"`
	CreatedAt   time.Time `db:"created_at"`
}
