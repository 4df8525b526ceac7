package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account together with its persisted chat transcript.
type User struct {
	Id           uuid.UUID
	Email        string
	PasswordHash string
	History      string
	LastQuestion string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
