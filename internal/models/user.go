package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an authentication identity.
// Password holds the bcrypt hash and is never serialized.
type User struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
