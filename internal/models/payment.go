package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment statuses for gateway transactions
const (
	PaymentStatusInitiated = "initiated"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Payment records an eSewa transaction initiated from this backend
type Payment struct {
	ID        uuid.UUID `json:"id"`
	Token     string    `json:"token"` // gateway transaction uuid
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
