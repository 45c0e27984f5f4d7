package models

import (
	"time"

	"github.com/google/uuid"
)

// Listing statuses. A listing only ever moves available -> exchanged.
const (
	ListingStatusAvailable = "available"
	ListingStatusExchanged = "exchanged"
)

// Listing conditions accepted on upload
const (
	ConditionNew = "new"
	ConditionOld = "old"
)

// Listing represents a book offered for exchange
type Listing struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Summary   string    `json:"summary"`
	Condition string    `json:"condition"` // new, old
	Price     float64   `json:"price"`
	Terms     string    `json:"terms"`
	Image     string    `json:"image"`
	Status    string    `json:"status"` // available, exchanged
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListingUpdate carries the owner-editable fields of a listing.
// The owner reference is deliberately absent so a patch can never move
// a listing to another user.
type ListingUpdate struct {
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Summary   string  `json:"summary"`
	Condition string  `json:"condition"`
	Price     float64 `json:"price"`
	Terms     string  `json:"terms"`
	Image     string  `json:"image"`
}

// ValidCondition reports whether c is an accepted listing condition
func ValidCondition(c string) bool {
	return c == ConditionNew || c == ConditionOld
}
