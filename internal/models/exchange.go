package models

import (
	"time"

	"github.com/google/uuid"
)

// Exchange request statuses. Pending may move to Accepted or Declined;
// only Accepted may move to Completed. Declined and Completed are terminal.
const (
	RequestStatusPending   = "Pending"
	RequestStatusAccepted  = "Accepted"
	RequestStatusDeclined  = "Declined"
	RequestStatusCompleted = "Completed"
)

// ExchangeRequest represents a proposal to swap one listing for another
type ExchangeRequest struct {
	ID                 uuid.UUID `json:"id"`
	RequestedListingID uuid.UUID `json:"requested_listing_id"`
	OfferedListingID   uuid.UUID `json:"offered_listing_id"`
	RequesterID        uuid.UUID `json:"requester_id"`
	OwnerID            uuid.UUID `json:"owner_id"`
	Status             string    `json:"status"` // Pending, Accepted, Declined, Completed
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	// Hydrated for API responses
	RequestedListing *Listing `json:"requested_listing,omitempty"`
	OfferedListing   *Listing `json:"offered_listing,omitempty"`
}
