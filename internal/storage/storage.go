package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/shelfswap/shelfswap-api/internal/models"
)

// Sentinel errors shared by every store implementation.
//
// ErrNotFound is deliberately returned both when a record does not exist
// and when it exists but is not owned by the caller, so responses never
// reveal whether a foreign record exists.
var (
	ErrNotFound          = errors.New("record not found")
	ErrConflict          = errors.New("listing is no longer available")
	ErrDuplicateRequest  = errors.New("a pending request for this pair already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrDuplicateEmail    = errors.New("email already registered")
)

// ListingStore persists exchange listings. Every owner mutation performs a
// single conditional write keyed on (id, owner) so not-found and not-owned
// are indistinguishable.
type ListingStore interface {
	CreateListing(ctx context.Context, listing *models.Listing) error
	GetListing(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	ListAvailableExcluding(ctx context.Context, ownerID uuid.UUID) ([]models.Listing, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Listing, error)
	UpdateListing(ctx context.Context, id, ownerID uuid.UUID, upd models.ListingUpdate) (*models.Listing, error)
	// MarkExchanged flips status available -> exchanged with a compare-and-set.
	// An owned listing that is already exchanged reports ErrConflict.
	MarkExchanged(ctx context.Context, id, ownerID uuid.UUID) (*models.Listing, error)
	// DeleteListing removes the listing and declines its pending requests
	// in the same transaction.
	DeleteListing(ctx context.Context, id, ownerID uuid.UUID) (*models.Listing, error)
}

// ExchangeStore persists exchange requests. Status changes are atomic
// compare-and-set operations; callers never observe partial transitions.
type ExchangeStore interface {
	// CreateRequest inserts a Pending request, failing with
	// ErrDuplicateRequest when a Pending request for the same
	// (requested, offered) pair exists.
	CreateRequest(ctx context.Context, req *models.ExchangeRequest) error
	GetRequest(ctx context.Context, id uuid.UUID) (*models.ExchangeRequest, error)
	// AcceptRequest moves Pending -> Accepted and, in the same transaction,
	// declines every other Pending request that references either listing.
	AcceptRequest(ctx context.Context, id uuid.UUID) (*models.ExchangeRequest, error)
	// DeclineRequest moves Pending -> Declined.
	DeclineRequest(ctx context.Context, id uuid.UUID) (*models.ExchangeRequest, error)
	// CompleteRequest moves Accepted -> Completed and flips both referenced
	// listings available -> exchanged in one transaction. When either
	// listing was already exchanged the whole transaction fails with
	// ErrConflict, so exactly one completion wins a race.
	CompleteRequest(ctx context.Context, id uuid.UUID) (*models.ExchangeRequest, error)
	ListRequests(ctx context.Context, userID uuid.UUID, role string) ([]models.ExchangeRequest, error)
}

// UserStore persists authentication identities
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// CatalogStore persists the book and audiobook catalog
type CatalogStore interface {
	ListBooks(ctx context.Context, search, genre string) ([]models.Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error)
	CreateBook(ctx context.Context, book *models.Book) error
	DeleteBook(ctx context.Context, id uuid.UUID) (*models.Book, error)
	ListAudiobooks(ctx context.Context) ([]models.Audiobook, error)
	GetAudiobook(ctx context.Context, id uuid.UUID) (*models.Audiobook, error)
}

// PaymentStore persists gateway payment records
type PaymentStore interface {
	CreatePayment(ctx context.Context, payment *models.Payment) error
	UpdatePaymentStatus(ctx context.Context, token, status string) error
}
