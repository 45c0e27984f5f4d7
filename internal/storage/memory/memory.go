// Package memory provides an in-memory implementation of the storage
// interfaces. It backs the unit tests; the single mutex gives every
// operation the same atomicity the Postgres store gets from transactions
// and conditional updates.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shelfswap/shelfswap-api/internal/models"
	"github.com/shelfswap/shelfswap-api/internal/storage"
)

// Store is a mutex-guarded in-memory store
type Store struct {
	mu sync.Mutex

	listings     map[uuid.UUID]*models.Listing
	listingOrder []uuid.UUID
	requests     map[uuid.UUID]*models.ExchangeRequest
	requestOrder []uuid.UUID
	users        map[uuid.UUID]*models.User
	books        map[uuid.UUID]*models.Book
	audiobooks   map[uuid.UUID]*models.Audiobook
	payments     map[uuid.UUID]*models.Payment
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		listings:   make(map[uuid.UUID]*models.Listing),
		requests:   make(map[uuid.UUID]*models.ExchangeRequest),
		users:      make(map[uuid.UUID]*models.User),
		books:      make(map[uuid.UUID]*models.Book),
		audiobooks: make(map[uuid.UUID]*models.Audiobook),
		payments:   make(map[uuid.UUID]*models.Payment),
	}
}

func cloneListing(l *models.Listing) *models.Listing {
	c := *l
	return &c
}

func cloneRequest(r *models.ExchangeRequest) *models.ExchangeRequest {
	c := *r
	c.RequestedListing = nil
	c.OfferedListing = nil
	return &c
}

// CreateListing stores a new listing with status available
func (s *Store) CreateListing(_ context.Context, listing *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	listing.Status = models.ListingStatusAvailable
	listing.CreatedAt = now
	listing.UpdatedAt = now
	s.listings[listing.ID] = cloneListing(listing)
	s.listingOrder = append(s.listingOrder, listing.ID)
	return nil
}

// GetListing returns a listing by id
func (s *Store) GetListing(_ context.Context, id uuid.UUID) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneListing(l), nil
}

// ListAvailableExcluding returns available listings not owned by the caller,
// in insertion order
func (s *Store) ListAvailableExcluding(_ context.Context, ownerID uuid.UUID) ([]models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Listing
	for _, id := range s.listingOrder {
		l, ok := s.listings[id]
		if !ok {
			continue
		}
		if l.Status == models.ListingStatusAvailable && l.OwnerID != ownerID {
			out = append(out, *cloneListing(l))
		}
	}
	return out, nil
}

// ListByOwner returns every listing owned by the given user
func (s *Store) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Listing
	for _, id := range s.listingOrder {
		l, ok := s.listings[id]
		if !ok {
			continue
		}
		if l.OwnerID == ownerID {
			out = append(out, *cloneListing(l))
		}
	}
	return out, nil
}

// UpdateListing rewrites the owner-editable fields under the fused
// (id, owner) check
func (s *Store) UpdateListing(_ context.Context, id, ownerID uuid.UUID, upd models.ListingUpdate) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok || l.OwnerID != ownerID {
		return nil, storage.ErrNotFound
	}
	l.Title = upd.Title
	l.Author = upd.Author
	l.Summary = upd.Summary
	l.Condition = upd.Condition
	l.Price = upd.Price
	l.Terms = upd.Terms
	l.Image = upd.Image
	l.UpdatedAt = time.Now()
	return cloneListing(l), nil
}

// MarkExchanged performs the compare-and-set available -> exchanged
func (s *Store) MarkExchanged(_ context.Context, id, ownerID uuid.UUID) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok || l.OwnerID != ownerID {
		return nil, storage.ErrNotFound
	}
	if l.Status != models.ListingStatusAvailable {
		return nil, storage.ErrConflict
	}
	l.Status = models.ListingStatusExchanged
	l.UpdatedAt = time.Now()
	return cloneListing(l), nil
}

// DeleteListing removes an owned listing and declines its pending requests
func (s *Store) DeleteListing(_ context.Context, id, ownerID uuid.UUID) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok || l.OwnerID != ownerID {
		return nil, storage.ErrNotFound
	}
	delete(s.listings, id)
	for _, r := range s.requests {
		if r.Status == models.RequestStatusPending &&
			(r.RequestedListingID == id || r.OfferedListingID == id) {
			r.Status = models.RequestStatusDeclined
			r.UpdatedAt = time.Now()
		}
	}
	return cloneListing(l), nil
}

// CreateRequest stores a Pending request, rejecting a duplicate Pending pair
func (s *Store) CreateRequest(_ context.Context, req *models.ExchangeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.requests {
		if r.Status == models.RequestStatusPending &&
			r.RequestedListingID == req.RequestedListingID &&
			r.OfferedListingID == req.OfferedListingID {
			return storage.ErrDuplicateRequest
		}
	}

	now := time.Now()
	req.Status = models.RequestStatusPending
	req.CreatedAt = now
	req.UpdatedAt = now
	s.requests[req.ID] = cloneRequest(req)
	s.requestOrder = append(s.requestOrder, req.ID)
	return nil
}

// GetRequest returns a request by id
func (s *Store) GetRequest(_ context.Context, id uuid.UUID) (*models.ExchangeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneRequest(r), nil
}

// AcceptRequest moves Pending -> Accepted and declines rival pending requests
func (s *Store) AcceptRequest(_ context.Context, id uuid.UUID) (*models.ExchangeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.transition(id, models.RequestStatusPending, models.RequestStatusAccepted)
	if err != nil {
		return nil, err
	}
	for _, other := range s.requests {
		if other.ID == id || other.Status != models.RequestStatusPending {
			continue
		}
		if other.RequestedListingID == r.RequestedListingID ||
			other.RequestedListingID == r.OfferedListingID ||
			other.OfferedListingID == r.RequestedListingID ||
			other.OfferedListingID == r.OfferedListingID {
			other.Status = models.RequestStatusDeclined
			other.UpdatedAt = time.Now()
		}
	}
	return cloneRequest(r), nil
}

// DeclineRequest moves Pending -> Declined
func (s *Store) DeclineRequest(_ context.Context, id uuid.UUID) (*models.ExchangeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.transition(id, models.RequestStatusPending, models.RequestStatusDeclined)
	if err != nil {
		return nil, err
	}
	return cloneRequest(r), nil
}

// CompleteRequest moves Accepted -> Completed and flips both listings.
// All checks run before any mutation so a conflicting completion leaves
// no partial state, mirroring the transactional Postgres path.
func (s *Store) CompleteRequest(_ context.Context, id uuid.UUID) (*models.ExchangeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if r.Status != models.RequestStatusAccepted {
		return nil, storage.ErrInvalidTransition
	}

	requested, ok := s.listings[r.RequestedListingID]
	if !ok || requested.Status != models.ListingStatusAvailable {
		return nil, storage.ErrConflict
	}
	offered, ok := s.listings[r.OfferedListingID]
	if !ok || offered.Status != models.ListingStatusAvailable {
		return nil, storage.ErrConflict
	}

	now := time.Now()
	r.Status = models.RequestStatusCompleted
	r.UpdatedAt = now
	requested.Status = models.ListingStatusExchanged
	requested.UpdatedAt = now
	offered.Status = models.ListingStatusExchanged
	offered.UpdatedAt = now
	return cloneRequest(r), nil
}

func (s *Store) transition(id uuid.UUID, from, to string) (*models.ExchangeRequest, error) {
	r, ok := s.requests[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if r.Status != from {
		return nil, storage.ErrInvalidTransition
	}
	r.Status = to
	r.UpdatedAt = time.Now()
	return r, nil
}

// ListRequests returns the requests a user participates in, filtered by role
func (s *Store) ListRequests(_ context.Context, userID uuid.UUID, role string) ([]models.ExchangeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.ExchangeRequest
	for _, id := range s.requestOrder {
		r, ok := s.requests[id]
		if !ok {
			continue
		}
		switch role {
		case "requester":
			if r.RequesterID != userID {
				continue
			}
		case "owner":
			if r.OwnerID != userID {
				continue
			}
		default:
			if r.RequesterID != userID && r.OwnerID != userID {
				continue
			}
		}
		out = append(out, *cloneRequest(r))
	}
	return out, nil
}

// CreateUser stores a user, rejecting duplicate emails
func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return storage.ErrDuplicateEmail
		}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	c := *user
	s.users[user.ID] = &c
	return nil
}

// GetUserByEmail returns a user by email
func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, storage.ErrNotFound
}

// GetUserByID returns a user by id
func (s *Store) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *u
	return &c, nil
}

// ListBooks returns catalog books filtered by search and genre
func (s *Store) ListBooks(_ context.Context, search, genre string) ([]models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Book
	for _, b := range s.books {
		if search != "" &&
			!strings.Contains(strings.ToLower(b.Title), strings.ToLower(search)) &&
			!strings.Contains(strings.ToLower(b.Author), strings.ToLower(search)) {
			continue
		}
		if genre != "" && b.Genre != genre {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

// GetBook returns a book by id
func (s *Store) GetBook(_ context.Context, id uuid.UUID) (*models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *b
	return &c, nil
}

// CreateBook stores a catalog book
func (s *Store) CreateBook(_ context.Context, book *models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book.CreatedAt = time.Now()
	c := *book
	s.books[book.ID] = &c
	return nil
}

// DeleteBook removes a book by id
func (s *Store) DeleteBook(_ context.Context, id uuid.UUID) (*models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	delete(s.books, id)
	return b, nil
}

// ListAudiobooks returns the audiobook catalog
func (s *Store) ListAudiobooks(_ context.Context) ([]models.Audiobook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Audiobook
	for _, a := range s.audiobooks {
		out = append(out, *a)
	}
	return out, nil
}

// GetAudiobook returns an audiobook by id
func (s *Store) GetAudiobook(_ context.Context, id uuid.UUID) (*models.Audiobook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.audiobooks[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *a
	return &c, nil
}

// AddAudiobook seeds an audiobook record
func (s *Store) AddAudiobook(audiobook *models.Audiobook) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *audiobook
	s.audiobooks[audiobook.ID] = &c
}

// CreatePayment records an initiated gateway transaction
func (s *Store) CreatePayment(_ context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payment.CreatedAt = time.Now()
	c := *payment
	s.payments[payment.ID] = &c
	return nil
}

// UpdatePaymentStatus sets the status of the payment with the given token
func (s *Store) UpdatePaymentStatus(_ context.Context, token, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.payments {
		if p.Token == token {
			p.Status = status
			return nil
		}
	}
	return storage.ErrNotFound
}
