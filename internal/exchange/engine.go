// Package exchange implements the exchange request lifecycle: a request
// moves Pending -> Accepted -> Completed, or Pending -> Declined. The
// engine enforces ownership and preconditions; the store guarantees the
// atomicity of each transition.
package exchange

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shelfswap/shelfswap-api/internal/models"
	"github.com/shelfswap/shelfswap-api/internal/storage"
)

var (
	// ErrInvalidRequest covers every createRequest precondition failure:
	// missing listing, unavailable listing, wrong owner. One error for
	// all causes so responses never reveal which one tripped.
	ErrInvalidRequest = errors.New("invalid exchange request")
	// ErrForbidden is returned when the caller is not allowed to act on
	// the request.
	ErrForbidden = errors.New("you are not allowed to modify this request")
	// ErrInvalidDecision is returned for an unknown respond decision.
	ErrInvalidDecision = errors.New("decision must be accept or decline")
)

// Decision is the owner's answer to a pending request
type Decision string

const (
	DecisionAccept  Decision = "accept"
	DecisionDecline Decision = "decline"
)

// Roles for filtering a user's requests
const (
	RoleRequester = "requester"
	RoleOwner     = "owner"
	RoleAll       = "all"
)

var (
	requestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "exchange_requests_created_total",
		Help: "Exchange requests created",
	})
	requestsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exchange_requests_resolved_total",
		Help: "Exchange requests accepted, declined or completed",
	}, []string{"outcome"})
	completionConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "exchange_completion_conflicts_total",
		Help: "Completions lost to a concurrent status change",
	})
)

// Engine coordinates two-party exchange proposals between listings
type Engine struct {
	listings storage.ListingStore
	requests storage.ExchangeStore
}

// NewEngine builds an engine over the given stores
func NewEngine(listings storage.ListingStore, requests storage.ExchangeStore) *Engine {
	return &Engine{listings: listings, requests: requests}
}

// Authorize fails with ErrForbidden unless the caller owns the resource
func Authorize(resourceOwnerID, callerID uuid.UUID) error {
	if resourceOwnerID != callerID {
		return ErrForbidden
	}
	return nil
}

// CreateRequest proposes swapping one of the requester's listings for an
// available listing owned by someone else.
func (e *Engine) CreateRequest(ctx context.Context, requesterID, requestedListingID, offeredListingID uuid.UUID) (*models.ExchangeRequest, error) {
	requested, err := e.listings.GetListing(ctx, requestedListingID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidRequest
		}
		return nil, err
	}
	if requested.Status != models.ListingStatusAvailable || requested.OwnerID == requesterID {
		return nil, ErrInvalidRequest
	}

	offered, err := e.listings.GetListing(ctx, offeredListingID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidRequest
		}
		return nil, err
	}
	if offered.OwnerID != requesterID {
		return nil, ErrInvalidRequest
	}

	req := &models.ExchangeRequest{
		ID:                 uuid.New(),
		RequestedListingID: requestedListingID,
		OfferedListingID:   offeredListingID,
		RequesterID:        requesterID,
		OwnerID:            requested.OwnerID,
	}
	if err := e.requests.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	requestsCreated.Inc()
	return req, nil
}

// Respond lets the owner of the requested listing accept or decline a
// pending request. Accepting reserves both listings by declining every
// rival pending request inside the store transaction.
func (e *Engine) Respond(ctx context.Context, requestID, callerID uuid.UUID, decision Decision) (*models.ExchangeRequest, error) {
	req, err := e.requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(req.OwnerID, callerID); err != nil {
		return nil, err
	}

	switch decision {
	case DecisionAccept:
		req, err = e.requests.AcceptRequest(ctx, requestID)
		if err == nil {
			requestsResolved.WithLabelValues("accepted").Inc()
		}
	case DecisionDecline:
		req, err = e.requests.DeclineRequest(ctx, requestID)
		if err == nil {
			requestsResolved.WithLabelValues("declined").Inc()
		}
	default:
		return nil, ErrInvalidDecision
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Complete finalizes an accepted exchange. Either participant may call it;
// the store flips the request and both listings in one transaction, so a
// listing promised twice is handed over exactly once.
func (e *Engine) Complete(ctx context.Context, requestID, callerID uuid.UUID) (*models.ExchangeRequest, error) {
	req, err := e.requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if callerID != req.RequesterID && callerID != req.OwnerID {
		return nil, ErrForbidden
	}

	req, err = e.requests.CompleteRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			completionConflicts.Inc()
		}
		return nil, err
	}
	requestsResolved.WithLabelValues("completed").Inc()
	return req, nil
}

// ListForUser returns the requests the user participates in, hydrated
// with both listings when they still exist.
func (e *Engine) ListForUser(ctx context.Context, userID uuid.UUID, role string) ([]models.ExchangeRequest, error) {
	requests, err := e.requests.ListRequests(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	for i := range requests {
		if l, err := e.listings.GetListing(ctx, requests[i].RequestedListingID); err == nil {
			requests[i].RequestedListing = l
		}
		if l, err := e.listings.GetListing(ctx, requests[i].OfferedListingID); err == nil {
			requests[i].OfferedListing = l
		}
	}
	return requests, nil
}
