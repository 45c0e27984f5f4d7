package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shelfswap/shelfswap-api/internal/models"
	"github.com/shelfswap/shelfswap-api/internal/storage"
)

const requestColumns = `id, requested_listing_id, offered_listing_id, requester_id, owner_id, status, created_at, updated_at`

func scanRequest(row pgx.Row) (*models.ExchangeRequest, error) {
	var r models.ExchangeRequest
	err := row.Scan(
		&r.ID,
		&r.RequestedListingID,
		&r.OfferedListingID,
		&r.RequesterID,
		&r.OwnerID,
		&r.Status,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRequest inserts a Pending request. The partial unique index on
// (requested_listing_id, offered_listing_id) WHERE status = 'Pending'
// makes the duplicate check race-free; a unique violation maps to
// ErrDuplicateRequest.
func (s *Store) CreateRequest(ctx context.Context, req *models.ExchangeRequest) error {
	req.Status = models.RequestStatusPending
	err := s.pool.QueryRow(ctx, `
		INSERT INTO exchange_requests (id, requested_listing_id, offered_listing_id, requester_id, owner_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, req.ID, req.RequestedListingID, req.OfferedListingID, req.RequesterID, req.OwnerID, req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return storage.ErrDuplicateRequest
		}
		return fmt.Errorf("inserting exchange request: %w", err)
	}
	return nil
}

// GetRequest returns a request by id
func (s *Store) GetRequest(ctx context.Context, id uuid.UUID) (*models.ExchangeRequest, error) {
	r, err := scanRequest(s.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM exchange_requests WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying exchange request: %w", err)
	}
	return r, nil
}

// AcceptRequest moves Pending -> Accepted and declines every other Pending
// request touching either listing, all in one transaction. Accepting
// reserves the pair: rival proposals are resolved here, not at completion.
func (s *Store) AcceptRequest(ctx context.Context, id uuid.UUID) (*models.ExchangeRequest, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	r, err := s.transitionRequest(ctx, tx, id, models.RequestStatusPending, models.RequestStatusAccepted)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE exchange_requests
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND id <> $3
		  AND (requested_listing_id IN ($4, $5) OR offered_listing_id IN ($4, $5))
	`, models.RequestStatusDeclined, models.RequestStatusPending, id,
		r.RequestedListingID, r.OfferedListingID)
	if err != nil {
		return nil, fmt.Errorf("declining rival requests: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return r, nil
}

// DeclineRequest moves Pending -> Declined
func (s *Store) DeclineRequest(ctx context.Context, id uuid.UUID) (*models.ExchangeRequest, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	r, err := s.transitionRequest(ctx, tx, id, models.RequestStatusPending, models.RequestStatusDeclined)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return r, nil
}

// CompleteRequest moves Accepted -> Completed and flips both listings
// available -> exchanged. Every write shares the transaction; if either
// listing lost its availability the whole completion rolls back with
// ErrConflict, so two racing completions targeting the same listing
// succeed exactly once.
func (s *Store) CompleteRequest(ctx context.Context, id uuid.UUID) (*models.ExchangeRequest, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	r, err := s.transitionRequest(ctx, tx, id, models.RequestStatusAccepted, models.RequestStatusCompleted)
	if err != nil {
		return nil, err
	}

	for _, listingID := range []uuid.UUID{r.RequestedListingID, r.OfferedListingID} {
		tag, err := tx.Exec(ctx, `
			UPDATE listings
			SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3
		`, models.ListingStatusExchanged, listingID, models.ListingStatusAvailable)
		if err != nil {
			return nil, fmt.Errorf("marking listing exchanged: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil, storage.ErrConflict
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return r, nil
}

// transitionRequest is the shared compare-and-set on request status.
// Zero rows means the request is missing or not in the expected state;
// the follow-up read distinguishes the two.
func (s *Store) transitionRequest(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to string) (*models.ExchangeRequest, error) {
	r, err := scanRequest(tx.QueryRow(ctx, `
		UPDATE exchange_requests
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING `+requestColumns, to, id, from))
	if err == nil {
		return r, nil
	}
	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("updating request status: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM exchange_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking request: %w", err)
	}
	if exists {
		return nil, storage.ErrInvalidTransition
	}
	return nil, storage.ErrNotFound
}

// ListRequests returns the requests a user participates in, filtered by role
func (s *Store) ListRequests(ctx context.Context, userID uuid.UUID, role string) ([]models.ExchangeRequest, error) {
	var condition string
	switch role {
	case "requester":
		condition = "requester_id = $1"
	case "owner":
		condition = "owner_id = $1"
	default:
		condition = "(requester_id = $1 OR owner_id = $1)"
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM exchange_requests
		WHERE `+condition+`
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exchange requests: %w", err)
	}
	defer rows.Close()

	var requests []models.ExchangeRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exchange request: %w", err)
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}
