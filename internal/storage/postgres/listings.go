package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shelfswap/shelfswap-api/internal/models"
	"github.com/shelfswap/shelfswap-api/internal/storage"
)

const listingColumns = `id, owner_id, title, author, summary, condition, price, terms, image, status, created_at, updated_at`

func scanListing(row pgx.Row) (*models.Listing, error) {
	var l models.Listing
	err := row.Scan(
		&l.ID,
		&l.OwnerID,
		&l.Title,
		&l.Author,
		&l.Summary,
		&l.Condition,
		&l.Price,
		&l.Terms,
		&l.Image,
		&l.Status,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateListing inserts a new listing with status available
func (s *Store) CreateListing(ctx context.Context, listing *models.Listing) error {
	listing.Status = models.ListingStatusAvailable
	err := s.pool.QueryRow(ctx, `
		INSERT INTO listings (id, owner_id, title, author, summary, condition, price, terms, image, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`, listing.ID, listing.OwnerID, listing.Title, listing.Author, listing.Summary,
		listing.Condition, listing.Price, listing.Terms, listing.Image, listing.Status,
	).Scan(&listing.CreatedAt, &listing.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting listing: %w", err)
	}
	return nil
}

// GetListing returns a listing by id
func (s *Store) GetListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	l, err := scanListing(s.pool.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying listing: %w", err)
	}
	return l, nil
}

// ListAvailableExcluding returns available listings not owned by the caller
func (s *Store) ListAvailableExcluding(ctx context.Context, ownerID uuid.UUID) ([]models.Listing, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+listingColumns+`
		FROM listings
		WHERE status = $1 AND owner_id <> $2
	`, models.ListingStatusAvailable, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying listings: %w", err)
	}
	defer rows.Close()
	return collectListings(rows)
}

// ListByOwner returns every listing owned by the given user
func (s *Store) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Listing, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+listingColumns+`
		FROM listings
		WHERE owner_id = $1
		ORDER BY updated_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying listings: %w", err)
	}
	defer rows.Close()
	return collectListings(rows)
}

func collectListings(rows pgx.Rows) ([]models.Listing, error) {
	var listings []models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

// UpdateListing rewrites the owner-editable fields. The WHERE clause keys
// on (id, owner_id) in one statement so a non-owner gets the same
// ErrNotFound as a nonexistent id.
func (s *Store) UpdateListing(ctx context.Context, id, ownerID uuid.UUID, upd models.ListingUpdate) (*models.Listing, error) {
	l, err := scanListing(s.pool.QueryRow(ctx, `
		UPDATE listings
		SET title = $1, author = $2, summary = $3, condition = $4,
		    price = $5, terms = $6, image = $7, updated_at = NOW()
		WHERE id = $8 AND owner_id = $9
		RETURNING `+listingColumns,
		upd.Title, upd.Author, upd.Summary, upd.Condition,
		upd.Price, upd.Terms, upd.Image, id, ownerID))
	if err == pgx.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating listing: %w", err)
	}
	return l, nil
}

// MarkExchanged performs the conditional available -> exchanged flip.
// The status filter makes the update a compare-and-set: when two callers
// race, the second sees zero rows and reports ErrConflict.
func (s *Store) MarkExchanged(ctx context.Context, id, ownerID uuid.UUID) (*models.Listing, error) {
	l, err := scanListing(s.pool.QueryRow(ctx, `
		UPDATE listings
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND owner_id = $3 AND status = $4
		RETURNING `+listingColumns,
		models.ListingStatusExchanged, id, ownerID, models.ListingStatusAvailable))
	if err == nil {
		return l, nil
	}
	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("marking listing exchanged: %w", err)
	}

	// Zero rows: either the caller does not own such a listing, or it was
	// already exchanged. The follow-up check only inspects caller-owned
	// rows, preserving non-disclosure.
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM listings WHERE id = $1 AND owner_id = $2)`,
		id, ownerID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking listing: %w", err)
	}
	if exists {
		return nil, storage.ErrConflict
	}
	return nil, storage.ErrNotFound
}

// DeleteListing removes an owned listing. Pending requests referencing it
// are declined in the same transaction so no request is left pointing at
// a missing listing.
func (s *Store) DeleteListing(ctx context.Context, id, ownerID uuid.UUID) (*models.Listing, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	l, err := scanListing(tx.QueryRow(ctx, `
		DELETE FROM listings
		WHERE id = $1 AND owner_id = $2
		RETURNING `+listingColumns, id, ownerID))
	if err == pgx.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("deleting listing: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE exchange_requests
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND (requested_listing_id = $3 OR offered_listing_id = $3)
	`, models.RequestStatusDeclined, models.RequestStatusPending, id)
	if err != nil {
		return nil, fmt.Errorf("declining requests for deleted listing: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return l, nil
}
