package postgres

import (
	"context"
	"fmt"

	"github.com/shelfswap/shelfswap-api/internal/models"
	"github.com/shelfswap/shelfswap-api/internal/storage"
)

// CreatePayment records an initiated gateway transaction
func (s *Store) CreatePayment(ctx context.Context, payment *models.Payment) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO payments (id, token, amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, payment.ID, payment.Token, payment.Amount, payment.Status,
	).Scan(&payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting payment: %w", err)
	}
	return nil
}

// UpdatePaymentStatus sets the status of the payment with the given token
func (s *Store) UpdatePaymentStatus(ctx context.Context, token, status string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE payments SET status = $1 WHERE token = $2
	`, status, token)
	if err != nil {
		return fmt.Errorf("updating payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
