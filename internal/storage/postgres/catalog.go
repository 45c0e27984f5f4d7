package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shelfswap/shelfswap-api/internal/models"
	"github.com/shelfswap/shelfswap-api/internal/storage"
)

// ListBooks returns catalog books, optionally filtered by a
// case-insensitive title/author search and an exact genre match
func (s *Store) ListBooks(ctx context.Context, search, genre string) ([]models.Book, error) {
	query := `
		SELECT id, title, author, price, genre, rating, image, summary, reviews, created_at
		FROM books
		WHERE 1 = 1`
	args := []interface{}{}

	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(" AND (title ILIKE $%d OR author ILIKE $%d)", len(args), len(args))
	}
	if genre != "" {
		args = append(args, genre)
		query += fmt.Sprintf(" AND genre = $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying books: %w", err)
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

// GetBook returns a book by id
func (s *Store) GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	b, err := scanBook(s.pool.QueryRow(ctx, `
		SELECT id, title, author, price, genre, rating, image, summary, reviews, created_at
		FROM books WHERE id = $1
	`, id))
	if err == pgx.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying book: %w", err)
	}
	return b, nil
}

// CreateBook inserts a catalog book; reviews are stored as JSONB
func (s *Store) CreateBook(ctx context.Context, book *models.Book) error {
	reviews, err := json.Marshal(book.Reviews)
	if err != nil {
		return fmt.Errorf("encoding reviews: %w", err)
	}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO books (id, title, author, price, genre, rating, image, summary, reviews)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`, book.ID, book.Title, book.Author, book.Price, book.Genre,
		book.Rating, book.Image, book.Summary, reviews,
	).Scan(&book.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting book: %w", err)
	}
	return nil
}

// DeleteBook removes a book by id
func (s *Store) DeleteBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	b, err := scanBook(s.pool.QueryRow(ctx, `
		DELETE FROM books WHERE id = $1
		RETURNING id, title, author, price, genre, rating, image, summary, reviews, created_at
	`, id))
	if err == pgx.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("deleting book: %w", err)
	}
	return b, nil
}

func scanBook(row pgx.Row) (*models.Book, error) {
	var b models.Book
	var reviews []byte
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Price, &b.Genre,
		&b.Rating, &b.Image, &b.Summary, &reviews, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(reviews) > 0 {
		if err := json.Unmarshal(reviews, &b.Reviews); err != nil {
			return nil, fmt.Errorf("decoding reviews: %w", err)
		}
	}
	return &b, nil
}

// ListAudiobooks returns the audiobook catalog
func (s *Store) ListAudiobooks(ctx context.Context) ([]models.Audiobook, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, author, price, description, image, chapters, created_at
		FROM audiobooks
	`)
	if err != nil {
		return nil, fmt.Errorf("querying audiobooks: %w", err)
	}
	defer rows.Close()

	var audiobooks []models.Audiobook
	for rows.Next() {
		a, err := scanAudiobook(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning audiobook: %w", err)
		}
		audiobooks = append(audiobooks, *a)
	}
	return audiobooks, rows.Err()
}

// GetAudiobook returns an audiobook by id
func (s *Store) GetAudiobook(ctx context.Context, id uuid.UUID) (*models.Audiobook, error) {
	a, err := scanAudiobook(s.pool.QueryRow(ctx, `
		SELECT id, title, author, price, description, image, chapters, created_at
		FROM audiobooks WHERE id = $1
	`, id))
	if err == pgx.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying audiobook: %w", err)
	}
	return a, nil
}

func scanAudiobook(row pgx.Row) (*models.Audiobook, error) {
	var a models.Audiobook
	var chapters []byte
	err := row.Scan(&a.ID, &a.Title, &a.Author, &a.Price, &a.Description,
		&a.Image, &chapters, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(chapters) > 0 {
		if err := json.Unmarshal(chapters, &a.Chapters); err != nil {
			return nil, fmt.Errorf("decoding chapters: %w", err)
		}
	}
	return &a, nil
}
