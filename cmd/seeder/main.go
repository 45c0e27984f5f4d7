package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/shelfswap/shelfswap-api/internal/models"
)

// Seeds the audiobook catalog. Safe to run repeatedly: it skips when the
// table already has rows.
func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			getEnv("PGUSER", "shelfswap_user"),
			getEnv("PGPASSWORD", "shelfswap_pass"),
			getEnv("PGHOST", "localhost"),
			getEnv("PGPORT", "5432"),
			getEnv("PGDATABASE", "shelfswap"),
			getEnv("PGSSLMODE", "disable"),
		)
	}

	conn, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Unable to open database: %v", err)
	}
	defer conn.Close()

	if err := conn.Ping(); err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}

	var count int
	if err := conn.QueryRow("SELECT COUNT(*) FROM audiobooks").Scan(&count); err != nil {
		log.Fatalf("Counting audiobooks failed: %v", err)
	}
	if count > 0 {
		log.Printf("Audiobooks already seeded (%d rows). Skipping.", count)
		return
	}

	audiobooks := []models.Audiobook{
		{
			ID:          uuid.New(),
			Title:       "Frankenstein",
			Author:      "Mary Shelley",
			Price:       500,
			Description: "A classic gothic novel exploring human ambition and morality.",
			Image:       "/uploads/Book2.jpg",
			Chapters: []models.Chapter{
				{Title: "Introduction", AudioSrc: "/audio/frankenstein/chapter1.mp3"},
				{Title: "Chapter 1", AudioSrc: "/audio/frankenstein/chapter2.mp3"},
			},
		},
		{
			ID:          uuid.New(),
			Title:       "The Alchemist",
			Author:      "Paulo Coelho",
			Price:       450,
			Description: "A spiritual journey of a shepherd boy pursuing his dreams.",
			Image:       "/uploads/the_alchemist.jpg",
			Chapters: []models.Chapter{
				{Title: "Introduction", AudioSrc: "/audio/the_alchemist/chapter1.mp3"},
				{Title: "Chapter 1", AudioSrc: "/audio/the_alchemist/chapter2.mp3"},
			},
		},
	}

	for _, a := range audiobooks {
		chapters, err := json.Marshal(a.Chapters)
		if err != nil {
			log.Fatalf("Encoding chapters failed: %v", err)
		}

		_, err = conn.Exec(`
			INSERT INTO audiobooks (id, title, author, price, description, image, chapters)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, a.ID, a.Title, a.Author, a.Price, a.Description, a.Image, chapters)
		if err != nil {
			log.Fatalf("Inserting audiobook %q failed: %v", a.Title, err)
		}
	}

	log.Printf("Audiobooks seeded successfully (%d rows).", len(audiobooks))
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
