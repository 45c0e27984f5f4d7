package models

import (
	"time"

	"github.com/google/uuid"
)

// Book represents a catalog record for sale
type Book struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Price     float64   `json:"price"`
	Genre     string    `json:"genre"`
	Rating    float64   `json:"rating"`
	Image     string    `json:"image"`
	Summary   string    `json:"summary"`
	Reviews   []Review  `json:"reviews"`
	CreatedAt time.Time `json:"created_at"`
}

// Review is an embedded reader review on a book
type Review struct {
	Reviewer string `json:"reviewer"`
	Comment  string `json:"comment"`
	Rating   int    `json:"rating"`
}

// Audiobook represents an audiobook catalog record
type Audiobook struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Chapters    []Chapter `json:"chapters"`
	CreatedAt   time.Time `json:"created_at"`
}

// Chapter is one audio segment of an audiobook
type Chapter struct {
	Title    string `json:"title"`
	AudioSrc string `json:"audioSrc"`
}
