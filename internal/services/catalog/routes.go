package catalog

import (
	"github.com/gofiber/fiber/v3"

	"github.com/shelfswap/shelfswap-api/internal/middleware"
)

// SetupRoutes registers the catalog routes. Reads are public; writes
// require authentication.
func (s *CatalogService) SetupRoutes(app *fiber.App) {
	books := app.Group("/api/books")

	books.Get("/", s.GetBooks)
	books.Get("/:id", s.GetBook)

	authMiddleware := middleware.AuthMiddleware(s.jwtService)
	books.Post("/", s.CreateBook, authMiddleware)
	books.Delete("/:id", s.DeleteBook, authMiddleware)

	audiobooks := app.Group("/api/audiobooks")

	audiobooks.Get("/", s.GetAudiobooks)
	audiobooks.Get("/:id", s.GetAudiobook)
}
