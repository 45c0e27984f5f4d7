package listing

import (
	"github.com/gofiber/fiber/v3"

	"github.com/shelfswap/shelfswap-api/internal/middleware"
)

// SetupRoutes registers the exchange shelf routes. All of them require
// authentication: availability is always computed relative to the caller.
func (s *ListingService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/exchange/books")

	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Post("/upload", s.CreateListing)
	api.Get("/", s.GetAvailableListings)
	api.Get("/my-books", s.GetMyListings)
	api.Put("/edit/:id", s.UpdateListing)
	api.Patch("/mark-exchanged/:id", s.MarkExchanged)
	api.Delete("/delete/:id", s.DeleteListing)
}
