package exchange

import (
	"github.com/gofiber/fiber/v3"

	"github.com/shelfswap/shelfswap-api/internal/middleware"
)

// SetupRoutes registers the exchange request routes
func (s *ExchangeService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/exchange/requests")

	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Post("/", s.CreateRequest)
	api.Get("/", s.GetMyRequests)
	api.Put("/:id/respond", s.RespondToRequest)
	api.Post("/:id/complete", s.CompleteRequest)
}
