package payment

import (
	"github.com/gofiber/fiber/v3"

	"github.com/shelfswap/shelfswap-api/internal/middleware"
)

// SetupRoutes registers the payment routes. Initiation requires a logged-in
// user; the gateway callbacks arrive unauthenticated.
func (s *PaymentService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/esewa")

	api.Post("/initiate", s.InitiatePayment, middleware.AuthMiddleware(s.jwtService))
	api.Get("/payment-success", s.PaymentSuccess)
	api.Get("/payment-failure", s.PaymentFailure)
}
