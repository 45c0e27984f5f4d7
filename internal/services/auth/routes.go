package auth

import (
	"github.com/gofiber/fiber/v3"

	"github.com/shelfswap/shelfswap-api/internal/middleware"
)

// SetupRoutes registers the auth routes
func (s *AuthService) SetupRoutes(app *fiber.App) {
	app.Post("/api/auth/register", s.Register)
	app.Post("/api/auth/login", s.Login)

	protected := app.Group("/api")
	protected.Use(middleware.AuthMiddleware(s.jwtService))

	protected.Get("/profile", s.Profile)
}
