package cloudinary

import (
	"github.com/gofiber/fiber/v3"

	"github.com/shelfswap/shelfswap-api/internal/middleware"
)

// SetupRoutes registers the upload-signature route
func (s *CloudinaryService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(s.jwtService))

	protected.Get("/upload/params", s.GenerateUploadParams)
}
