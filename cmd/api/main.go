package main

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shelfswap/shelfswap-api/internal/config"
	"github.com/shelfswap/shelfswap-api/internal/db"
	"github.com/shelfswap/shelfswap-api/internal/exchange"
	"github.com/shelfswap/shelfswap-api/internal/services/auth"
	"github.com/shelfswap/shelfswap-api/internal/services/catalog"
	"github.com/shelfswap/shelfswap-api/internal/services/cloudinary"
	exchangesvc "github.com/shelfswap/shelfswap-api/internal/services/exchange"
	"github.com/shelfswap/shelfswap-api/internal/services/listing"
	"github.com/shelfswap/shelfswap-api/internal/services/payment"
	"github.com/shelfswap/shelfswap-api/internal/storage/postgres"
)

func main() {
	cfg := config.LoadConfig()

	pool, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	store := postgres.NewStore(pool)

	app := fiber.New(fiber.Config{
		AppName:      "ShelfSwap API",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	authService := auth.NewAuthService(cfg, store)
	catalogService := catalog.NewCatalogService(cfg, store)
	listingService := listing.NewListingService(cfg, store)
	cloudinaryService := cloudinary.NewCloudinaryService(cfg)
	paymentService := payment.NewPaymentService(cfg, store)

	engine := exchange.NewEngine(store, store)
	exchangeService := exchangesvc.NewExchangeService(cfg, engine)

	authService.SetupRoutes(app)
	catalogService.SetupRoutes(app)
	listingService.SetupRoutes(app)
	exchangeService.SetupRoutes(app)
	cloudinaryService.SetupRoutes(app)
	paymentService.SetupRoutes(app)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	log.Printf("ShelfSwap API listening on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// errorHandler renders unhandled errors as JSON
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
