package listing

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/shelfswap/shelfswap-api/internal/config"
	"github.com/shelfswap/shelfswap-api/internal/db"
	"github.com/shelfswap/shelfswap-api/internal/models"
	"github.com/shelfswap/shelfswap-api/internal/storage"
	"github.com/shelfswap/shelfswap-api/internal/utils"
)

// ListingService exposes the exchange shelf over HTTP
type ListingService struct {
	cfg        *config.Config
	store      storage.ListingStore
	jwtService *utils.JWTService
}

// NewListingService creates a ListingService over the given store
func NewListingService(cfg *config.Config, store storage.ListingStore) *ListingService {
	return &ListingService{
		cfg:        cfg,
		store:      store,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// CreateListing uploads a book for exchange
func (s *ListingService) CreateListing(c fiber.Ctx) error {
	userUUID, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var requestData struct {
		Title     string  `json:"title"`
		Author    string  `json:"author"`
		Summary   string  `json:"summary"`
		Condition string  `json:"condition"`
		Price     float64 `json:"price"`
		Terms     string  `json:"terms"`
		Image     string  `json:"image"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Error decoding request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request data"})
	}

	if requestData.Title == "" || requestData.Author == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title and author are required"})
	}
	if !models.ValidCondition(requestData.Condition) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Condition must be new or old"})
	}
	if requestData.Price <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Price is required"})
	}

	listing := &models.Listing{
		ID:        uuid.New(),
		OwnerID:   userUUID,
		Title:     requestData.Title,
		Author:    requestData.Author,
		Summary:   requestData.Summary,
		Condition: requestData.Condition,
		Price:     requestData.Price,
		Terms:     requestData.Terms,
		Image:     requestData.Image,
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	if err := s.store.CreateListing(ctx, listing); err != nil {
		log.Printf("Error creating listing: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error uploading book"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Book uploaded successfully",
		"book":    listing,
	})
}

// GetAvailableListings returns available books excluding the caller's own
func (s *ListingService) GetAvailableListings(c fiber.Ctx) error {
	userUUID, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	listings, err := s.store.ListAvailableExcluding(ctx, userUUID)
	if err != nil {
		log.Printf("Error fetching listings: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error fetching books"})
	}

	return c.JSON(listings)
}

// GetMyListings returns all of the caller's books regardless of status
func (s *ListingService) GetMyListings(c fiber.Ctx) error {
	userUUID, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	listings, err := s.store.ListByOwner(ctx, userUUID)
	if err != nil {
		log.Printf("Error fetching user books: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error fetching user books"})
	}

	return c.JSON(listings)
}

// UpdateListing edits an owned listing
func (s *ListingService) UpdateListing(c fiber.Ctx) error {
	listingUUID, userUUID, err := listingAndCaller(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var upd models.ListingUpdate
	if err := c.Bind().Body(&upd); err != nil {
		log.Printf("Error decoding request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request data"})
	}

	if upd.Title == "" || upd.Author == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title and author are required"})
	}
	if !models.ValidCondition(upd.Condition) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Condition must be new or old"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	listing, err := s.store.UpdateListing(ctx, listingUUID, userUUID, upd)
	if err != nil {
		return s.listingError(c, err, "Error updating book")
	}

	return c.JSON(fiber.Map{
		"message": "Book updated successfully",
		"book":    listing,
	})
}

// MarkExchanged flips an owned listing to exchanged; irreversible
func (s *ListingService) MarkExchanged(c fiber.Ctx) error {
	listingUUID, userUUID, err := listingAndCaller(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	listing, err := s.store.MarkExchanged(ctx, listingUUID, userUUID)
	if err != nil {
		return s.listingError(c, err, "Error marking book as exchanged")
	}

	return c.JSON(fiber.Map{
		"message": "Book marked as exchanged",
		"book":    listing,
	})
}

// DeleteListing removes an owned listing
func (s *ListingService) DeleteListing(c fiber.Ctx) error {
	listingUUID, userUUID, err := listingAndCaller(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	listing, err := s.store.DeleteListing(ctx, listingUUID, userUUID)
	if err != nil {
		return s.listingError(c, err, "Error deleting book")
	}

	return c.JSON(fiber.Map{
		"message": "Book deleted successfully",
		"book":    listing,
	})
}

// listingError maps store errors to responses. ErrNotFound covers both a
// missing listing and someone else's listing; the message never tells
// them apart.
func (s *ListingService) listingError(c fiber.Ctx, err error, serverMsg string) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Book not found or unauthorized access"})
	case errors.Is(err, storage.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Book is no longer available"})
	default:
		log.Printf("%s: %v", serverMsg, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": serverMsg})
	}
}

func callerID(c fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Locals("userID").(string))
}

func listingAndCaller(c fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	listingUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.New("Invalid listing ID")
	}
	userUUID, err := callerID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.New("Invalid user ID")
	}
	return listingUUID, userUUID, nil
}
