package exchange

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/shelfswap/shelfswap-api/internal/config"
	"github.com/shelfswap/shelfswap-api/internal/db"
	"github.com/shelfswap/shelfswap-api/internal/exchange"
	"github.com/shelfswap/shelfswap-api/internal/storage"
	"github.com/shelfswap/shelfswap-api/internal/utils"
)

// ExchangeService exposes the exchange request lifecycle over HTTP
type ExchangeService struct {
	cfg        *config.Config
	engine     *exchange.Engine
	jwtService *utils.JWTService
}

// NewExchangeService creates an ExchangeService over the given engine
func NewExchangeService(cfg *config.Config, engine *exchange.Engine) *ExchangeService {
	return &ExchangeService{
		cfg:        cfg,
		engine:     engine,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// CreateRequest proposes a swap of one of the caller's books for another
// user's available book
func (s *ExchangeService) CreateRequest(c fiber.Ctx) error {
	requesterID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var requestData struct {
		RequestedBookID string `json:"requested_book_id"`
		OfferedBookID   string `json:"offered_book_id"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Error decoding request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request data"})
	}

	if requestData.RequestedBookID == "" || requestData.OfferedBookID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Both book IDs are required"})
	}

	requestedID, err := uuid.Parse(requestData.RequestedBookID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid requested book ID"})
	}

	offeredID, err := uuid.Parse(requestData.OfferedBookID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid offered book ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	req, err := s.engine.CreateRequest(ctx, requesterID, requestedID, offeredID)
	if err != nil {
		return s.requestError(c, err, "Error creating exchange request")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Exchange request created",
		"request": req,
	})
}

// GetMyRequests lists the caller's requests, filtered by role
func (s *ExchangeService) GetMyRequests(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	role := c.Query("role", exchange.RoleAll) // requester, owner, all

	ctx, cancel := db.GetContext()
	defer cancel()

	requests, err := s.engine.ListForUser(ctx, userID, role)
	if err != nil {
		log.Printf("Error fetching exchange requests: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error fetching exchange requests"})
	}

	return c.JSON(fiber.Map{
		"requests": requests,
		"count":    len(requests),
	})
}

// RespondToRequest lets the owner accept or decline a pending request
func (s *ExchangeService) RespondToRequest(c fiber.Ctx) error {
	requestID, callerID, err := requestAndCaller(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var requestData struct {
		Decision string `json:"decision"` // accept, decline
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Error decoding request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request data"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	req, err := s.engine.Respond(ctx, requestID, callerID, exchange.Decision(requestData.Decision))
	if err != nil {
		return s.requestError(c, err, "Error updating exchange request")
	}

	return c.JSON(fiber.Map{
		"message": "Exchange request " + req.Status,
		"request": req,
	})
}

// CompleteRequest finalizes an accepted exchange; either participant may call
func (s *ExchangeService) CompleteRequest(c fiber.Ctx) error {
	requestID, callerID, err := requestAndCaller(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	req, err := s.engine.Complete(ctx, requestID, callerID)
	if err != nil {
		return s.requestError(c, err, "Error completing exchange request")
	}

	return c.JSON(fiber.Map{
		"message": "Exchange completed",
		"request": req,
	})
}

// requestError maps engine and store errors to HTTP responses
func (s *ExchangeService) requestError(c fiber.Ctx, err error, serverMsg string) error {
	switch {
	case errors.Is(err, exchange.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid exchange request"})
	case errors.Is(err, exchange.ErrInvalidDecision):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, exchange.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not allowed to modify this request"})
	case errors.Is(err, storage.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Exchange request not found"})
	case errors.Is(err, storage.ErrInvalidTransition):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Request is not in a state that allows this action"})
	case errors.Is(err, storage.ErrDuplicateRequest):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A pending request for these books already exists"})
	case errors.Is(err, storage.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "One of the books is no longer available"})
	default:
		log.Printf("%s: %v", serverMsg, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": serverMsg})
	}
}

func requestAndCaller(c fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.New("Invalid request ID")
	}
	callerID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.New("Invalid user ID")
	}
	return requestID, callerID, nil
}
