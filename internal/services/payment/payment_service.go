package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/shelfswap/shelfswap-api/internal/config"
	"github.com/shelfswap/shelfswap-api/internal/db"
	"github.com/shelfswap/shelfswap-api/internal/models"
	"github.com/shelfswap/shelfswap-api/internal/storage"
	"github.com/shelfswap/shelfswap-api/internal/utils"
)

// PaymentService builds signed eSewa redirect payloads and tracks the
// resulting transactions
type PaymentService struct {
	cfg        *config.Config
	store      storage.PaymentStore
	jwtService *utils.JWTService
}

// NewPaymentService creates a PaymentService over the given store
func NewPaymentService(cfg *config.Config, store storage.PaymentStore) *PaymentService {
	return &PaymentService{
		cfg:        cfg,
		store:      store,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GenerateSignature signs the message with HMAC-SHA256 and encodes it
// base64, the format eSewa verifies
func (s *PaymentService) GenerateSignature(message string) string {
	h := hmac.New(sha256.New, []byte(s.cfg.EsewaConfig.SecretKey))
	h.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// InitiatePayment signs the transaction fields and returns the gateway
// redirect URL. The signed message covers exactly the fields named in
// signed_field_names, in that order.
func (s *PaymentService) InitiatePayment(c fiber.Ctx) error {
	var requestData struct {
		TotalAmount     string `json:"total_amount"`
		TransactionUUID string `json:"transaction_uuid"`
		ProductCode     string `json:"product_code"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Error decoding request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request data"})
	}

	if requestData.TotalAmount == "" || requestData.TransactionUUID == "" || requestData.ProductCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "total_amount, transaction_uuid and product_code are required"})
	}

	message := fmt.Sprintf("total_amount=%s,transaction_uuid=%s,product_code=%s",
		requestData.TotalAmount, requestData.TransactionUUID, requestData.ProductCode)
	signature := s.GenerateSignature(message)

	amount, err := strconv.ParseFloat(requestData.TotalAmount, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid total_amount"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	payment := &models.Payment{
		ID:     uuid.New(),
		Token:  requestData.TransactionUUID,
		Amount: amount,
		Status: models.PaymentStatusInitiated,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		log.Printf("Error recording payment: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Payment initiation failed"})
	}

	params := url.Values{}
	params.Set("amount", requestData.TotalAmount)
	params.Set("tax_amount", "0")
	params.Set("total_amount", requestData.TotalAmount)
	params.Set("transaction_uuid", requestData.TransactionUUID)
	params.Set("product_code", requestData.ProductCode)
	params.Set("signed_field_names", "total_amount,transaction_uuid,product_code")
	params.Set("signature", signature)
	params.Set("success_url", s.cfg.EsewaConfig.SuccessURL)
	params.Set("failure_url", s.cfg.EsewaConfig.FailureURL)

	return c.JSON(fiber.Map{
		"payment_url": s.cfg.EsewaConfig.APIURL + "?" + params.Encode(),
	})
}

// PaymentSuccess handles the gateway success callback
func (s *PaymentService) PaymentSuccess(c fiber.Ctx) error {
	transactionUUID := c.Query("transaction_uuid")
	if transactionUUID != "" {
		ctx, cancel := db.GetContext()
		defer cancel()

		if err := s.store.UpdatePaymentStatus(ctx, transactionUUID, models.PaymentStatusCompleted); err != nil {
			log.Printf("Error updating payment %s: %v", transactionUUID, err)
		}
	}

	return c.Redirect().To(s.cfg.FrontendURL + "/payment-success?txn=" + url.QueryEscape(transactionUUID))
}

// PaymentFailure handles the gateway failure callback
func (s *PaymentService) PaymentFailure(c fiber.Ctx) error {
	transactionUUID := c.Query("transaction_uuid")
	if transactionUUID != "" {
		ctx, cancel := db.GetContext()
		defer cancel()

		if err := s.store.UpdatePaymentStatus(ctx, transactionUUID, models.PaymentStatusFailed); err != nil {
			log.Printf("Error updating payment %s: %v", transactionUUID, err)
		}
	}

	return c.Redirect().To(s.cfg.FrontendURL + "/payment-failed")
}
