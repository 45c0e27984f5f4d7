package cloudinary

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/shelfswap/shelfswap-api/internal/config"
	"github.com/shelfswap/shelfswap-api/internal/utils"
)

// CloudinaryService issues signed parameters for direct browser uploads
// of listing images
type CloudinaryService struct {
	cfg          *config.Config
	uploadFolder string
	jwtService   *utils.JWTService
}

// NewCloudinaryService creates a new CloudinaryService
func NewCloudinaryService(cfg *config.Config) *CloudinaryService {
	return &CloudinaryService{
		cfg:          cfg,
		uploadFolder: cfg.CloudinaryConfig.UploadFolder,
		jwtService:   utils.NewJWTService(cfg.JWTSecret),
	}
}

// GenerateUploadParams returns a timestamped signature the client attaches
// to its upload request
func (s *CloudinaryService) GenerateUploadParams(c fiber.Ctx) error {
	listingID := c.Query("listing_id")
	if listingID == "" {
		listingID = uuid.New().String()
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	params := url.Values{}
	params.Set("timestamp", timestamp)
	params.Set("folder", s.uploadFolder)

	signature, err := api.SignParameters(params, s.cfg.CloudinaryConfig.APISecret)
	if err != nil {
		log.Printf("Error signing upload params: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to sign upload parameters"})
	}

	return c.JSON(fiber.Map{
		"timestamp":  timestamp,
		"signature":  signature,
		"folder":     s.uploadFolder,
		"api_key":    s.cfg.CloudinaryConfig.APIKey,
		"cloud_name": s.cfg.CloudinaryConfig.CloudName,
		"listing_id": listingID,
	})
}
