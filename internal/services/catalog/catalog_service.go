package catalog

import (
	"errors"
	"log"
	"strconv"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/shelfswap/shelfswap-api/internal/config"
	"github.com/shelfswap/shelfswap-api/internal/db"
	"github.com/shelfswap/shelfswap-api/internal/models"
	"github.com/shelfswap/shelfswap-api/internal/storage"
	"github.com/shelfswap/shelfswap-api/internal/utils"
)

// CatalogService exposes the book and audiobook catalog over HTTP
type CatalogService struct {
	cfg        *config.Config
	store      storage.CatalogStore
	cld        *cloudinary.Cloudinary
	jwtService *utils.JWTService
}

// NewCatalogService creates a CatalogService. The Cloudinary client is
// optional; without it, covers are taken from the image field as-is.
func NewCatalogService(cfg *config.Config, store storage.CatalogStore) *CatalogService {
	s := &CatalogService{
		cfg:        cfg,
		store:      store,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}

	cc := cfg.CloudinaryConfig
	if cc.CloudName != "" && cc.APIKey != "" && cc.APISecret != "" {
		cld, err := cloudinary.NewFromParams(cc.CloudName, cc.APIKey, cc.APISecret)
		if err != nil {
			log.Printf("Cloudinary init failed, cover uploads disabled: %v", err)
		} else {
			s.cld = cld
		}
	}

	return s
}

// GetBooks returns catalog books with optional search and genre filters
func (s *CatalogService) GetBooks(c fiber.Ctx) error {
	search := c.Query("search")
	genre := c.Query("genre")

	ctx, cancel := db.GetContext()
	defer cancel()

	books, err := s.store.ListBooks(ctx, search, genre)
	if err != nil {
		log.Printf("Error fetching books: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch books"})
	}

	return c.JSON(books)
}

// GetBook returns a single book by id
func (s *CatalogService) GetBook(c fiber.Ctx) error {
	bookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid book ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Book not found"})
		}
		log.Printf("Error fetching book: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error fetching book details"})
	}

	return c.JSON(book)
}

// CreateBook adds a catalog book, uploading the cover to Cloudinary when
// a multipart image is attached
func (s *CatalogService) CreateBook(c fiber.Ctx) error {
	book := &models.Book{
		ID:      uuid.New(),
		Title:   c.FormValue("title"),
		Author:  c.FormValue("author"),
		Genre:   c.FormValue("genre"),
		Summary: c.FormValue("summary"),
	}

	if book.Title == "" || book.Author == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title and author are required"})
	}

	if price := c.FormValue("price"); price != "" {
		parsed, err := strconv.ParseFloat(price, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid price"})
		}
		book.Price = parsed
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	if fileHeader, err := c.FormFile("image"); err == nil && s.cld != nil {
		file, err := fileHeader.Open()
		if err != nil {
			log.Printf("Error opening uploaded cover: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid image upload"})
		}
		defer file.Close()

		resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
			Folder: s.cfg.CloudinaryConfig.UploadFolder + "/books",
		})
		if err != nil {
			log.Printf("Error uploading cover to Cloudinary: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload cover image"})
		}
		book.Image = resp.SecureURL
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		log.Printf("Error saving book: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save book"})
	}

	return c.Status(fiber.StatusCreated).JSON(book)
}

// DeleteBook removes a catalog book by id
func (s *CatalogService) DeleteBook(c fiber.Ctx) error {
	bookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid book ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	book, err := s.store.DeleteBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Book not found"})
		}
		log.Printf("Error deleting book: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete book"})
	}

	return c.JSON(fiber.Map{
		"message": "Book deleted successfully",
		"book":    book,
	})
}

// GetAudiobooks returns the audiobook catalog
func (s *CatalogService) GetAudiobooks(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	audiobooks, err := s.store.ListAudiobooks(ctx)
	if err != nil {
		log.Printf("Error fetching audiobooks: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error fetching audiobooks"})
	}

	return c.JSON(audiobooks)
}

// GetAudiobook returns a single audiobook with its chapters
func (s *CatalogService) GetAudiobook(c fiber.Ctx) error {
	audiobookID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid audiobook ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	audiobook, err := s.store.GetAudiobook(ctx, audiobookID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Audiobook not found"})
		}
		log.Printf("Error fetching audiobook: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error fetching audiobook details"})
	}

	return c.JSON(audiobook)
}
