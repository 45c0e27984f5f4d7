package listing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/shelfswap/shelfswap-api/internal/config"
	"github.com/shelfswap/shelfswap-api/internal/models"
	"github.com/shelfswap/shelfswap-api/internal/storage/memory"
	"github.com/shelfswap/shelfswap-api/internal/utils"
)

func newTestApp(t *testing.T) (*fiber.App, *memory.Store, *utils.JWTService) {
	t.Helper()
	cfg := &config.Config{JWTSecret: "test-secret"}
	store := memory.NewStore()
	service := NewListingService(cfg, store)

	app := fiber.New()
	service.SetupRoutes(app)
	return app, store, utils.NewJWTService(cfg.JWTSecret)
}

func authedRequest(t *testing.T, jwtService *utils.JWTService, userID uuid.UUID, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := jwtService.GenerateToken(userID.String())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestCreateListingRequiresAuth(t *testing.T) {
	app, _, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/exchange/books/upload", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestCreateListingValidation(t *testing.T) {
	app, _, jwtService := newTestApp(t)
	userID := uuid.New()

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"author": "a", "condition": "old", "price": 100}},
		{"missing author", map[string]any{"title": "t", "condition": "old", "price": 100}},
		{"bad condition", map[string]any{"title": "t", "author": "a", "condition": "mint", "price": 100}},
		{"missing price", map[string]any{"title": "t", "author": "a", "condition": "old"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authedRequest(t, jwtService, userID, http.MethodPost, "/api/exchange/books/upload", tt.body)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestCreateAndListListings(t *testing.T) {
	app, store, jwtService := newTestApp(t)
	alice := uuid.New()
	bob := uuid.New()

	body := map[string]any{
		"title":     "Frankenstein",
		"author":    "Mary Shelley",
		"condition": "old",
		"price":     500,
		"terms":     "exchange only",
	}
	req := authedRequest(t, jwtService, alice, http.MethodPost, "/api/exchange/books/upload", body)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status = %d, want 201", resp.StatusCode)
	}

	// The owner's browse feed excludes their own book
	req = authedRequest(t, jwtService, alice, http.MethodGet, "/api/exchange/books/", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	var forOwner []models.Listing
	if err := json.NewDecoder(resp.Body).Decode(&forOwner); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(forOwner) != 0 {
		t.Fatalf("owner sees %d of their own books in browse, want 0", len(forOwner))
	}

	// Another user sees it
	req = authedRequest(t, jwtService, bob, http.MethodGet, "/api/exchange/books/", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	var forBob []models.Listing
	if err := json.NewDecoder(resp.Body).Decode(&forBob); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(forBob) != 1 || forBob[0].Title != "Frankenstein" {
		t.Fatalf("browse = %d books, want the uploaded one", len(forBob))
	}

	// And the owner sees it under my-books
	req = authedRequest(t, jwtService, alice, http.MethodGet, "/api/exchange/books/my-books", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	var mine []models.Listing
	if err := json.NewDecoder(resp.Body).Decode(&mine); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(mine) != 1 || mine[0].OwnerID != alice {
		t.Fatalf("my-books = %d books, want 1 owned by caller", len(mine))
	}

	listings, err := store.ListByOwner(context.Background(), alice)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(listings) != 1 || listings[0].Status != models.ListingStatusAvailable {
		t.Fatalf("stored listing = %+v, want one available listing", listings)
	}
}

func TestMutationsOnForeignListingReturn404(t *testing.T) {
	app, store, jwtService := newTestApp(t)
	alice := uuid.New()
	bob := uuid.New()

	l := &models.Listing{
		ID:        uuid.New(),
		OwnerID:   alice,
		Title:     "Frankenstein",
		Author:    "Mary Shelley",
		Condition: "old",
		Price:     500,
	}
	if err := store.CreateListing(context.Background(), l); err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	upd := map[string]any{"title": "Stolen", "author": "x", "condition": "new", "price": 1}
	calls := []struct {
		method string
		target string
		body   map[string]any
	}{
		{http.MethodPut, fmt.Sprintf("/api/exchange/books/edit/%s", l.ID), upd},
		{http.MethodPatch, fmt.Sprintf("/api/exchange/books/mark-exchanged/%s", l.ID), nil},
		{http.MethodDelete, fmt.Sprintf("/api/exchange/books/delete/%s", l.ID), nil},
	}
	for _, call := range calls {
		req := authedRequest(t, jwtService, bob, call.method, call.target, call.body)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s %s status = %d, want 404", call.method, call.target, resp.StatusCode)
		}
	}

	got, err := store.GetListing(context.Background(), l.ID)
	if err != nil {
		t.Fatalf("GetListing: %v", err)
	}
	if got.Title != "Frankenstein" {
		t.Fatalf("listing mutated by foreign caller: %+v", got)
	}
}

func TestMarkExchangedConflict(t *testing.T) {
	app, store, jwtService := newTestApp(t)
	alice := uuid.New()

	l := &models.Listing{
		ID:        uuid.New(),
		OwnerID:   alice,
		Title:     "Frankenstein",
		Author:    "Mary Shelley",
		Condition: "old",
		Price:     500,
	}
	if err := store.CreateListing(context.Background(), l); err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	target := fmt.Sprintf("/api/exchange/books/mark-exchanged/%s", l.ID)

	req := authedRequest(t, jwtService, alice, http.MethodPatch, target, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first mark-exchanged status = %d, want 200", resp.StatusCode)
	}

	req = authedRequest(t, jwtService, alice, http.MethodPatch, target, nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second mark-exchanged status = %d, want 409", resp.StatusCode)
	}
}
