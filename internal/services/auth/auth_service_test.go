package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"

	"github.com/shelfswap/shelfswap-api/internal/config"
	"github.com/shelfswap/shelfswap-api/internal/storage/memory"
)

func newTestApp() *fiber.App {
	cfg := &config.Config{JWTSecret: "test-secret"}
	service := NewAuthService(cfg, memory.NewStore())

	app := fiber.New()
	service.SetupRoutes(app)
	return app
}

func postJSON(t *testing.T, app *fiber.App, target string, body map[string]string) *http.Response {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestRegisterLoginProfile(t *testing.T) {
	app := newTestApp()

	resp := postJSON(t, app, "/api/auth/register", map[string]string{
		"full_name": "Alice",
		"email":     "alice@example.com",
		"password":  "secret123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", resp.StatusCode)
	}

	resp = postJSON(t, app, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}

	var login struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if login.Token == "" {
		t.Fatal("login returned empty token")
	}
	if login.User.Email != "alice@example.com" {
		t.Fatalf("login user email = %q", login.User.Email)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	profileResp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if profileResp.StatusCode != http.StatusOK {
		t.Fatalf("profile status = %d, want 200", profileResp.StatusCode)
	}

	var profile struct {
		User struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		} `json:"user"`
	}
	if err := json.NewDecoder(profileResp.Body).Decode(&profile); err != nil {
		t.Fatalf("decoding profile response: %v", err)
	}
	if profile.User.Email != "alice@example.com" {
		t.Fatalf("profile email = %q", profile.User.Email)
	}
	if profile.User.Password != "" {
		t.Fatal("profile response leaked the password hash")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := newTestApp()

	body := map[string]string{
		"full_name": "Alice",
		"email":     "alice@example.com",
		"password":  "secret123",
	}
	if resp := postJSON(t, app, "/api/auth/register", body); resp.StatusCode != http.StatusCreated {
		t.Fatalf("first register status = %d, want 201", resp.StatusCode)
	}
	if resp := postJSON(t, app, "/api/auth/register", body); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate register status = %d, want 400", resp.StatusCode)
	}
}

func TestLoginFailures(t *testing.T) {
	app := newTestApp()

	postJSON(t, app, "/api/auth/register", map[string]string{
		"full_name": "Alice",
		"email":     "alice@example.com",
		"password":  "secret123",
	})

	resp := postJSON(t, app, "/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "secret123",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown user login status = %d, want 404", resp.StatusCode)
	}

	resp = postJSON(t, app, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password login status = %d, want 401", resp.StatusCode)
	}
}

func TestProfileRequiresToken(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("profile without token status = %d, want 401", resp.StatusCode)
	}
}
