package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/fathima-sithara/chat-backend/internal/auth"
)

const testSecret = "test-secret"

func signToken(t *testing.T, sub string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func authApp(t *testing.T) *fiber.App {
	t.Helper()
	v, err := auth.NewValidator("HS256", "", testSecret)
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	app := fiber.New()
	app.Get("/whoami", JWTAuth(v), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_id").(string))
	})
	return app
}

func TestJWTAuthBearerHeader(t *testing.T) {
	app := authApp(t)
	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "alice"))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	buf := make([]byte, 16)
	n, _ := resp.Body.Read(buf)
	if got := string(buf[:n]); got != "alice" {
		t.Fatalf("identity = %q", got)
	}
}

func TestJWTAuthQueryToken(t *testing.T) {
	app := authApp(t)
	req := httptest.NewRequest("GET", "/whoami?token="+signToken(t, "bob"), nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestJWTAuthRejectsMissingAndBadTokens(t *testing.T) {
	app := authApp(t)

	req := httptest.NewRequest("GET", "/whoami", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing token: status %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("garbage token: status %d", resp.StatusCode)
	}
}
