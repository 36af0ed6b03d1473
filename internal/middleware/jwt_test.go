package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/moviehub/movie-catalog/internal/utils"
)

func issue(t *testing.T, secret, role string) string {
	t.Helper()
	at, err := utils.NewAccessToken(secret, 7, role, 5)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return at.Token
}

func invoke(t *testing.T, mw echo.MiddlewareFunc, authz string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if err := h(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	return rec, c
}

func TestJWTAuth(t *testing.T) {
	mw := JWTAuth("s3cret")

	rec, c := invoke(t, mw, "Bearer "+issue(t, "s3cret", "user"))
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: %d, want 200", rec.Code)
	}
	if c.Get("role") != "user" {
		t.Errorf("role = %v, want user", c.Get("role"))
	}
	if sub, _ := c.Get("user_id").(float64); uint64(sub) != 7 {
		t.Errorf("user_id = %v, want 7", c.Get("user_id"))
	}

	if rec, _ := invoke(t, mw, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("missing header: %d, want 401", rec.Code)
	}
	if rec, _ := invoke(t, mw, "Bearer "+issue(t, "other", "user")); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong secret: %d, want 401", rec.Code)
	}
	if rec, _ := invoke(t, mw, "Bearer garbage"); rec.Code != http.StatusUnauthorized {
		t.Errorf("malformed token: %d, want 401", rec.Code)
	}
}

func TestOptionalJWT(t *testing.T) {
	mw := OptionalJWT("s3cret")

	// Anonymous requests pass through without claims.
	rec, c := invoke(t, mw, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous: %d, want 200", rec.Code)
	}
	if c.Get("user_id") != nil {
		t.Error("anonymous request must not carry a user_id")
	}

	// Invalid tokens are ignored rather than rejected.
	rec, c = invoke(t, mw, "Bearer garbage")
	if rec.Code != http.StatusOK {
		t.Fatalf("garbage token: %d, want 200", rec.Code)
	}
	if c.Get("user_id") != nil {
		t.Error("invalid token must not set claims")
	}

	// Valid tokens set claims as JWTAuth would.
	rec, c = invoke(t, mw, "Bearer "+issue(t, "s3cret", "admin"))
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: %d, want 200", rec.Code)
	}
	if c.Get("role") != "admin" {
		t.Errorf("role = %v, want admin", c.Get("role"))
	}
}
