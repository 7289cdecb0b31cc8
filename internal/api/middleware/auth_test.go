package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tesloshop/catalog-api/internal/core/domain"
	"github.com/tesloshop/catalog-api/internal/core/service"
)

type stubResolver struct {
	users map[string]*domain.User
}

func (r *stubResolver) Resolve(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func newAuthFixture() (*service.TokenService, *stubResolver) {
	tokens := service.NewTokenService("secret", time.Hour)
	resolver := &stubResolver{users: map[string]*domain.User{
		"user-1": {ID: "user-1", Email: "alice@example.com", FullName: "Alice", IsActive: true, Roles: []string{domain.RoleAdmin}},
	}}
	return tokens, resolver
}

func TestAuthenticate_ValidToken(t *testing.T) {
	e := echo.New()
	tokens, resolver := newAuthFixture()
	signed, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Authenticate(tokens, resolver)(func(c echo.Context) error {
		called = true
		principal := Principal(c)
		if principal == nil || principal.ID != "user-1" {
			t.Fatalf("principal not attached: %+v", principal)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	e := echo.New()
	tokens, resolver := newAuthFixture()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	handler := Authenticate(tokens, resolver)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthenticate_InvalidHeaderFormat(t *testing.T) {
	e := echo.New()
	tokens, resolver := newAuthFixture()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Token abc")
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Authenticate(tokens, resolver)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	e := echo.New()
	tokens, resolver := newAuthFixture()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Authenticate(tokens, resolver)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthenticate_PrincipalDeletedAfterIssuance(t *testing.T) {
	e := echo.New()
	tokens, resolver := newAuthFixture()
	signed, _ := tokens.Issue("user-gone")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Authenticate(tokens, resolver)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
