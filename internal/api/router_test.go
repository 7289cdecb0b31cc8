package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tesloshop/catalog-api/internal/api/handler"
	"github.com/tesloshop/catalog-api/internal/core/domain"
	"github.com/tesloshop/catalog-api/internal/core/ports"
	"github.com/tesloshop/catalog-api/internal/core/service"
	"github.com/tesloshop/catalog-api/internal/infrastructure/storage"
)

type fixedResolver struct {
	users map[string]*domain.User
}

func (r *fixedResolver) Resolve(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

type fixedAuthService struct{}

func (fixedAuthService) Register(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
	return nil, domain.ErrDuplicateEmail
}
func (fixedAuthService) Login(context.Context, string, string) (*ports.AuthResult, error) {
	return nil, domain.ErrInvalidCredentials
}
func (fixedAuthService) Resolve(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}
func (fixedAuthService) Check(_ context.Context, id string) (*ports.AuthResult, error) {
	return &ports.AuthResult{
		User:  &domain.User{ID: id, Email: "a@b.com", Roles: []string{domain.RoleUser}},
		Token: "fresh",
	}, nil
}

type fixedProductService struct{}

func (fixedProductService) Create(_ context.Context, in ports.CreateProductInput) (*ports.ProductView, error) {
	return &ports.ProductView{ID: "p1", Title: in.Title}, nil
}
func (fixedProductService) List(context.Context, int, int) ([]ports.ProductView, error) {
	return []ports.ProductView{}, nil
}
func (fixedProductService) FindOne(context.Context, string) (*ports.ProductView, error) {
	return nil, domain.ErrProductNotFound
}
func (fixedProductService) Update(context.Context, string, ports.UpdateProductInput) (*ports.ProductView, error) {
	return nil, domain.ErrProductNotFound
}
func (fixedProductService) Remove(context.Context, string) error { return nil }
func (fixedProductService) RemoveAll(context.Context) error      { return nil }

type noopSeed struct{}

func (noopSeed) Run(context.Context) error { return nil }

var (
	routerOnce sync.Once
	testRouter *echo.Echo
	testTokens *service.TokenService
)

// the router registers prometheus collectors with the default registry, so
// it is built once per test process
func router(t *testing.T) (*echo.Echo, *service.TokenService) {
	t.Helper()
	routerOnce.Do(func() {
		testTokens = service.NewTokenService("router-test-secret", time.Hour)
		resolver := &fixedResolver{users: map[string]*domain.User{
			"admin-1": {ID: "admin-1", FullName: "Ada Admin", IsActive: true, Roles: []string{domain.RoleAdmin}},
			"user-1":  {ID: "user-1", FullName: "Uma User", IsActive: true, Roles: []string{domain.RoleUser}},
		}}
		store, err := storage.NewDisk(os.TempDir())
		if err != nil {
			t.Fatalf("disk store: %v", err)
		}
		testRouter = NewRouter(Deps{
			Auth:     handler.NewAuthHandler(fixedAuthService{}),
			Products: handler.NewProductHandler(fixedProductService{}),
			Files:    handler.NewFilesHandler(store, "http://localhost:3000"),
			Seed:     handler.NewSeedHandler(noopSeed{}),
			Tokens:   testTokens,
			Resolver: resolver,
			Logger:   zerolog.Nop(),
		})
	})
	return testRouter, testTokens
}

func doJSON(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_PublicRouteNeedsNoToken(t *testing.T) {
	e, _ := router(t)
	rec := doJSON(e, http.MethodGet, "/api/products", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_ProtectedRouteWithoutToken(t *testing.T) {
	e, _ := router(t)
	rec := doJSON(e, http.MethodGet, "/api/auth/check", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouter_AuthOnlyWithToken(t *testing.T) {
	e, tokens := router(t)
	token, _ := tokens.Issue("user-1")
	rec := doJSON(e, http.MethodGet, "/api/auth/check", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_RoleCheckedDeniesPlainUser(t *testing.T) {
	e, tokens := router(t)
	token, _ := tokens.Issue("user-1")
	rec := doJSON(e, http.MethodPost, "/api/products", token,
		`{"title":"Shirt","sizes":["M"],"gender":"men"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	var body struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if !strings.Contains(body.Error, "UMA USER") {
		t.Fatalf("forbidden message missing principal name: %q", body.Error)
	}
}

func TestRouter_RoleCheckedAllowsAdmin(t *testing.T) {
	e, tokens := router(t)
	token, _ := tokens.Issue("admin-1")
	rec := doJSON(e, http.MethodPost, "/api/products", token,
		`{"title":"Shirt","sizes":["M"],"gender":"men"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_StaleTokenSubject(t *testing.T) {
	e, tokens := router(t)
	token, _ := tokens.Issue("deleted-user")
	rec := doJSON(e, http.MethodGet, "/api/auth/check", token, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deleted principal, got %d", rec.Code)
	}
}

func TestRouter_LoginFailureMapsTo401(t *testing.T) {
	e, _ := router(t)
	rec := doJSON(e, http.MethodPost, "/api/auth/login", "",
		`{"email":"a@b.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
