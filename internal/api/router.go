package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/tesloshop/catalog-api/docs"
	"github.com/tesloshop/catalog-api/internal/api/handler"
	"github.com/tesloshop/catalog-api/internal/api/middleware"
	"github.com/tesloshop/catalog-api/internal/core/domain"
	"github.com/tesloshop/catalog-api/internal/core/service"
)

// Deps bundles everything the router wires together.
type Deps struct {
	Auth     *handler.AuthHandler
	Products *handler.ProductHandler
	Files    *handler.FilesHandler
	Seed     *handler.SeedHandler
	Tokens   *service.TokenService
	Resolver middleware.PrincipalResolver
	Mongo    *mongo.Database
	Redis    *redis.Client
	Logger   zerolog.Logger
}

// route pairs a handler with its typed access policy. The policy is fixed at
// registration time and consulted directly by the guard at request time.
type route struct {
	method  string
	path    string
	handler echo.HandlerFunc
	policy  middleware.Policy
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("catalog"))

	authenticate := middleware.Authenticate(deps.Tokens, deps.Resolver)

	routes := []route{
		// auth
		{http.MethodPost, "/api/auth/register", deps.Auth.Register, middleware.NoPolicy},
		{http.MethodPost, "/api/auth/login", deps.Auth.Login, middleware.NoPolicy},
		{http.MethodGet, "/api/auth/check", deps.Auth.Check, middleware.AuthOnly()},

		// products
		{http.MethodGet, "/api/products", deps.Products.List, middleware.NoPolicy},
		{http.MethodGet, "/api/products/:term", deps.Products.Get, middleware.NoPolicy},
		{http.MethodPost, "/api/products", deps.Products.Create, middleware.RoleChecked(domain.RoleAdmin)},
		{http.MethodPatch, "/api/products/:id", deps.Products.Update, middleware.RoleChecked(domain.RoleAdmin)},
		{http.MethodDelete, "/api/products/:id", deps.Products.Delete, middleware.RoleChecked(domain.RoleAdmin)},

		// files
		{http.MethodPost, "/api/files/product", deps.Files.Upload, middleware.AuthOnly()},
		{http.MethodGet, "/api/files/product/:imageName", deps.Files.Get, middleware.NoPolicy},

		// seed
		{http.MethodPost, "/api/seed", deps.Seed.Run, middleware.RoleChecked(domain.RoleAdmin, domain.RoleSuperUser)},
	}

	for _, r := range routes {
		if r.policy.RequiresAuth() {
			e.Add(r.method, r.path, r.handler, authenticate, middleware.Guard(r.policy))
		} else {
			e.Add(r.method, r.path, r.handler)
		}
	}

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
