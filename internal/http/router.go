// Package httpapi mounts the adoption API on a Gin engine: the middleware
// chain, ops endpoints (/health, /metrics, /swagger) and the versioned
// routes for animals, the catalog and adoption requests.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-adoption-backend/docs"
	"github.com/tbourn/go-adoption-backend/internal/config"
	"github.com/tbourn/go-adoption-backend/internal/http/handlers"
	"github.com/tbourn/go-adoption-backend/internal/http/middleware"
	"github.com/tbourn/go-adoption-backend/internal/lock"
	"github.com/tbourn/go-adoption-backend/internal/repo"
	"github.com/tbourn/go-adoption-backend/internal/services"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// opsPaths are probe and scrape endpoints: not rate limited, not measured,
// and only logged when they fail.
var opsPaths = []string{"/health", "/metrics"}

var (
	corsMethods      = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsAllowHeaders = []string{
		"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match",
		middleware.HeaderUserID, middleware.HeaderUserRole, middleware.HeaderIdempotencyKey,
	}
	corsExposeHeaders = []string{
		"X-Request-ID", "Content-Length", "ETag", "Retry-After", handlers.HeaderIdempotencyReplayed,
	}
)

// Services bundles the application services behind the handlers.
type Services struct {
	Animals   *services.AnimalService
	Adoptions *services.AdoptionService
	Catalog   *services.CatalogService
}

// NewServices builds the services on db. The animal and adoption services
// share locks so deleting an animal and deciding one of its requests are
// serialized.
func NewServices(db *gorm.DB, locks lock.Locker, cfg config.Config) Services {
	animals := services.NewAnimalService(db, locks)
	if cfg.SearchDefaultPageSize > 0 {
		animals.DefaultPageSize = cfg.SearchDefaultPageSize
	}
	if cfg.SearchMaxPageSize > 0 {
		animals.MaxPageSize = cfg.SearchMaxPageSize
	}

	adoptions := services.NewAdoptionService(db, locks)
	adoptions.NoteMaxRunes = cfg.NoteMaxRunes
	adoptions.IdempotencyTTL = cfg.IdempotencyTTL

	return Services{
		Animals:   animals,
		Adoptions: adoptions,
		Catalog:   services.NewCatalogService(db),
	}
}

// RegisterRoutes installs the middleware chain and every route on r.
//
// Order matters: tracing and the request id come first so everything after
// can log them; identity precedes logging and the rate limiter, which key
// on the user; the idempotency check runs before the limiter so replays are
// not charged.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, locks lock.Locker, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	apiBase := cfg.APIBasePath

	r.Use(
		otelgin.Middleware(cfg.OTEL.ServiceName),
		middleware.RequestID(),
		middleware.Identity(),
		middleware.RedactingLogger(middleware.RedactOptions{
			MaskHeaders: []string{"X-API-Key"},
			QuietPaths:  opsPaths,
		}),
		middleware.Recovery(),
		limitBody(maxBodyBytes),
		// promhttp negotiates its own encoding
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})),
		middleware.Metrics(opsPaths...),
	)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	createPath := strings.TrimSuffix(apiBase, "/") + "/adoption-requests"
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			Scope: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost && c.FullPath() == createPath {
					return services.ScopeCreateRequest
				}
				return ""
			},
		},
		func(ctx context.Context, userID uint, scope, key string, now time.Time) (bool, error) {
			_, err := repo.GetIdempotency(ctx, db, repo.IdemKey{UserID: userID, Scope: scope, Key: key}, now)
			if errors.Is(err, repo.ErrNotFound) {
				return false, nil
			}
			return err == nil, err
		},
	))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP(), opsPaths...)
	r.Use(rl.Handler())
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:      cfg.Security.EnableHSTS,
		HSTSMaxAge:      cfg.Security.HSTSMaxAge,
		EnablePolicy:    true,
		PrivateForUsers: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	svc := NewServices(db, locks, cfg)
	h := handlers.New(svc.Animals, svc.Adoptions, svc.Catalog)

	api := groupWithPrefix(r, apiBase)
	{
		api.GET("/animals", h.SearchAnimals)
		api.POST("/animals", h.CreateAnimal)
		api.GET("/animals/by-owner/:ownerId", h.ListAnimalsByOwner)
		api.GET("/animals/:id", h.GetAnimal)
		api.PATCH("/animals/:id", h.UpdateAnimal)
		api.DELETE("/animals/:id", h.DeleteAnimal)

		api.GET("/categories", h.ListCategories)
		api.POST("/categories", h.CreateCategory)
		api.GET("/categories/:id/breeds", h.ListBreeds)
		api.POST("/categories/:id/breeds", h.CreateBreed)

		// Static segments before :id.
		api.POST("/adoption-requests", h.CreateAdoptionRequest)
		api.GET("/adoption-requests", h.ListAdoptionRequests)
		api.GET("/adoption-requests/mine", h.ListMyAdoptionRequests)
		api.GET("/adoption-requests/for-my-animals", h.ListRequestsForMyAnimals)
		api.GET("/adoption-requests/for-my-animals/:animalId", h.ListRequestsForMyAnimal)
		api.GET("/adoption-requests/animal/:animalId", h.ListRequestsByAnimal)
		api.GET("/adoption-requests/animal/:animalId/count", h.CountRequestsByAnimal)
		api.GET("/adoption-requests/:id", h.GetAdoptionRequest)
		api.PUT("/adoption-requests/:id/status", h.DecideAdoptionRequest)
		api.PUT("/adoption-requests/:id/note", h.UpdateAdoptionRequestNote)
		api.DELETE("/adoption-requests/:id", h.DeleteAdoptionRequest)
	}
}

// corsMiddleware allows every origin when none is configured, without
// credentials. With an allowlist it echoes a listed Origin itself as well, so
// the header is present even on requests gin-contrib/cors does not treat
// as CORS.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods:  corsMethods,
		AllowHeaders:  corsAllowHeaders,
		ExposeHeaders: corsExposeHeaders,
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(cc),
		}
	}

	cc.AllowOrigins = origins
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					c.Writer.Header().Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(cc),
	}
}

// limitBody caps request bodies at maxBytes; reads past it fail.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
