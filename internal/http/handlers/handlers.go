// Package handlers provides HTTP handler implementations for the public API.
//
// This file declares the service contracts the handlers consume, the
// Handlers type that groups all endpoints, and the helpers shared by them
// (caller identity, path ids, pagination metadata).
//
// Handlers are transport-thin: they validate and normalize input, build an
// explicit services.Actor from the request identity, delegate to the services
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-adoption-backend/internal/domain"
	"github.com/tbourn/go-adoption-backend/internal/http/middleware"
	"github.com/tbourn/go-adoption-backend/internal/repo"
	"github.com/tbourn/go-adoption-backend/internal/services"
	"github.com/tbourn/go-adoption-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// AnimalService defines listing management and search consumed by handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AnimalService interface {
	Create(ctx context.Context, actor services.Actor, in services.AnimalInput) (*repo.AnimalRow, error)
	Get(ctx context.Context, id uint) (*repo.AnimalRow, error)
	Update(ctx context.Context, actor services.Actor, id uint, p services.AnimalPatch) (*repo.AnimalRow, error)
	Delete(ctx context.Context, actor services.Actor, id uint) error
	ListByOwner(ctx context.Context, ownerID uint) ([]repo.AnimalRow, error)
	Search(ctx context.Context, q services.SearchQuery) (services.AnimalPage, error)
	// Age derives the age fields shown with every animal.
	Age(a domain.Animal) (domain.Age, error)
}

// AdoptionService defines the adoption request lifecycle and its queries.
type AdoptionService interface {
	CreateIdempotent(ctx context.Context, actor services.Actor, animalID uint, note, key string) (*domain.AdoptionRequest, bool, error)
	Decide(ctx context.Context, actor services.Actor, requestID uint, decision domain.RequestStatus) (*domain.AdoptionRequest, error)
	UpdateNote(ctx context.Context, actor services.Actor, requestID uint, note string) (*domain.AdoptionRequest, error)
	Delete(ctx context.Context, actor services.Actor, requestID uint) error
	Get(ctx context.Context, actor services.Actor, requestID uint) (*repo.RequestRow, error)
	ListAll(ctx context.Context, actor services.Actor) ([]repo.RequestRow, error)
	ListByAnimal(ctx context.Context, animalID uint) ([]repo.RequestRow, error)
	ListByRequester(ctx context.Context, requesterID uint) ([]repo.RequestRow, error)
	ListForOwner(ctx context.Context, ownerID uint) ([]repo.RequestRow, error)
	ListForOwnerAnimal(ctx context.Context, ownerID, animalID uint) ([]repo.RequestRow, error)
	CountByAnimalAndStatus(ctx context.Context, animalID uint, status domain.RequestStatus) (int64, error)
	RequesterStats(ctx context.Context, requesterID uint) (int64, *time.Time, error)
	OwnerStats(ctx context.Context, ownerID uint) (int64, *time.Time, error)
}

// CatalogService defines the category and breed lookups.
type CatalogService interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	Breeds(ctx context.Context, categoryID uint) ([]domain.Breed, error)
	CreateCategory(ctx context.Context, actor services.Actor, name string) (*domain.Category, error)
	CreateBreed(ctx context.Context, actor services.Actor, categoryID uint, name string) (*domain.Breed, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for animals, adoption requests and the
// catalog.
type Handlers struct {
	animals   AnimalService
	adoptions AdoptionService
	catalog   CatalogService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(animals AnimalService, adoptions AdoptionService, catalog CatalogService) *Handlers {
	return &Handlers{animals: animals, adoptions: adoptions, catalog: catalog}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// actor builds the caller identity placed in the context by
// middleware.Identity. Anonymous callers get a zero UserID.
func actor(c *gin.Context) services.Actor {
	return services.Actor{
		UserID: middleware.UserID(c),
		Role:   domain.Role(strings.ToUpper(middleware.UserRole(c))),
	}
}

// requireUser returns the caller or aborts with 401 when anonymous.
func requireUser(c *gin.Context) (services.Actor, bool) {
	a := actor(c)
	if !a.Authenticated() {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "X-User-ID header required")
		return a, false
	}
	return a, true
}

// pathID parses a positive numeric path parameter or aborts with 400.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}
