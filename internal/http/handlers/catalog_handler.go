// Catalog HTTP handlers: categories and their breeds.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-adoption-backend/internal/domain"
)

// CreateCatalogEntryRequest is the JSON payload for adding a category or breed.
type CreateCatalogEntryRequest struct {
	Name string `json:"name" binding:"required" example:"Dog"`
}

// ListCategoriesResponse wraps the active categories.
type ListCategoriesResponse struct {
	Items []domain.Category `json:"items"`
}

// ListBreedsResponse wraps the active breeds of one category.
type ListBreedsResponse struct {
	Items []domain.Breed `json:"items"`
}

// ListCategories godoc
// @ID          listCategories
// @Summary     List categories
// @Tags        Catalog
// @Produce     json
// @Success     200  {object} handlers.ListCategoriesResponse
// @Router      /categories [get]
func (h *Handlers) ListCategories(c *gin.Context) {
	cats, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	ok(c, http.StatusOK, ListCategoriesResponse{Items: cats})
}

// ListBreeds godoc
// @ID          listBreeds
// @Summary     List the breeds of a category
// @Tags        Catalog
// @Produce     json
// @Param       id  path  int  true  "Category ID"  minimum(1)
// @Success     200  {object} handlers.ListBreedsResponse
// @Failure     404  {object} handlers.ErrorResponse "Category not found"
// @Router      /categories/{id}/breeds [get]
func (h *Handlers) ListBreeds(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	breeds, err := h.catalog.Breeds(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	if breeds == nil {
		breeds = []domain.Breed{}
	}
	ok(c, http.StatusOK, ListBreedsResponse{Items: breeds})
}

// CreateCategory godoc
// @ID          createCategory
// @Summary     Add a category
// @Description Administrators only.
// @Tags        Catalog
// @Accept      json
// @Produce     json
// @Param       X-User-ID    header  int     true  "Caller user ID"  example(1)
// @Param       X-User-Role  header  string  true  "Caller role"     example(ADMIN)
// @Param       body         body    handlers.CreateCatalogEntryRequest  true  "Category"
// @Success     201  {object} domain.Category
// @Failure     403  {object} handlers.ErrorResponse "Not an administrator"
// @Failure     409  {object} handlers.ErrorResponse "Name already exists"
// @Router      /categories [post]
func (h *Handlers) CreateCategory(c *gin.Context) {
	a, authed := requireUser(c)
	if !authed {
		return
	}
	var req CreateCatalogEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name required")
		return
	}
	cat, err := h.catalog.CreateCategory(c.Request.Context(), a, req.Name)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, cat)
}

// CreateBreed godoc
// @ID          createBreed
// @Summary     Add a breed to a category
// @Description Administrators only. Breed names are unique within a category.
// @Tags        Catalog
// @Accept      json
// @Produce     json
// @Param       X-User-ID    header  int     true  "Caller user ID"  example(1)
// @Param       X-User-Role  header  string  true  "Caller role"     example(ADMIN)
// @Param       id           path    int     true  "Category ID"     minimum(1)
// @Param       body         body    handlers.CreateCatalogEntryRequest  true  "Breed"
// @Success     201  {object} domain.Breed
// @Failure     403  {object} handlers.ErrorResponse "Not an administrator"
// @Failure     404  {object} handlers.ErrorResponse "Category not found"
// @Failure     409  {object} handlers.ErrorResponse "Name already exists"
// @Router      /categories/{id}/breeds [post]
func (h *Handlers) CreateBreed(c *gin.Context) {
	a, authed := requireUser(c)
	if !authed {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req CreateCatalogEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name required")
		return
	}
	b, err := h.catalog.CreateBreed(c.Request.Context(), a, id, req.Name)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, b)
}
