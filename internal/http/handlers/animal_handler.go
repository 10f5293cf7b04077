// Animal HTTP handlers.
//
// This file exposes REST endpoints for animal listings:
//   - GET    /animals                    (search, paginated, sorted)
//   - POST   /animals                    (create)
//   - GET    /animals/{id}               (get)
//   - PATCH  /animals/{id}               (partial update)
//   - DELETE /animals/{id}               (delete)
//   - GET    /animals/by-owner/{ownerId} (listings of one owner)
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-adoption-backend/internal/domain"
	"github.com/tbourn/go-adoption-backend/internal/http/middleware"
	"github.com/tbourn/go-adoption-backend/internal/repo"
	"github.com/tbourn/go-adoption-backend/internal/search"
	"github.com/tbourn/go-adoption-backend/internal/services"
	"github.com/tbourn/go-adoption-backend/internal/utils"
)

//
// DTOs
//

// AnimalResponse is the public view of a listing with its derived age.
type AnimalResponse struct {
	ID               uint    `json:"id" example:"7"`
	Name             string  `json:"name" example:"Max"`
	ShortDescription string  `json:"short_description" example:"Friendly and calm"`
	Description      string  `json:"description"`
	CategoryID       uint    `json:"category_id" example:"1"`
	CategoryName     string  `json:"category_name" example:"Dog"`
	BreedID          *uint   `json:"breed_id,omitempty" example:"3"`
	BreedName        *string `json:"breed_name,omitempty" example:"Poodle"`
	Gender           string  `json:"gender" example:"MALE"`
	Size             string  `json:"size" example:"MEDIUM"`
	BirthDate        string  `json:"birth_date" example:"2022-04-15"`
	// Age is the number of complete years since birth.
	Age            int    `json:"age" example:"3"`
	AgeGroup       string `json:"age_group" example:"ADULT"`
	AgeDescription string `json:"age_description" example:"3 years"`
	Adopted        bool   `json:"adopted"`
	OwnerID        uint   `json:"owner_id" example:"2"`
	OwnerName      string `json:"owner_name" example:"Olga"`
	// Contact details are only shown to authenticated callers.
	OwnerEmail string    `json:"owner_email,omitempty" example:"olga@example.com"`
	OwnerPhone string    `json:"owner_phone,omitempty" example:"+30 210 0000000"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateAnimalRequest is the JSON payload for creating a listing.
type CreateAnimalRequest struct {
	Name             string `json:"name" binding:"required" example:"Max"`
	ShortDescription string `json:"short_description" binding:"required" example:"Friendly and calm"`
	Description      string `json:"description" example:"Loves long walks."`
	CategoryID       uint   `json:"category_id" binding:"required" example:"1"`
	BreedID          *uint  `json:"breed_id" example:"3"`
	Gender           string `json:"gender" binding:"required" example:"MALE"`
	Size             string `json:"size" binding:"required" example:"MEDIUM"`
	BirthDate        string `json:"birth_date" binding:"required" example:"2022-04-15"`
}

// UpdateAnimalRequest is the JSON payload for a partial listing update.
// Omitted fields are left unchanged; clear_breed removes the breed.
type UpdateAnimalRequest struct {
	Name             *string `json:"name"`
	ShortDescription *string `json:"short_description"`
	Description      *string `json:"description"`
	CategoryID       *uint   `json:"category_id"`
	BreedID          *uint   `json:"breed_id"`
	ClearBreed       bool    `json:"clear_breed"`
	Gender           *string `json:"gender" example:"FEMALE"`
	Size             *string `json:"size" example:"SMALL"`
	BirthDate        *string `json:"birth_date" example:"2023-01-31"`
}

// SearchAnimalsResponse wraps a page of animals and pagination information.
type SearchAnimalsResponse struct {
	Items      []AnimalResponse `json:"items"`
	Pagination Pagination       `json:"pagination"`
	// Sort echoes the effective ordering, e.g. "id,desc".
	Sort string `json:"sort" example:"id,desc"`
}

// ListAnimalsResponse wraps a non-paginated list of animals.
type ListAnimalsResponse struct {
	Items []AnimalResponse `json:"items"`
}

//
// Helpers
//

func (h *Handlers) animalResponse(c *gin.Context, row repo.AnimalRow, withContact bool) AnimalResponse {
	a := row.Animal
	resp := AnimalResponse{
		ID:               a.ID,
		Name:             a.Name,
		ShortDescription: a.ShortDescription,
		Description:      a.Description,
		CategoryID:       a.CategoryID,
		CategoryName:     row.CategoryName,
		BreedID:          a.BreedID,
		BreedName:        row.BreedName,
		Gender:           string(a.Gender),
		Size:             string(a.Size),
		BirthDate:        a.BirthDate.Format(time.DateOnly),
		Adopted:          a.Adopted,
		OwnerID:          a.OwnerID,
		OwnerName:        row.OwnerName,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
	if withContact {
		resp.OwnerEmail, resp.OwnerPhone = row.OwnerEmail, row.OwnerPhone
	}
	age, err := h.animals.Age(a)
	if err != nil {
		// A stored birth date ahead of the clock (skew); show the listing without age.
		middleware.LoggerFrom(c).Warn().Err(err).Uint("animal_id", a.ID).Msg("age unavailable")
		return resp
	}
	resp.Age = age.Years
	resp.AgeGroup = string(age.Group)
	resp.AgeDescription = age.Description
	return resp
}

func (h *Handlers) animalResponses(c *gin.Context, rows []repo.AnimalRow) []AnimalResponse {
	withContact := actor(c).Authenticated()
	out := make([]AnimalResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, h.animalResponse(c, r, withContact))
	}
	return out
}

func parseBirthDate(s string) (time.Time, bool) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	return t, err == nil
}

func upper[T ~string](s string) T { return T(strings.ToUpper(strings.TrimSpace(s))) }

// searchQuery maps query parameters onto a search request. Enum values are
// passed through upper-cased so the service reports unknown ones.
func searchQuery(c *gin.Context) (services.SearchQuery, string) {
	var crit search.Criteria
	crit.Text = c.Query("q")

	var ok bool
	if crit.CategoryID, ok = utils.OptionalID(c.Query("category_id")); !ok {
		return services.SearchQuery{}, "category_id must be a positive integer"
	}
	if crit.BreedID, ok = utils.OptionalID(c.Query("breed_id")); !ok {
		return services.SearchQuery{}, "breed_id must be a positive integer"
	}
	if crit.Adopted, ok = utils.OptionalBool(c.Query("adopted")); !ok {
		return services.SearchQuery{}, "adopted must be true or false"
	}
	if v := strings.TrimSpace(c.Query("gender")); v != "" {
		g := upper[domain.Gender](v)
		crit.Gender = &g
	}
	if v := strings.TrimSpace(c.Query("size")); v != "" {
		z := upper[domain.Size](v)
		crit.Size = &z
	}
	if v := strings.TrimSpace(c.Query("age_group")); v != "" {
		g := upper[domain.AgeGroup](v)
		crit.AgeGroup = &g
	}

	return services.SearchQuery{
		Criteria: crit,
		Page:     utils.AtoiDefault(c.Query("page"), 1),
		PageSize: utils.AtoiDefault(c.Query("page_size"), 0),
		Sort:     c.Query("sort"),
	}, ""
}

//
// Handlers
//

// SearchAnimals godoc
// @ID          searchAnimals
// @Summary     Search animals (paginated)
// @Description Filters listings by free text and attributes. Text matches every token against name, descriptions, category and breed.
// @Tags        Animals
// @Produce     json
//
// @Param       q            query  string  false "Free-text search"                  example(golden puppy)
// @Param       category_id  query  int     false "Category ID"                       minimum(1)
// @Param       breed_id     query  int     false "Breed ID"                          minimum(1)
// @Param       gender       query  string  false "Gender"                            Enums(MALE, FEMALE, UNKNOWN)
// @Param       size         query  string  false "Size"                              Enums(SMALL, MEDIUM, LARGE, EXTRA_LARGE)
// @Param       age_group    query  string  false "Age group"                         Enums(BABY, YOUNG, ADULT, SENIOR)
// @Param       adopted      query  bool    false "Adoption state"
// @Param       page         query  int     false "Page number"                       minimum(1) default(1)
// @Param       page_size    query  int     false "Items per page"                    minimum(1) maximum(100) default(20)
// @Param       sort         query  string  false "Sort as field[,asc|desc]"          example(name,asc)
//
// @Success     200  {object} handlers.SearchAnimalsResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     503  {object} handlers.ErrorResponse "Store unavailable"
// @Router      /animals [get]
func (h *Handlers) SearchAnimals(c *gin.Context) {
	q, msg := searchQuery(c)
	if msg != "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msg)
		return
	}
	page, err := h.animals.Search(c.Request.Context(), q)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, SearchAnimalsResponse{
		Items: h.animalResponses(c, page.Items),
		Pagination: Pagination{
			Page:       page.Page,
			PageSize:   page.PageSize,
			Total:      page.Total,
			TotalPages: page.TotalPages,
			HasNext:    page.Page < page.TotalPages,
		},
		Sort: page.Sort.String(),
	})
}

// CreateAnimal godoc
// @ID          createAnimal
// @Summary     Create a listing
// @Description Lists an animal for adoption. The caller becomes its owner.
// @Tags        Animals
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  int     true  "Caller user ID"  example(2)
// @Param       body       body    handlers.CreateAnimalRequest  true  "Listing"
//
// @Success     201  {object} handlers.AnimalResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthenticated"
// @Failure     404  {object} handlers.ErrorResponse "Category or breed not found"
// @Router      /animals [post]
func (h *Handlers) CreateAnimal(c *gin.Context) {
	a, authed := requireUser(c)
	if !authed {
		return
	}
	var req CreateAnimalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	birth, valid := parseBirthDate(req.BirthDate)
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "birth_date must be YYYY-MM-DD")
		return
	}

	row, err := h.animals.Create(c.Request.Context(), a, services.AnimalInput{
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		CategoryID:       req.CategoryID,
		BreedID:          req.BreedID,
		Gender:           upper[domain.Gender](req.Gender),
		Size:             upper[domain.Size](req.Size),
		BirthDate:        birth,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, h.animalResponse(c, *row, true))
}

// GetAnimal godoc
// @ID          getAnimal
// @Summary     Get a listing
// @Description Returns one animal. Owner contact details are included for authenticated callers only.
// @Tags        Animals
// @Produce     json
//
// @Param       id  path  int  true  "Animal ID"  minimum(1)
//
// @Success     200  {object} handlers.AnimalResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Animal not found"
// @Router      /animals/{id} [get]
func (h *Handlers) GetAnimal(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	row, err := h.animals.Get(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, h.animalResponse(c, *row, actor(c).Authenticated()))
}

// UpdateAnimal godoc
// @ID          updateAnimal
// @Summary     Update a listing
// @Description Applies a partial update. Only the owner (or an administrator) may edit a listing.
// @Tags        Animals
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  int  true  "Caller user ID"  example(2)
// @Param       id         path    int  true  "Animal ID"       minimum(1)
// @Param       body       body    handlers.UpdateAnimalRequest  true  "Changed fields"
//
// @Success     200  {object} handlers.AnimalResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthenticated"
// @Failure     403  {object} handlers.ErrorResponse "Not the owner"
// @Failure     404  {object} handlers.ErrorResponse "Animal not found"
// @Router      /animals/{id} [patch]
func (h *Handlers) UpdateAnimal(c *gin.Context) {
	a, authed := requireUser(c)
	if !authed {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req UpdateAnimalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p := services.AnimalPatch{
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		CategoryID:       req.CategoryID,
		BreedID:          req.BreedID,
		ClearBreed:       req.ClearBreed,
	}
	if req.Gender != nil {
		g := upper[domain.Gender](*req.Gender)
		p.Gender = &g
	}
	if req.Size != nil {
		z := upper[domain.Size](*req.Size)
		p.Size = &z
	}
	if req.BirthDate != nil {
		birth, valid := parseBirthDate(*req.BirthDate)
		if !valid {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "birth_date must be YYYY-MM-DD")
			return
		}
		p.BirthDate = &birth
	}

	row, err := h.animals.Update(c.Request.Context(), a, id, p)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, h.animalResponse(c, *row, true))
}

// DeleteAnimal godoc
// @ID          deleteAnimal
// @Summary     Delete a listing
// @Description Removes a listing together with its adoption requests.
// @Tags        Animals
//
// @Param       X-User-ID  header  int  true  "Caller user ID"  example(2)
// @Param       id         path    int  true  "Animal ID"       minimum(1)
//
// @Success     204  {string} string "No Content"
// @Failure     401  {object} handlers.ErrorResponse "Unauthenticated"
// @Failure     403  {object} handlers.ErrorResponse "Not the owner"
// @Failure     404  {object} handlers.ErrorResponse "Animal not found"
// @Router      /animals/{id} [delete]
func (h *Handlers) DeleteAnimal(c *gin.Context) {
	a, authed := requireUser(c)
	if !authed {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.animals.Delete(c.Request.Context(), a, id); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// ListAnimalsByOwner godoc
// @ID          listAnimalsByOwner
// @Summary     List an owner's animals
// @Tags        Animals
// @Produce     json
//
// @Param       ownerId  path  int  true  "Owner user ID"  minimum(1)
//
// @Success     200  {object} handlers.ListAnimalsResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Router      /animals/by-owner/{ownerId} [get]
func (h *Handlers) ListAnimalsByOwner(c *gin.Context) {
	ownerID, valid := pathID(c, "ownerId")
	if !valid {
		return
	}
	rows, err := h.animals.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListAnimalsResponse{Items: h.animalResponses(c, rows)})
}
