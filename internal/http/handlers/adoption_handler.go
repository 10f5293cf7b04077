// Adoption request HTTP handlers.
//
// This file exposes REST endpoints for the adoption request lifecycle:
//   - POST   /adoption-requests                              (create, Idempotency-Key aware)
//   - GET    /adoption-requests                              (all requests, admin)
//   - GET    /adoption-requests/{id}                         (get)
//   - PUT    /adoption-requests/{id}/status                  (approve or reject)
//   - PUT    /adoption-requests/{id}/note                    (edit a pending note)
//   - DELETE /adoption-requests/{id}                         (cancel)
//   - GET    /adoption-requests/mine                         (caller's requests, ETag support)
//   - GET    /adoption-requests/for-my-animals               (requests on caller's animals, ETag support)
//   - GET    /adoption-requests/for-my-animals/{animalId}    (requests on one of them)
//   - GET    /adoption-requests/animal/{animalId}            (requests on an animal)
//   - GET    /adoption-requests/animal/{animalId}/count      (count by status)
//
// Every endpoint requires an identified caller.
package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-adoption-backend/internal/domain"
	"github.com/tbourn/go-adoption-backend/internal/http/middleware"
	"github.com/tbourn/go-adoption-backend/internal/repo"
)

// HeaderIdempotencyReplayed marks a create response served from a prior request.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

//
// DTOs
//

// CreateAdoptionRequest is the JSON payload for applying to adopt an animal.
type CreateAdoptionRequest struct {
	AnimalID uint   `json:"animal_id" binding:"required" example:"7"`
	Note     string `json:"note" example:"We have a garden and work from home."`
}

// DecisionRequest is the JSON payload for deciding on a request.
type DecisionRequest struct {
	Status string `json:"status" binding:"required" example:"APPROVED" enums:"APPROVED,REJECTED"`
}

// UpdateNoteRequest is the JSON payload for editing a pending request's note.
type UpdateNoteRequest struct {
	Note string `json:"note" example:"Happy to visit on weekends."`
}

// AdoptionRequestResponse is the public view of an adoption request.
type AdoptionRequestResponse struct {
	ID          uint       `json:"id" example:"12"`
	AnimalID    uint       `json:"animal_id" example:"7"`
	RequesterID uint       `json:"requester_id" example:"5"`
	Note        string     `json:"note"`
	Status      string     `json:"status" example:"PENDING"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DecisionAt  *time.Time `json:"decision_at,omitempty"`

	// Display fields, present on read endpoints.
	AnimalName     string `json:"animal_name,omitempty" example:"Max"`
	AnimalCategory string `json:"animal_category,omitempty" example:"Dog"`
	AnimalOwnerID  uint   `json:"animal_owner_id,omitempty" example:"2"`
	OwnerName      string `json:"owner_name,omitempty" example:"Olga"`
	RequesterName  string `json:"requester_name,omitempty" example:"Rui"`
	RequesterEmail string `json:"requester_email,omitempty" example:"rui@example.com"`
}

// ListAdoptionRequestsResponse wraps a list of adoption requests.
type ListAdoptionRequestsResponse struct {
	Items []AdoptionRequestResponse `json:"items"`
}

// CountResponse carries a single count.
type CountResponse struct {
	AnimalID uint   `json:"animal_id" example:"7"`
	Status   string `json:"status" example:"PENDING"`
	Count    int64  `json:"count" example:"3"`
}

//
// Helpers
//

func requestResponse(r domain.AdoptionRequest) AdoptionRequestResponse {
	return AdoptionRequestResponse{
		ID:          r.ID,
		AnimalID:    r.AnimalID,
		RequesterID: r.RequesterID,
		Note:        r.Note,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		DecisionAt:  r.DecisionAt,
	}
}

func requestRowResponse(row repo.RequestRow) AdoptionRequestResponse {
	resp := requestResponse(row.AdoptionRequest)
	resp.AnimalName = row.AnimalName
	resp.AnimalCategory = row.CategoryName
	resp.AnimalOwnerID = row.OwnerID
	resp.OwnerName = row.OwnerName
	resp.RequesterName = row.RequesterName
	resp.RequesterEmail = row.RequesterEmail
	return resp
}

func requestList(rows []repo.RequestRow) ListAdoptionRequestsResponse {
	out := make([]AdoptionRequestResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, requestRowResponse(r))
	}
	return ListAdoptionRequestsResponse{Items: out}
}

//
// Handlers
//

// CreateAdoptionRequest godoc
// @ID          createAdoptionRequest
// @Summary     Apply to adopt an animal
// @Description Files a PENDING request for the caller. With an Idempotency-Key, a retried call returns the original request (200, Idempotency-Replayed: true).
// @Tags        AdoptionRequests
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  int     true  "Caller user ID"                      example(5)
// @Param       Idempotency-Key  header  string  false "Optional idempotency key for safe retries"  example(2b1e0f7e-1f2a-4a1b-9d8b-3d2c1a0f9e7d)
// @Param       body             body    handlers.CreateAdoptionRequest  true  "Request"
//
// @Success     201  {object} handlers.AdoptionRequestResponse
// @Success     200  {object} handlers.AdoptionRequestResponse "Replayed"
// @Header      200  {string} Idempotency-Replayed "true when served from a prior request"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthenticated"
// @Failure     403  {object} handlers.ErrorResponse "Own animal"
// @Failure     404  {object} handlers.ErrorResponse "Animal not found"
// @Failure     409  {object} handlers.ErrorResponse "Already adopted or duplicate request"
// @Failure     429  {object} handlers.ErrorResponse "Too many requests"
// @Router      /adoption-requests [post]
func (h *Handlers) CreateAdoptionRequest(c *gin.Context) {
	a, authed := requireUser(c)
	if !authed {
		return
	}
	var req CreateAdoptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "animal_id required")
		return
	}
	key, _ := middleware.GetIdempotencyKey(c)

	r, replayed, err := h.adoptions.CreateIdempotent(c.Request.Context(), a, req.AnimalID, req.Note, key)
	if err != nil {
		failErr(c, err)
		return
	}
	if replayed {
		c.Header(HeaderIdempotencyReplayed, "true")
		ok(c, http.StatusOK, requestResponse(*r))
		return
	}
	ok(c, http.StatusCreated, requestResponse(*r))
}

// ListAdoptionRequests godoc
// @ID          listAdoptionRequests
// @Summary     List all adoption requests
// @Description Administrators only.
// @Tags        AdoptionRequests
// @Produce     json
//
// @Param       X-User-ID    header  int     true  "Caller user ID"  example(1)
// @Param       X-User-Role  header  string  true  "Caller role"     example(ADMIN)
//
// @Success     200  {object} handlers.ListAdoptionRequestsResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthenticated"
// @Failure     403  {object} handlers.ErrorResponse "Not an administrator"
// @Router      /adoption-requests [get]
func (h *Handlers) ListAdoptionRequests(c *gin.Context) {
	a, authed := requireUser(c)
	if !authed {
		return
	}
	rows, err := h.adoptions.ListAll(c.Request.Context(), a)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, requestList(rows))
}

// GetAdoptionRequest godoc
// @ID          getAdoptionRequest
// @Summary     Get an adoption request
// @Description Readable by the requester, the animal's owner and administrators.
// @Tags        AdoptionRequests
// @Produce     json
//
// @Param       X-User-ID  header  int  true  "Caller user ID"  example(5)
// @Param       id         path    int  true  "Request ID"      minimum(1)
//
// @Success     200  {object} handlers.AdoptionRequestResponse
// @Failure     403  {object} handlers.ErrorResponse "Not a party to the request"
// @Failure     404  {object} handlers.ErrorResponse "Request not found"
// @Router      /adoption-requests/{id} [get]
func (h *Handlers) GetAdoptionRequest(c *gin.Context) {
	a, authed := requireUser(c)
	if !authed {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	row, err := h.adoptions.Get(c.Request.Context(), a, id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, requestRowResponse(*row))
}

// DecideAdoptionRequest godoc
// @ID          decideAdoptionRequest
// @Summary     Approve or reject a request
// @Description The animal's owner decides a PENDING request. Approval marks the animal adopted and rejects its other pending requests.
// @Tags        AdoptionRequests
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  int  true  "Caller user ID"  example(2)
// @Param       id         path    int  true  "Request ID"      minimum(1)
// @Param       body       body    handlers.DecisionRequest  true  "Decision"
//
// @Success     200  {object} handlers.AdoptionRequestResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid decision or request not pending"
// @Failure     403  {object} handlers.ErrorResponse "Not the owner"
// @Failure     404  {object} handlers.ErrorResponse "Request not found"
// @Failure     409  {object} handlers.ErrorResponse "Animal already adopted"
// @Router      /adoption-requests/{id}/status [put]
func (h *Handlers) DecideAdoptionRequest(c *gin.Context) {
	a, authed := requireUser(c)
	if !authed {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status required")
		return
	}
	r, err := h.adoptions.Decide(c.Request.Context(), a, id, upper[domain.RequestStatus](req.Status))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, requestResponse(*r))
}

// UpdateAdoptionRequestNote godoc
// @ID          updateAdoptionRequestNote
// @Summary     Edit a request's note
// @Description The requester may edit the note while the request is PENDING.
// @Tags        AdoptionRequests
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  int  true  "Caller user ID"  example(5)
// @Param       id         path    int  true  "Request ID"      minimum(1)
// @Param       body       body    handlers.UpdateNoteRequest  true  "New note"
//
// @Success     200  {object} handlers.AdoptionRequestResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid note or request not pending"
// @Failure     403  {object} handlers.ErrorResponse "Not the requester"
// @Failure     404  {object} handlers.ErrorResponse "Request not found"
// @Router      /adoption-requests/{id}/note [put]
func (h *Handlers) UpdateAdoptionRequestNote(c *gin.Context) {
	a, authed := requireUser(c)
	if !authed {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	r, err := h.adoptions.UpdateNote(c.Request.Context(), a, id, req.Note)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, requestResponse(*r))
}

// DeleteAdoptionRequest godoc
// @ID          deleteAdoptionRequest
// @Summary     Cancel a request
// @Description The requester (or an administrator) removes a request.
// @Tags        AdoptionRequests
//
// @Param       X-User-ID  header  int  true  "Caller user ID"  example(5)
// @Param       id         path    int  true  "Request ID"      minimum(1)
//
// @Success     204  {string} string "No Content"
// @Failure     403  {object} handlers.ErrorResponse "Not the requester"
// @Failure     404  {object} handlers.ErrorResponse "Request not found"
// @Router      /adoption-requests/{id} [delete]
func (h *Handlers) DeleteAdoptionRequest(c *gin.Context) {
	a, authed := requireUser(c)
	if !authed {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.adoptions.Delete(c.Request.Context(), a, id); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// ListMyAdoptionRequests godoc
// @ID          listMyAdoptionRequests
// @Summary     List the caller's requests
// @Description Newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        AdoptionRequests
// @Produce     json
//
// @Param       X-User-ID      header  int     true  "Caller user ID"              example(5)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"requests:5:2:1700000000000000000\")
//
// @Success     200  {object} handlers.ListAdoptionRequestsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     401  {object} handlers.ErrorResponse "Unauthenticated"
// @Router      /adoption-requests/mine [get]
func (h *Handlers) ListMyAdoptionRequests(c *gin.Context) {
	a, authed := requireUser(c)
	if !authed {
		return
	}
	ctx := c.Request.Context()
	count, last, err := h.adoptions.RequesterStats(ctx, a.UserID)
	if notModified(c, "requests", a.UserID, count, last, err) {
		return
	}

	rows, err := h.adoptions.ListByRequester(ctx, a.UserID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, requestList(rows))
}

// ListRequestsForMyAnimals godoc
// @ID          listRequestsForMyAnimals
// @Summary     List requests on the caller's animals
// @Description Newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        AdoptionRequests
// @Produce     json
//
// @Param       X-User-ID      header  int     true  "Caller user ID"              example(2)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"owner-requests:2:4:1700000000000000000\")
//
// @Success     200  {object} handlers.ListAdoptionRequestsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     401  {object} handlers.ErrorResponse "Unauthenticated"
// @Router      /adoption-requests/for-my-animals [get]
func (h *Handlers) ListRequestsForMyAnimals(c *gin.Context) {
	a, authed := requireUser(c)
	if !authed {
		return
	}
	ctx := c.Request.Context()
	count, last, err := h.adoptions.OwnerStats(ctx, a.UserID)
	if notModified(c, "owner-requests", a.UserID, count, last, err) {
		return
	}

	rows, err := h.adoptions.ListForOwner(ctx, a.UserID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, requestList(rows))
}

// ListRequestsForMyAnimal godoc
// @ID          listRequestsForMyAnimal
// @Summary     List requests on one of the caller's animals
// @Tags        AdoptionRequests
// @Produce     json
//
// @Param       X-User-ID  header  int  true  "Caller user ID"  example(2)
// @Param       animalId   path    int  true  "Animal ID"       minimum(1)
//
// @Success     200  {object} handlers.ListAdoptionRequestsResponse
// @Failure     403  {object} handlers.ErrorResponse "Not the owner"
// @Failure     404  {object} handlers.ErrorResponse "Animal not found"
// @Router      /adoption-requests/for-my-animals/{animalId} [get]
func (h *Handlers) ListRequestsForMyAnimal(c *gin.Context) {
	a, authed := requireUser(c)
	if !authed {
		return
	}
	animalID, valid := pathID(c, "animalId")
	if !valid {
		return
	}
	rows, err := h.adoptions.ListForOwnerAnimal(c.Request.Context(), a.UserID, animalID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, requestList(rows))
}

// ListRequestsByAnimal godoc
// @ID          listRequestsByAnimal
// @Summary     List requests on an animal
// @Tags        AdoptionRequests
// @Produce     json
//
// @Param       X-User-ID  header  int  true  "Caller user ID"  example(2)
// @Param       animalId   path    int  true  "Animal ID"       minimum(1)
//
// @Success     200  {object} handlers.ListAdoptionRequestsResponse
// @Failure     404  {object} handlers.ErrorResponse "Animal not found"
// @Router      /adoption-requests/animal/{animalId} [get]
func (h *Handlers) ListRequestsByAnimal(c *gin.Context) {
	if _, authed := requireUser(c); !authed {
		return
	}
	animalID, valid := pathID(c, "animalId")
	if !valid {
		return
	}
	rows, err := h.adoptions.ListByAnimal(c.Request.Context(), animalID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, requestList(rows))
}

// CountRequestsByAnimal godoc
// @ID          countRequestsByAnimal
// @Summary     Count requests on an animal by status
// @Tags        AdoptionRequests
// @Produce     json
//
// @Param       X-User-ID  header  int     true   "Caller user ID"  example(2)
// @Param       animalId   path    int     true   "Animal ID"       minimum(1)
// @Param       status     query   string  false  "Status"          Enums(PENDING, APPROVED, REJECTED) default(PENDING)
//
// @Success     200  {object} handlers.CountResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid status"
// @Router      /adoption-requests/animal/{animalId}/count [get]
func (h *Handlers) CountRequestsByAnimal(c *gin.Context) {
	if _, authed := requireUser(c); !authed {
		return
	}
	animalID, valid := pathID(c, "animalId")
	if !valid {
		return
	}
	status := upper[domain.RequestStatus](c.DefaultQuery("status", string(domain.StatusPending)))
	n, err := h.adoptions.CountByAnimalAndStatus(c.Request.Context(), animalID, status)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, CountResponse{AnimalID: animalID, Status: string(status), Count: n})
}

// notModified sets a weak ETag built from a list's size and newest update
// and answers 304 when the client already holds it. Stats errors skip the
// check; the list itself will surface a real store failure.
func notModified(c *gin.Context, kind string, uid uint, count int64, last *time.Time, err error) bool {
	if err != nil {
		return false
	}
	var ts int64
	if last != nil {
		ts = last.UnixNano()
	}
	etag := fmt.Sprintf(`W/"%s:%d:%d:%d"`, kind, uid, count, ts)
	c.Header("ETag", etag)
	if strings.TrimSpace(c.GetHeader("If-None-Match")) != etag {
		return false
	}
	c.Status(http.StatusNotModified)
	return true
}
