package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/local-business-directory/internal/application"
	"github.com/oksasatya/local-business-directory/internal/domain/entity"
	"github.com/oksasatya/local-business-directory/internal/interface/middleware"
	"github.com/oksasatya/local-business-directory/pkg/response"
	"github.com/oksasatya/local-business-directory/pkg/validation"
)

type BusinessHandler struct {
	Svc    *application.BusinessService
	Logger *logrus.Logger
}

func NewBusinessHandler(svc *application.BusinessService, logger *logrus.Logger) *BusinessHandler {
	return &BusinessHandler{Svc: svc, Logger: logger}
}

// createBusinessRequest is the Business schema minus server-assigned fields.
// rating, isOpen and ownerId are not accepted from clients.
type createBusinessRequest struct {
	Name        string   `json:"name" binding:"required,bizname"`
	Category    string   `json:"category" binding:"required,category"`
	Description *string  `json:"description"`
	Phone       *string  `json:"phone" binding:"omitnil,bizphone"`
	Address     *string  `json:"address"`
	Latitude    *float64 `json:"latitude" binding:"omitnil,latitude"`
	Longitude   *float64 `json:"longitude" binding:"omitnil,longitude"`
}

// updateBusinessRequest is the partial form of createBusinessRequest.
type updateBusinessRequest struct {
	Name        *string  `json:"name" binding:"omitnil,bizname"`
	Category    *string  `json:"category" binding:"omitnil,category"`
	Description *string  `json:"description"`
	Phone       *string  `json:"phone" binding:"omitnil,bizphone"`
	Address     *string  `json:"address"`
	Latitude    *float64 `json:"latitude" binding:"omitnil,latitude"`
	Longitude   *float64 `json:"longitude" binding:"omitnil,longitude"`
}

// patch maps the request onto a store patch. present holds the raw value of
// every key the client sent, so an explicit null clears a nullable column.
func (r updateBusinessRequest) patch(present map[string]json.RawMessage) entity.BusinessPatch {
	p := entity.BusinessPatch{
		Name:        r.Name,
		Description: nullable(present, "description", r.Description),
		Phone:       nullable(present, "phone", r.Phone),
		Address:     nullable(present, "address", r.Address),
		Latitude:    nullable(present, "latitude", r.Latitude),
		Longitude:   nullable(present, "longitude", r.Longitude),
	}
	if r.Category != nil {
		c := entity.Category(*r.Category)
		p.Category = &c
	}
	return p
}

func nullable[T any](present map[string]json.RawMessage, key string, v *T) entity.Nullable[T] {
	if _, ok := present[key]; !ok {
		return entity.Nullable[T]{}
	}
	return entity.Nullable[T]{Set: true, Value: v}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// bindUpdate decodes and validates a partial update. An empty body is the
// same as {}. Name and category may be omitted but not nulled.
func bindUpdate(c *gin.Context) (updateBusinessRequest, map[string]json.RawMessage, map[string]string) {
	var req updateBusinessRequest
	present := map[string]json.RawMessage{}

	body, err := c.GetRawData()
	if err != nil {
		return req, nil, map[string]string{"payload": "unreadable body"}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return req, present, nil
	}
	if err := binding.JSON.BindBody(body, &req); err != nil {
		return req, nil, validation.ToDetails(err)
	}
	if err := json.Unmarshal(body, &present); err != nil {
		return req, nil, validation.ToDetails(err)
	}
	details := map[string]string{}
	for _, key := range []string{"name", "category"} {
		if raw, ok := present[key]; ok && isNull(raw) {
			details[key] = "must not be null"
		}
	}
	if len(details) > 0 {
		return req, nil, details
	}
	return req, present, nil
}

// List GET /api/businesses?category=&search=
func (h *BusinessHandler) List(c *gin.Context) {
	filter := application.ListFilter{Category: c.Query("category"), Search: c.Query("search")}
	list, err := h.Svc.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err, "failed to fetch businesses")
		return
	}
	response.Success(c, http.StatusOK, list, "businesses", gin.H{"count": len(list)})
}

// Get GET /api/businesses/:id
func (h *BusinessHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	b, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to fetch business")
		return
	}
	response.Success(c, http.StatusOK, b, "business", nil)
}

// Create POST /api/businesses (auth required). The owner is the caller.
func (h *BusinessHandler) Create(c *gin.Context) {
	var req createBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid business data", validation.ToDetails(err))
		return
	}
	b, err := h.Svc.Create(c.Request.Context(), middleware.UserID(c), application.CreateBusinessInput{
		Name:        req.Name,
		Category:    entity.Category(req.Category),
		Description: req.Description,
		Phone:       req.Phone,
		Address:     req.Address,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		h.fail(c, err, "failed to create business")
		return
	}
	response.Success(c, http.StatusCreated, b, "business created", nil)
}

// Mine GET /api/my-businesses (auth required)
func (h *BusinessHandler) Mine(c *gin.Context) {
	list, err := h.Svc.ListByOwner(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err, "failed to fetch your businesses")
		return
	}
	response.Success(c, http.StatusOK, list, "your businesses", gin.H{"count": len(list)})
}

// Update PUT /api/businesses/:id (owner only). Existence and ownership are
// reported before payload validation. Every accepted PUT refreshes updatedAt.
func (h *BusinessHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	uid := middleware.UserID(c)
	if _, err := h.Svc.Authorize(c.Request.Context(), uid, id); err != nil {
		h.fail(c, err, "failed to update business")
		return
	}

	req, present, details := bindUpdate(c)
	if details != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid business data", details)
		return
	}
	b, err := h.Svc.Update(c.Request.Context(), uid, id, req.patch(present))
	if err != nil {
		h.fail(c, err, "failed to update business")
		return
	}
	response.Success(c, http.StatusOK, b, "business updated", nil)
}

// Delete DELETE /api/businesses/:id (owner only)
func (h *BusinessHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		h.fail(c, err, "failed to delete business")
		return
	}
	response.NoContent(c)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error[any](c, http.StatusBadRequest, "invalid business id", nil)
		return 0, false
	}
	return id, true
}

// fail maps application errors onto HTTP replies. Unknown errors are logged
// and answered with a generic message.
func (h *BusinessHandler) fail(c *gin.Context, err error, generic string) {
	switch {
	case errors.Is(err, application.ErrUnauthenticated):
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, application.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "business not found", nil)
	case errors.Is(err, application.ErrForbidden):
		response.Error[any](c, http.StatusForbidden, "not authorized to modify this business", nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.FullPath(),
				"id":         c.Param("id"),
			}).Error(generic)
		}
		response.Error[any](c, http.StatusInternalServerError, generic, nil)
	}
}
