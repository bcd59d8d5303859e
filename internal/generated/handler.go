package generated

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobbooster-backend/internal/shared/server/middleware"
	"jobbooster-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches generated-content routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generated", h.create)
	rg.GET("/generated", h.list)
	rg.GET("/generated/:id", h.get)
	rg.DELETE("/generated/:id", h.remove)
}

type createRequest struct {
	DocumentID string `json:"documentId"`
	Kind       string `json:"kind"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return
	}

	content, err := h.Svc.Create(c.Request.Context(), userID, CreateInput{
		DocumentID: req.DocumentID,
		Kind:       req.Kind,
		Title:      req.Title,
		Content:    req.Content,
	})
	if err != nil {
		h.respondError(c, err, "failed to create content")
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(content))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := parseQueryInt(c, "limit", 20, 0, 100)
	offset := parseQueryInt(c, "offset", 0, 0, 1<<30)

	items, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.respondError(c, err, "failed to list content")
		return
	}

	resp := make([]ContentResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toResponse(item))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	content, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to fetch content")
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(content))
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.respondError(c, err, "failed to delete content")
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "content not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

func parseQueryInt(c *gin.Context, name string, def, min, max int) int {
	value := def
	if v := c.Query(name); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			value = parsed
		}
	}
	if value < min {
		value = min
	}
	if value > max {
		value = max
	}
	return value
}
