package activitylogs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"jobbooster-backend/internal/shared/server/middleware"
	"jobbooster-backend/internal/shared/server/respond"
)

// EntryResponse is the API shape for one activity entry.
type EntryResponse struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches activity routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/activity", h.list)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 50
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}
	offset := 0
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			offset = parsed
		}
	}

	entries, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list activity", nil)
		return
	}

	resp := make([]EntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, EntryResponse{
			ID:        entry.ID,
			Action:    entry.Action,
			Metadata:  entry.Metadata,
			CreatedAt: entry.CreatedAt,
		})
	}
	respond.JSON(c, http.StatusOK, resp)
}
