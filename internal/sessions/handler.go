package sessions

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jobbooster-backend/internal/shared/server/middleware"
	"jobbooster-backend/internal/shared/server/respond"
)

// SessionResponse is the API shape for a session.
type SessionResponse struct {
	ID         string     `json:"id"`
	UserAgent  string     `json:"userAgent,omitempty"`
	ClientIP   string     `json:"clientIp,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty"`
	Active     bool       `json:"active"`
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches session routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sessions", h.list)
	rg.DELETE("/sessions/:id", h.revoke)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	items, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list sessions", nil)
		return
	}

	resp := make([]SessionResponse, 0, len(items))
	for _, session := range items {
		resp = append(resp, SessionResponse{
			ID:         session.ID,
			UserAgent:  session.UserAgent,
			ClientIP:   session.ClientIP,
			CreatedAt:  session.CreatedAt,
			LastSeenAt: session.LastSeenAt,
			Active:     session.Active(),
		})
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) revoke(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	err := h.Svc.Revoke(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to revoke session", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"revoked": true})
}
