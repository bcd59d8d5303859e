package gdpr

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jobbooster-backend/internal/shared/server/middleware"
	"jobbooster-backend/internal/shared/server/respond"
)

// ConsentResponse is the API shape for one consent decision.
type ConsentResponse struct {
	Purpose   string    `json:"purpose"`
	Granted   bool      `json:"granted"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches privacy routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/gdpr/consents", h.listConsents)
	rg.PUT("/gdpr/consents/:purpose", h.setConsent)
	rg.GET("/gdpr/export", h.export)
	rg.DELETE("/gdpr/account", h.deleteAccount)
}

func (h *Handler) listConsents(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	consents, err := h.Svc.ListConsents(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list consents", nil)
		return
	}

	resp := make([]ConsentResponse, 0, len(consents))
	for _, consent := range consents {
		resp = append(resp, ConsentResponse{
			Purpose:   consent.Purpose,
			Granted:   consent.Granted,
			UpdatedAt: consent.UpdatedAt,
		})
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) setConsent(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req struct {
		Granted *bool `json:"granted"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Granted == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "granted is required", nil)
		return
	}

	consent, err := h.Svc.SetConsent(c.Request.Context(), userID, c.Param("purpose"), *req.Granted)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unknown consent purpose", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update consent", nil)
		return
	}

	respond.JSON(c, http.StatusOK, ConsentResponse{
		Purpose:   consent.Purpose,
		Granted:   consent.Granted,
		UpdatedAt: consent.UpdatedAt,
	})
}

func (h *Handler) export(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	export, err := h.Svc.ExportData(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to export data", nil)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="data-export.json"`)
	respond.JSON(c, http.StatusOK, export)
}

func (h *Handler) deleteAccount(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.DeleteAccount(c.Request.Context(), userID); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete account", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"deleted": true})
}
