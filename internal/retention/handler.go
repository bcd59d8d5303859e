package retention

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobbooster-backend/internal/shared/server/middleware"
	"jobbooster-backend/internal/shared/telemetry"
)

// previewLimit caps the eligible-record preview on the per-type GET endpoint.
const previewLimit = 25

// Handler exposes the data-retention admin endpoints.
type Handler struct {
	Scheduler *Scheduler
	Enabled   bool
}

// NewHandler constructs a Handler. enabled is the process-wide feature flag;
// when false every endpoint answers 503.
func NewHandler(scheduler *Scheduler, enabled bool) *Handler {
	return &Handler{Scheduler: scheduler, Enabled: enabled}
}

// RegisterRoutes attaches data-retention routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/data-retention", h.overview)
	rg.POST("/data-retention", h.runOperation)
	rg.PUT("/data-retention", h.updateSettings)
	rg.GET("/data-retention/:dataType", h.dataTypeDetail)
	rg.POST("/data-retention/:dataType", h.processDataType)
	rg.DELETE("/data-retention/:dataType", h.forceDelete)
}

func (h *Handler) overview(c *gin.Context) {
	if !h.gate(c) {
		return
	}
	ctx := c.Request.Context()

	settings, err := h.Scheduler.Status(ctx)
	if err != nil {
		internalError(c, "load retention status", err)
		return
	}

	calc := h.Scheduler.Deletion().Calculator()
	statistics := make(map[string]Stats, len(AllDataTypes()))
	for _, dt := range AllDataTypes() {
		stats, err := calc.Stats(ctx, dt)
		if err != nil {
			internalError(c, "compute retention statistics", err)
			return
		}
		statistics[string(dt)] = stats
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"enabled": settings.Enabled,
		"status": gin.H{
			"enabled": settings.Enabled,
			"dryRun":  settings.DryRun,
		},
		"statistics": statistics,
	})
}

type operationRequest struct {
	Operation   string `json:"operation"`
	DataType    string `json:"dataType"`
	DryRun      *bool  `json:"dryRun"`
	AdminUserID string `json:"adminUserId"`
}

func (h *Handler) runOperation(c *gin.Context) {
	if !h.gate(c) {
		return
	}
	ctx := c.Request.Context()

	var req operationRequest
	if err := decodeJSON(c.Request.Body, &req); err != nil {
		badRequest(c, err.Error())
		return
	}
	adminUserID := h.adminUser(c, req.AdminUserID)

	var (
		result any
		err    error
	)
	switch req.Operation {
	case "daily_check":
		result, err = h.Scheduler.RunDailyWithDryRun(ctx, adminUserID, req.DryRun)
	case "notification_check":
		result, err = h.Scheduler.RunNotificationCheck(ctx, adminUserID)
	case "weekly_cleanup":
		result, err = h.Scheduler.RunWeeklyWithDryRun(ctx, adminUserID, req.DryRun)
	case "process_data_type":
		dt, parseErr := ParseDataType(req.DataType)
		if parseErr != nil {
			badRequest(c, parseErr.Error())
			return
		}
		result, err = h.Scheduler.ProcessDataType(ctx, dt, adminUserID, req.DryRun)
	default:
		badRequest(c, "unknown operation; valid operations: daily_check, notification_check, weekly_cleanup, process_data_type")
		return
	}
	if err != nil {
		operationError(c, req.Operation, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}

type settingsRequest struct {
	Enabled *bool `json:"enabled"`
	DryRun  *bool `json:"dryRun"`
}

func (h *Handler) updateSettings(c *gin.Context) {
	// Settings updates are allowed even while the feature flag is off so an
	// operator can stage configuration before enabling.
	var req settingsRequest
	if err := decodeJSON(c.Request.Body, &req); err != nil {
		badRequest(c, err.Error())
		return
	}

	settings, err := h.Scheduler.UpdateSettings(c.Request.Context(), req.Enabled, req.DryRun)
	if err != nil {
		internalError(c, "update retention settings", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status": gin.H{
			"enabled": settings.Enabled,
			"dryRun":  settings.DryRun,
		},
	})
}

func (h *Handler) dataTypeDetail(c *gin.Context) {
	if !h.gate(c) {
		return
	}
	ctx := c.Request.Context()

	dt, err := ParseDataType(c.Param("dataType"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	calc := h.Scheduler.Deletion().Calculator()
	stats, err := calc.Stats(ctx, dt)
	if err != nil {
		internalError(c, "compute retention statistics", err)
		return
	}
	eligible, err := calc.EligibleRecords(ctx, dt, previewLimit)
	if err != nil {
		internalError(c, "list eligible records", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"dataType":        dt,
		"policy":          PolicyFor(dt),
		"statistics":      stats,
		"eligibleRecords": eligible,
	})
}

type processRequest struct {
	DryRun      *bool  `json:"dryRun"`
	AdminUserID string `json:"adminUserId"`
}

func (h *Handler) processDataType(c *gin.Context) {
	if !h.gate(c) {
		return
	}

	dt, err := ParseDataType(c.Param("dataType"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	var req processRequest
	if err := decodeJSON(c.Request.Body, &req); err != nil {
		badRequest(c, err.Error())
		return
	}
	adminUserID := h.adminUser(c, req.AdminUserID)

	result, err := h.Scheduler.ProcessDataType(c.Request.Context(), dt, adminUserID, req.DryRun)
	if err != nil {
		operationError(c, "process_data_type", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"dataType": dt,
		"result":   result,
		"dryRun":   result.DryRun,
	})
}

type forceDeleteRequest struct {
	AdminUserID string `json:"adminUserId"`
	Confirm     bool   `json:"confirm"`
}

func (h *Handler) forceDelete(c *gin.Context) {
	if !h.gate(c) {
		return
	}

	dt, err := ParseDataType(c.Param("dataType"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	var req forceDeleteRequest
	if err := decodeJSON(c.Request.Body, &req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !req.Confirm {
		badRequest(c, "confirm must be true to force a deletion run")
		return
	}
	adminUserID := h.adminUser(c, req.AdminUserID)

	noDryRun := false
	result, err := h.Scheduler.ProcessDataType(c.Request.Context(), dt, adminUserID, &noDryRun)
	if err != nil {
		operationError(c, "force_delete", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"dataType": dt,
		"result":   result,
		"message":  "deletion run completed",
	})
}

// gate answers 503 when the feature flag is off.
func (h *Handler) gate(c *gin.Context) bool {
	if h.Enabled {
		return true
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"success": false,
		"enabled": false,
		"error":   "data retention is disabled",
	})
	return false
}

// adminUser prefers an explicit adminUserId from the request body, falling
// back to the authenticated caller.
func (h *Handler) adminUser(c *gin.Context, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	return middleware.UserIDFromContext(c)
}

func operationError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, ErrDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"enabled": false,
			"error":   "data retention is disabled",
		})
	case errors.Is(err, ErrJobRunning):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   "a retention job of this type is already running",
		})
	default:
		internalError(c, operation, err)
	}
}

func internalError(c *gin.Context, operation string, err error) {
	telemetry.Error("retention.http.error", map[string]any{
		"operation": operation,
		"error":     err.Error(),
		"path":      c.FullPath(),
	})
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   "internal error",
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   message,
	})
}

// decodeJSON parses an optional JSON body; an empty body yields the zero value.
func decodeJSON(body io.Reader, dst any) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}
