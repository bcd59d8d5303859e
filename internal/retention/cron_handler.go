package retention

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CronHandler exposes the endpoints an external cron trigger calls. POST is
// protected by a shared bearer secret rather than user auth.
type CronHandler struct {
	Scheduler *Scheduler
	Secret    string
	Enabled   bool

	// Cron expressions surfaced on GET for operator visibility.
	DailyCron  string
	NotifyCron string
	WeeklyCron string
}

// RegisterRoutes attaches cron routes to the router group.
func (h *CronHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/cron/data-retention", h.runJob)
	rg.GET("/cron/data-retention", h.status)
}

type cronJobRequest struct {
	JobType     string `json:"jobType"`
	AdminUserID string `json:"adminUserId"`
	DryRun      *bool  `json:"dryRun"`
}

func (h *CronHandler) runJob(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	if h.notEnabled(c) {
		return
	}
	ctx := c.Request.Context()

	var req cronJobRequest
	if err := decodeJSON(c.Request.Body, &req); err != nil {
		badRequest(c, err.Error())
		return
	}
	adminUserID := req.AdminUserID
	if adminUserID == "" {
		adminUserID = "cron"
	}

	var (
		report JobReport
		err    error
	)
	switch req.JobType {
	case "daily":
		report, err = h.Scheduler.RunDailyWithDryRun(ctx, adminUserID, req.DryRun)
	case "notification":
		report, err = h.Scheduler.RunNotificationCheck(ctx, adminUserID)
	case "weekly":
		report, err = h.Scheduler.RunWeeklyWithDryRun(ctx, adminUserID, req.DryRun)
	default:
		badRequest(c, "unknown jobType; valid values: daily, notification, weekly")
		return
	}
	if err != nil {
		operationError(c, "cron_"+req.JobType, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"result":    report,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *CronHandler) status(c *gin.Context) {
	if h.notEnabled(c) {
		return
	}

	settings, err := h.Scheduler.Status(c.Request.Context())
	if err != nil {
		internalError(c, "load retention status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"enabled": settings.Enabled,
		"status": gin.H{
			"enabled": settings.Enabled,
			"dryRun":  settings.DryRun,
		},
		"availableJobs": []string{"daily", "notification", "weekly"},
		"cronExpressions": gin.H{
			"daily":        h.DailyCron,
			"notification": h.NotifyCron,
			"weekly":       h.WeeklyCron,
		},
	})
}

func (h *CronHandler) authorize(c *gin.Context) bool {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(h.Secret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "unauthorized",
		})
		return false
	}
	return true
}

func (h *CronHandler) notEnabled(c *gin.Context) bool {
	if h.Enabled {
		return false
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"success": false,
		"enabled": false,
		"error":   "data retention is disabled",
	})
	return true
}
