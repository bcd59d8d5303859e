package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobbooster-backend/internal/activitylogs"
	googleauth "jobbooster-backend/internal/auth"
	"jobbooster-backend/internal/documents"
	"jobbooster-backend/internal/gdpr"
	"jobbooster-backend/internal/generated"
	"jobbooster-backend/internal/retention"
	"jobbooster-backend/internal/sessions"
	"jobbooster-backend/internal/shared/config"
	"jobbooster-backend/internal/shared/metrics"
	"jobbooster-backend/internal/shared/server/middleware"
	"jobbooster-backend/internal/shared/server/respond"
	"jobbooster-backend/internal/users"
)

// RouterDeps carries everything the router wires up. Nil handlers are
// skipped so partial setups (tests, the worker) can reuse the router.
type RouterDeps struct {
	Config config.Config

	UserHandler      *users.Handler
	DocumentHandler  *documents.Handler
	GeneratedHandler *generated.Handler
	ActivityHandler  *activitylogs.Handler
	SessionHandler   *sessions.Handler
	GDPRHandler      *gdpr.Handler
	RetentionHandler *retention.Handler
	CronHandler      *retention.CronHandler
	GoogleAuth       *googleauth.GoogleService

	Sessions *sessions.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"AUTH": {Rate: 1, Burst: 10},
			"CRON": {Rate: 0.5, Burst: 5},
		},
		GroupFor: func(c *gin.Context) string {
			switch {
			case strings.HasPrefix(c.Request.URL.Path, "/api/auth/"):
				return "AUTH"
			case strings.HasPrefix(c.Request.URL.Path, "/api/cron/"):
				return "CRON"
			}
			return ""
		},
	}))
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}

	// Cron endpoints authenticate with their own shared secret, not user JWTs.
	if deps.CronHandler != nil {
		deps.CronHandler.RegisterRoutes(api)
	}

	authed := api.Group("")
	authed.Use(middleware.Auth())
	if deps.Sessions != nil {
		authed.Use(touchSession(deps.Sessions))
	}

	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(authed)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(authed)
	}
	if deps.GeneratedHandler != nil {
		deps.GeneratedHandler.RegisterRoutes(authed)
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.RegisterRoutes(authed)
	}
	if deps.SessionHandler != nil {
		deps.SessionHandler.RegisterRoutes(authed)
	}
	if deps.GDPRHandler != nil {
		deps.GDPRHandler.RegisterRoutes(authed)
	}
	if deps.RetentionHandler != nil {
		deps.RetentionHandler.RegisterRoutes(authed)
	}

	return r
}

// touchSession refreshes last_seen_at for the session carried in the JWT.
func touchSession(svc *sessions.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sid := middleware.SessionIDFromContext(c); sid != "" {
			svc.Touch(c.Request.Context(), sid)
		}
		c.Next()
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
