package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"SecuroHub/internal/assistant"
	"SecuroHub/internal/dashboard"
	"SecuroHub/internal/models"
	"SecuroHub/pkg/cache"
	"SecuroHub/pkg/config"
	"SecuroHub/pkg/constant"
	"SecuroHub/pkg/i18n"
	"SecuroHub/pkg/metrics"
	"SecuroHub/pkg/middleware"
	"SecuroHub/pkg/notification"
	"SecuroHub/pkg/search"
	"SecuroHub/pkg/sse"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const sessionName = "securo_session"

// Deps are the services the HTTP layer dispatches to.
type Deps struct {
	Config      *config.Config
	Assistant   *assistant.Assistant
	Dashboard   *dashboard.Dashboard
	Index       search.Engine
	Hub         *sse.Hub
	Cache       cache.Cache
	Notifier    *notification.Notifier
	I18n        *i18n.I18nSupport
	Metrics     *metrics.Metrics
	Auditor     *middleware.Auditor
	RateLimiter *middleware.RateLimiter
}

type Handlers struct {
	db *gorm.DB
	Deps
	jwtSecret string
}

func NewHandlers(db *gorm.DB, deps Deps) *Handlers {
	h := &Handlers{db: db, Deps: deps, jwtSecret: deps.Config.JWTSecret}
	if h.jwtSecret == "" {
		h.jwtSecret = randomSecret()
	}
	return h
}

func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func (h *Handlers) sessionStore() sessions.Store {
	secret := h.Config.SessionSecret
	if secret == "" {
		// sessions do not survive a restart without a configured secret
		secret = randomSecret()
	}
	store := cookie.NewStore([]byte(secret))
	maxAge := h.Config.SessionExpireDays * 24 * int(time.Hour/time.Second)
	if maxAge <= 0 {
		maxAge = 24 * int(time.Hour/time.Second)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

func (h *Handlers) Register(engine *gin.Engine) {
	if h.Metrics != nil {
		engine.Use(metrics.Middleware(h.Metrics))
		engine.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}
	engine.Use(sessions.Sessions(sessionName, h.sessionStore()))

	r := engine.Group(h.Config.APIPrefix)
	r.Use(middleware.InjectDB(h.db), func(c *gin.Context) {
		c.Set(constant.JWTSecretField, h.jwtSecret)
		c.Next()
	})
	if h.I18n != nil && h.Config.LanguageEnabled {
		r.Use(middleware.LanguageMiddleware(h.I18n))
	}
	if h.RateLimiter != nil {
		r.Use(h.RateLimiter.Middleware())
	}
	if h.Auditor != nil {
		r.Use(h.Auditor.Middleware())
	}

	h.registerSystemRoutes(r)
	h.registerAuthRoutes(r)
	h.registerChatRoutes(r)
	h.registerAlertRoutes(r)
	h.registerDashboardRoutes(r)
	h.registerEmergencyRoutes(r)
}

func (h *Handlers) registerSystemRoutes(r *gin.RouterGroup) {
	system := r.Group("system")
	{
		system.GET("/health", h.HealthCheck)

		system.POST("/rate-limiter/config", models.AuthRequired, h.UpdateRateLimiterConfig)
	}
}

func (h *Handlers) registerAuthRoutes(r *gin.RouterGroup) {
	auth := r.Group(h.Config.AuthPrefix)
	{
		auth.GET("/roles", h.handleRoles)

		auth.POST("/signup", h.handleUserSignup)

		auth.POST("/login", h.handleUserSignin)

		auth.POST("/logout", h.handleUserLogout)

		auth.POST("/token", h.handleIssueToken)

		auth.GET("/me", models.AuthRequired, h.handleUserInfo)
	}
}

func (h *Handlers) registerChatRoutes(r *gin.RouterGroup) {
	chat := r.Group("chat")
	chat.Use(models.AuthRequired)
	{
		chat.POST("", h.handleChatSend)

		chat.GET("/history", h.handleChatHistory)
	}
}

func (h *Handlers) registerAlertRoutes(r *gin.RouterGroup) {
	alerts := r.Group("alerts")
	alerts.Use(models.AuthRequired)
	{
		alerts.POST("", middleware.IdempotencyMiddleware(middleware.IdempotencyConfig{
			Store: h.idemStore(),
			Scope: func(c *gin.Context) string { return c.GetString(constant.SessionUsername) },
		}), h.handleCreateAlert)

		alerts.GET("", h.handleListAlerts)

		alerts.GET("/nearby", h.handleNearbyAlerts)

		alerts.GET("/search", h.handleSearchAlerts)

		alerts.GET("/stream", h.handleAlertStream)
	}
}

func (h *Handlers) registerDashboardRoutes(r *gin.RouterGroup) {
	r.GET("/map", models.AuthRequired, h.handleMap)

	stats := r.Group("stats")
	stats.Use(models.AuthRequired)
	{
		stats.GET("", h.handleStats)

		stats.GET("/chart.png", h.handleStatsChart)
	}
}

func (h *Handlers) registerEmergencyRoutes(r *gin.RouterGroup) {
	emergency := r.Group("emergency")
	emergency.Use(models.AuthRequired)
	{
		emergency.GET("/contacts", h.handleEmergencyContacts)

		emergency.POST("/select", h.handleEmergencySelect)

		emergency.POST("/confirm", h.handleEmergencyConfirm)

		emergency.POST("/cancel", h.handleEmergencyCancel)
	}
}

func (h *Handlers) idemStore() middleware.IdemStore {
	if h.Cache == nil {
		return nil
	}
	return &middleware.CacheIdemStore{Cache: h.Cache, Prefix: "idem:"}
}
