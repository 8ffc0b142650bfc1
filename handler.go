package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler holds shared dependencies (store, generation client, config) for all route handlers.
type Handler struct {
	db           dataStore
	insights     *generateClient
	log          *zap.SugaredLogger
	authRequired bool
	now          func() time.Time // overridable for tests
}

// today is the current calendar date in the server's local time zone.
func (h *Handler) today() DateOnly {
	return dateOf(h.now())
}

// pathID parses a positive integer route parameter.
func pathID(c *gin.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, validationError(name + " must be a positive integer")
	}
	return id, nil
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// newRouter builds the gin engine with middleware and all routes.
func (h *Handler) newRouter(corsOrigins []string) *gin.Engine {
	router := gin.New()
	router.SetTrustedProxies(nil)
	router.Use(gin.Recovery(), requestLogger(h.log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	h.registerRoutes(router)
	return router
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.GET("/health", h.health)
	router.POST("/auth/signup", h.signup)
	router.POST("/auth/login", h.login)

	// Data routes; token-protected only when AUTH_REQUIRED is set.
	var guard []gin.HandlerFunc
	if h.authRequired {
		guard = append(guard, h.authMiddleware())
	}

	habits := router.Group("/habits", guard...)
	habits.POST("/", h.createHabit)
	habits.GET("/", h.listHabits)
	habits.GET("/logs", h.getHabitLogs)
	// Both legacy toggle paths share the strict handler.
	habits.PATCH("/logs/toggle", h.toggleHabitLog)
	habits.POST("/toggle/", h.toggleHabitLog)
	habits.PUT("/:habit_id", h.updateHabit)
	habits.DELETE("/:habit_id", h.deleteHabit)

	moods := router.Group("/moods", guard...)
	moods.POST("/", h.logMood)
	moods.GET("/", h.listMoods)
	moods.PUT("/:mood_id", h.updateMood)
	moods.DELETE("/:mood_id", h.deleteMood)

	insights := router.Group("/insights", guard...)
	insights.GET("/weekly", h.getWeeklyInsight)
	insights.GET("/raw", h.getRawInsightData)
}

// health reports liveness and database reachability.
// GET /health (public).
func (h *Handler) health(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		h.log.Warnw("health check: database unreachable", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok"})
}
