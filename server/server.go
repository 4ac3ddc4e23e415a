package server

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dinerozz/focus-guard-backend/config"
	"github.com/dinerozz/focus-guard-backend/docs"
	eventsHandler "github.com/dinerozz/focus-guard-backend/internal/handler/events"
	goalsHandler "github.com/dinerozz/focus-guard-backend/internal/handler/goals"
	notificationsHandler "github.com/dinerozz/focus-guard-backend/internal/handler/notifications"
	pairingHandler "github.com/dinerozz/focus-guard-backend/internal/handler/pairing"
	scheduleHandler "github.com/dinerozz/focus-guard-backend/internal/handler/schedule"
	statusHandler "github.com/dinerozz/focus-guard-backend/internal/handler/status"
	"github.com/dinerozz/focus-guard-backend/internal/service/delivery"
	"github.com/dinerozz/focus-guard-backend/internal/service/dispatcher"
	"github.com/dinerozz/focus-guard-backend/internal/service/goal"
	"github.com/dinerozz/focus-guard-backend/internal/service/guard"
	"github.com/dinerozz/focus-guard-backend/internal/service/pairing"
	"github.com/dinerozz/focus-guard-backend/internal/service/schedule"
	"github.com/dinerozz/focus-guard-backend/internal/service/sites"
	"github.com/dinerozz/focus-guard-backend/internal/service/tabs"
	"github.com/dinerozz/focus-guard-backend/internal/service/tracker"
	"github.com/dinerozz/focus-guard-backend/internal/store"
	"github.com/dinerozz/focus-guard-backend/middleware"
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterHandler struct {
	eventsHandler        *eventsHandler.EventsHandler
	statusHandler        *statusHandler.StatusHandler
	scheduleHandler      *scheduleHandler.ScheduleHandler
	goalsHandler         *goalsHandler.GoalsHandler
	notificationsHandler *notificationsHandler.NotificationsHandler
	pairingHandler       *pairingHandler.PairingHandler
}

func RunServer(cfg *config.Config, logger *slog.Logger) {
	switch cfg.Env {
	case "prod", "production":
		gin.SetMode(gin.ReleaseMode)
		log.Println("🚀 Starting server in PRODUCTION mode")
	case "dev", "development":
		gin.SetMode(gin.DebugMode)
		log.Println("🔧 Starting server in DEVELOPMENT mode")
	default:
		gin.SetMode(gin.DebugMode)
		log.Println("🔧 Starting server in DEVELOPMENT mode (default)")
	}

	kv, err := store.New(cfg)
	if err != nil {
		log.Fatal("❌ Failed to open record store:", err)
	}
	defer kv.Close()

	matcher := sites.NewMatcher(cfg.Scheduler.TrackedSites)
	registry := tabs.NewRegistry()
	outbox := delivery.NewOutbox(cfg.Scheduler.OutboxCap, cfg.Scheduler.ListenerTTL)

	sessionTracker := tracker.NewSessionTracker(kv, logger, cfg.Scheduler.RetentionDays)
	scheduleService := schedule.NewScheduleService(kv, logger)
	cooldownGuard := guard.NewCooldownGuard(kv, logger)
	goalService := goal.NewGoalService(kv, sessionTracker, logger, cfg.Scheduler.HistoryCap)
	pairingService := pairing.NewPairingService(kv, cfg.Auth)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelLoad()
	for name, load := range map[string]func(context.Context) error{
		"ledger":       sessionTracker.Load,
		"schedule":     scheduleService.Load,
		"intervention": cooldownGuard.Load,
		"goals":        goalService.Load,
		"pairing":      pairingService.Load,
	} {
		if err := load(loadCtx); err != nil {
			log.Fatalf("❌ Failed to load %s state: %v", name, err)
		}
	}

	interventionDispatcher := dispatcher.NewDispatcher(dispatcher.Deps{
		Tracker:  sessionTracker,
		Schedule: scheduleService,
		Guard:    cooldownGuard,
		Goals:    goalService,
		Registry: registry,
		Matcher:  matcher,
		Notifier: outbox,
		Log:      logger,
	}, cfg.Scheduler)

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		interventionDispatcher.Run(schedulerCtx)
	}()

	routerHandler := &RouterHandler{
		eventsHandler:        eventsHandler.NewEventsHandler(interventionDispatcher),
		statusHandler:        statusHandler.NewStatusHandler(interventionDispatcher, sessionTracker, cooldownGuard),
		scheduleHandler:      scheduleHandler.NewScheduleHandler(scheduleService),
		goalsHandler:         goalsHandler.NewGoalsHandler(goalService),
		notificationsHandler: notificationsHandler.NewNotificationsHandler(outbox),
		pairingHandler:       pairingHandler.NewPairingHandler(pairingService),
	}

	r := setupRouter(routerHandler, pairingService, kv)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		log.Printf("✅ Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	gracefulShutdown(srv, stopScheduler, schedulerDone)
}

func gracefulShutdown(srv *http.Server, stopScheduler context.CancelFunc, schedulerDone <-chan struct{}) {
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Println("🔄 Shutting down server...")

	// stop the scheduler first so the final session flush lands before the
	// store goes away
	stopScheduler()
	select {
	case <-schedulerDone:
	case <-time.After(10 * time.Second):
		log.Println("⚠️ Scheduler shutdown timeout exceeded")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
		return
	}

	log.Println("✅ Server gracefully stopped")
}

func setupRouter(routerHandler *RouterHandler, pairingService pairing.PairingService, kv store.Store) *gin.Engine {
	r := gin.Default()
	r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if origin != "" && (strings.HasPrefix(origin, "http://localhost:") ||
			strings.HasPrefix(origin, "http://127.0.0.1:") ||
			strings.HasPrefix(origin, "chrome-extension://") ||
			strings.HasPrefix(origin, "moz-extension://")) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-API-Key")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		status := "healthy"
		code := 200
		if err := kv.Health(c.Request.Context()); err != nil {
			status = "degraded"
			code = 503
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Unix(),
			"service":   "focus-guard-backend",
		})
	})

	docs.SwaggerInfo.Host = "127.0.0.1:8080"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}
	docs.SwaggerInfo.Title = "Focus guard API"
	docs.SwaggerInfo.Description = "Adaptive intervention scheduler for the focus-guard extension"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.BasePath = "/api/v1"

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	extensionRoutes := r.Group("/api/v1/extension")
	extensionRoutes.Use(middleware.APIKeyMiddleware(pairingService))
	{
		extensionRoutes.POST("/events", routerHandler.eventsHandler.ReportEvent)
		extensionRoutes.POST("/events/batch", routerHandler.eventsHandler.ReportEventBatch)
		extensionRoutes.GET("/status", routerHandler.statusHandler.GetStatus)
		extensionRoutes.POST("/tracking/pause", routerHandler.statusHandler.Pause)
		extensionRoutes.POST("/tracking/resume", routerHandler.statusHandler.Resume)
		extensionRoutes.POST("/snooze", routerHandler.statusHandler.Snooze)
		extensionRoutes.DELETE("/snooze", routerHandler.statusHandler.CancelSnooze)
		extensionRoutes.GET("/notifications", routerHandler.notificationsHandler.DrainNotifications)
	}

	publicAdminRoutes := r.Group("/api/v1/admin")
	{
		publicAdminRoutes.POST("/auth", routerHandler.pairingHandler.AuthenticateAdmin)
	}

	privateRoutes := r.Group("/api/v1/admin")
	privateRoutes.Use(middleware.AuthenticationMiddleware(pairingService))
	{
		privateRoutes.POST("/pairing/regenerate-key", routerHandler.pairingHandler.RegenerateAPIKey)

		privateRoutes.GET("/schedule", routerHandler.scheduleHandler.GetSchedule)
		privateRoutes.PUT("/schedule/quick-settings", routerHandler.scheduleHandler.UpdateQuickSettings)
		privateRoutes.POST("/schedule/rules", routerHandler.scheduleHandler.CreateRule)
		privateRoutes.PUT("/schedule/rules/:id", routerHandler.scheduleHandler.UpdateRule)
		privateRoutes.DELETE("/schedule/rules/:id", routerHandler.scheduleHandler.DeleteRule)

		privateRoutes.GET("/goals", routerHandler.goalsHandler.GetGoals)
		privateRoutes.GET("/goals/progress", routerHandler.goalsHandler.GetProgress)
		privateRoutes.POST("/goals", routerHandler.goalsHandler.CreateGoal)
		privateRoutes.PUT("/goals/:id", routerHandler.goalsHandler.UpdateGoal)
		privateRoutes.DELETE("/goals/:id", routerHandler.goalsHandler.DeleteGoal)
	}

	return r
}
