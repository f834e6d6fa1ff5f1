package server

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"golfcam/internal/config"
	"golfcam/internal/events"
	"golfcam/internal/handler"
	"golfcam/internal/middleware"
	"golfcam/internal/model"
	"golfcam/internal/service"
	"golfcam/internal/store"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Pinger is implemented by stores that can check their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	router    *gin.Engine
	http      *http.Server
	config    *config.Config
	store     store.Store
	users     service.UserStore
	redis     *redis.Client
	nats      *nats.Conn
	publisher *events.NATSPublisher
	wsHub     *handler.WSHub
	wsHandler *handler.WSHandler
}

// NewServer creates a new server instance. redisClient, natsConn and
// publisher may be nil.
func NewServer(cfg *config.Config, st store.Store, users service.UserStore, redisClient *redis.Client, natsConn *nats.Conn, publisher *events.NATSPublisher) *Server {
	return &Server{
		config:    cfg,
		store:     st,
		users:     users,
		redis:     redisClient,
		nats:      natsConn,
		publisher: publisher,
	}
}

// Setup initializes routes and handlers
func (s *Server) Setup() error {
	loc, err := s.config.Location()
	if err != nil {
		return err
	}

	s.wsHub = handler.NewWSHub(s.nats)
	s.wsHandler = handler.NewWSHandler(s.wsHub)

	reportService := service.NewReportService(s.store, s.redis, s.config.ReportCacheTTL, loc)

	// Reports are invalidated on every event. Without NATS the hub gets
	// events directly instead of through its subscription.
	fanout := events.Fanout{reportService}
	if s.publisher != nil {
		fanout = append(fanout, s.publisher)
	}
	if !s.wsHub.Subscribed() {
		fanout = append(fanout, s.wsHub)
	}
	var pub events.Publisher = fanout

	// Initialize services
	tournamentService := service.NewTournamentService(s.store, pub)
	workerService := service.NewWorkerService(s.store, pub)
	cameraService := service.NewCameraService(s.store, pub)
	shipmentService := service.NewShipmentService(s.store, pub)
	historyService := service.NewHistoryService(s.store, pub)
	assignmentService := service.NewAssignmentService(s.store, pub)
	maintenanceService := service.NewMaintenanceService(s.store, s.config.ResetAtomic, pub)
	importService := service.NewImportService(s.store, assignmentService, pub)
	authService := service.NewAuthService(s.users, s.config.JWTSecret, s.config.JWTTTL)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	cameraHandler := handler.NewCameraHandler(cameraService, assignmentService)
	historyHandler := handler.NewHistoryHandler(historyService)
	reportHandler := handler.NewReportHandler(reportService)
	adminHandler := handler.NewAdminHandler(maintenanceService, importService, authService)
	var replayer handler.EventReplayer
	if s.publisher != nil {
		replayer = s.publisher
	}
	eventsHandler := handler.NewEventsHandler(replayer)

	go s.wsHub.Run()
	log.Println("[Server] WebSocket hub started")

	s.router = gin.Default()
	s.router.Use(s.cors())

	rateLimit := s.rateLimit()

	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	s.router.GET("/health", s.health)

	// Event payloads carry worker contact details, so the stream needs a
	// token too. Browsers pass it as ?token=.
	ws := s.router.Group("/ws", middleware.JWTAuth(authService))
	ws.GET("/events", s.wsHandler.HandleEvents)
	ws.GET("/stats", s.wsHandler.GetStats)

	s.router.POST("/api/v1/auth/login", rateLimit, authHandler.Login)

	// Protected routes. The limiter runs after auth so per-user rules see
	// the caller.
	api := s.router.Group("/api/v1")
	api.Use(middleware.JWTAuth(authService), rateLimit)
	{
		api.GET("/auth/me", authHandler.Me)

		handler.NewResourceHandler[model.Tournament](tournamentService).RegisterRoutes(api.Group("/tournaments"))
		handler.NewResourceHandler[model.Worker](workerService).RegisterRoutes(api.Group("/workers"))
		handler.NewResourceHandler[model.Shipment](shipmentService).RegisterRoutes(api.Group("/shipments"))

		cameras := api.Group("/cameras")
		handler.NewResourceHandler[model.Camera](cameraService).RegisterRoutes(cameras)
		cameraHandler.RegisterRoutes(cameras)

		historyHandler.RegisterRoutes(api.Group("/camera-history"))
		reportHandler.RegisterRoutes(api.Group("/reports"))
		api.GET("/events/replay", eventsHandler.Replay)

		admin := api.Group("/admin")
		admin.Use(middleware.RequireRole(service.RoleAdmin))
		adminHandler.RegisterRoutes(admin)
	}

	s.http = &http.Server{
		Addr:              s.config.Addr(),
		Handler:           otelhttp.NewHandler(s.router, s.config.Telemetry.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

func (s *Server) cors() gin.HandlerFunc {
	allowed := make(map[string]bool, len(s.config.CORSOrigins))
	for _, o := range s.config.CORSOrigins {
		allowed[strings.TrimSpace(o)] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowed["*"]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// rateLimit returns the limiter middleware, or a pass-through when limits
// are disabled or Redis is not configured.
func (s *Server) rateLimit() gin.HandlerFunc {
	if !s.config.RateLimit.Enabled || s.redis == nil {
		return func(c *gin.Context) { c.Next() }
	}
	rules := make([]*middleware.RateLimitConfig, 0, 3)
	for _, r := range s.config.SpecificRules() {
		rules = append(rules, r.ToMiddlewareConfig())
	}
	group := middleware.NewRateLimitGroup(
		middleware.NewRedisRateLimiter(s.redis),
		s.config.RateLimit.DefaultRule.ToMiddlewareConfig(),
		rules...,
	)
	return group.Middleware()
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	health := gin.H{"status": "ok"}

	if p, ok := s.store.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			health["status"] = "degraded"
			health["database"] = err.Error()
		} else {
			health["database"] = "ok"
		}
	}
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			health["redis"] = err.Error()
		} else {
			health["redis"] = "ok"
		}
	}

	if s.publisher != nil {
		if info, err := s.publisher.StreamInfo(); err == nil {
			health["jetstream"] = "enabled"
			health["jetstream_events"] = gin.H{
				"messages": info.State.Msgs,
				"bytes":    info.State.Bytes,
			}
		} else {
			health["jetstream"] = "disabled"
		}
	} else {
		health["jetstream"] = "disabled"
	}
	health["ws_clients"] = s.wsHub.GetClientCount()

	c.JSON(status, health)
}

// Run starts the HTTP server. It returns nil after Shutdown.
func (s *Server) Run() error {
	log.Printf("[Server] HTTP server listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// GetRouter returns the gin router for testing
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) {
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			log.Printf("[Server] HTTP shutdown: %v", err)
		}
	}
	if s.wsHub != nil {
		s.wsHub.Stop()
		log.Println("[Server] WebSocket hub stopped")
	}
}
